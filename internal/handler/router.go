package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/aniket-manhas-git/aasra-sewa/internal/auth"
	"github.com/aniket-manhas-git/aasra-sewa/internal/middleware"
	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

const rateWindow = 15 * time.Minute

// DefaultOrigins are the browser origins always allowed by CORS.
var DefaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"https://aasrasewa-frontend.onrender.com",
	"https://aasrasewa-admin.onrender.com",
}

type Services struct {
	Users      *service.UserService
	Properties *service.PropertyService
	Admins     *service.AdminService
	Payments   *service.PaymentService
	Faces      *service.FaceService
	Reports    *service.ReportService
}

type RouterConfig struct {
	Services
	Tokens         *auth.Manager
	Log            *zap.SugaredLogger
	Production     bool
	AllowedOrigins []string
	// TrustedProxies may set the client IP through X-Forwarded-For. With
	// none, rate limits key on the peer address.
	TrustedProxies []string
}

// NewRouter assembles the gin engine with every route group and wraps it in
// the CORS handler.
func NewRouter(cfg RouterConfig) http.Handler {
	SetupValidator()

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		cfg.Log.Errorw("ignoring trusted proxies", "proxies", cfg.TrustedProxies, "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.Recovery(cfg.Log, cfg.Production))
	r.Use(middleware.WithLogging(cfg.Log))
	r.Use(middleware.SecureHeaders())
	r.NoRoute(NoRoute)
	r.GET("/health", Health)

	general, auths := 1000, 500
	if cfg.Production {
		general, auths = 100, 50
	}
	api := r.Group("/api", middleware.NewRateLimit(general, rateWindow,
		"Too many requests from this IP, please try again later.").Handler())

	respond := Responder{Log: cfg.Log, Production: cfg.Production}
	userAuth := middleware.UserAuth(cfg.Tokens)

	users := &UserHandler{Users: cfg.Users, Auth: userAuth, Respond: respond}
	users.RegisterRoutes(api.Group("/v1/user", middleware.NewRateLimit(auths, rateWindow,
		"Too many authentication attempts, please try again later.").Handler()))

	props := &PropertyHandler{Properties: cfg.Properties, Auth: userAuth, Respond: respond}
	props.RegisterRoutes(api.Group("/v1/property"))

	reports := &ReportHandler{Reports: cfg.Reports, Auth: userAuth, Respond: respond}
	reports.RegisterRoutes(api.Group("/v1/report"))

	faces := &FaceHandler{Faces: cfg.Faces, Respond: respond}
	faces.RegisterRoutes(api.Group("/face"))

	admins := &AdminHandler{Admins: cfg.Admins, Auth: middleware.AdminAuth(cfg.Tokens), Respond: respond}
	admins.RegisterRoutes(api.Group("/v1/admin"))

	payments := &PaymentHandler{Payments: cfg.Payments, Auth: userAuth, Respond: respond}
	payments.RegisterRoutes(api.Group("/v1/payment"))

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodPatch, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(r)
}
