package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/aniket-manhas-git/aasra-sewa/internal/auth"
	"github.com/aniket-manhas-git/aasra-sewa/internal/config"
	"github.com/aniket-manhas-git/aasra-sewa/internal/gateway"
	"github.com/aniket-manhas-git/aasra-sewa/internal/handler"
	"github.com/aniket-manhas-git/aasra-sewa/internal/logger"
	mongodb "github.com/aniket-manhas-git/aasra-sewa/internal/mongo"
	"github.com/aniket-manhas-git/aasra-sewa/internal/repository"
	"github.com/aniket-manhas-git/aasra-sewa/internal/repository/memory"
	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	users      service.UserStore
	admins     service.AdminStore
	properties service.PropertyStore
	payments   service.PaymentStore
	reports    service.ReportStore
	close      func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger depends on the config, so this one goes to stderr
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	lggr, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = lggr.Sync() }()

	if err := run(cfg, lggr); err != nil {
		lggr.Errorw("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, lggr *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, lggr)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			lggr.Warnw("closing storage", "error", err)
		}
	}()

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	var payments service.PaymentGateway
	if cfg.StripeSecretKey != "" {
		payments = gateway.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripeCurrency)
	} else {
		lggr.Warn("STRIPE_SECRET_KEY not set, payments are disabled")
	}

	var media service.MediaUploader
	if cfg.CloudinaryCloudName != "" {
		cld, err := gateway.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, lggr)
		if err != nil {
			return err
		}
		media = cld
	} else {
		lggr.Warn("CLOUDINARY_CLOUD_NAME not set, face uploads are disabled")
	}

	var faces service.FaceEncoder
	if cfg.FaceServiceURL != "" {
		faces = gateway.NewFaceClient(cfg.FaceServiceURL, lggr)
	} else {
		lggr.Warn("FACE_SERVICE_URL not set, face verification is disabled")
	}

	origins := append([]string{}, handler.DefaultOrigins...)
	if cfg.FrontendURL != "" {
		origins = append(origins, cfg.FrontendURL)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Services: handler.Services{
			Users:      service.NewUserService(st.users, tokens),
			Properties: service.NewPropertyService(st.properties, st.users),
			Admins:     service.NewAdminService(st.admins, st.users, st.properties, tokens, gateway.NewFetcher(lggr)),
			Payments:   service.NewPaymentService(st.payments, st.properties, st.users, payments, lggr),
			Faces:      service.NewFaceService(faces, media, cfg.FaceMatchThreshold, lggr),
			Reports:    service.NewReportService(st.reports, st.properties),
		},
		Tokens:         tokens,
		Log:            lggr,
		Production:     cfg.IsProduction(),
		AllowedOrigins: origins,
		TrustedProxies: cfg.TrustedProxies,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		lggr.Infow("Server is running", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	case <-ctx.Done():
	}

	lggr.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, lggr *zap.SugaredLogger) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		lggr.Warn("using in-memory storage, data is lost on restart")
		db := memory.Open()
		return &stores{
			users:      db.Users,
			admins:     db.Admins,
			properties: db.Properties,
			payments:   db.Payments,
			reports:    db.Reports,
			close:      func(context.Context) error { return nil },
		}, nil
	}

	client, err := mongodb.NewMongoClient(ctx, cfg.MongoURI, lggr)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	reports, err := repository.NewReportRepository(db)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &stores{
		users:      repository.NewUserRepository(db),
		admins:     repository.NewAdminRepository(db),
		properties: repository.NewPropertyRepository(db),
		payments:   repository.NewPaymentRepository(db),
		reports:    reports,
		close:      client.Disconnect,
	}, nil
}
