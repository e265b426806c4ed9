package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aniket-manhas-git/aasra-sewa/internal/middleware"
	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

type AdminHandler struct {
	Admins  *service.AdminService
	Auth    gin.HandlerFunc
	Respond Responder
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)

	protected := rg.Group("", h.Auth)
	protected.GET("/users", h.Users)
	protected.GET("/hosts", h.Hosts)
	protected.GET("/properties", h.Properties)
	protected.GET("/property/:id", h.Property)
	protected.PATCH("/property/:id/status", h.UpdateStatus)
	protected.GET("/property/:id/health-report", h.HealthReport)
	protected.POST("/property/:id/review", h.Review)
	protected.DELETE("/property/:id", h.DeleteProperty)
	protected.GET("/top-rated-properties", h.TopRated)
}

type adminRegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/admin/register
func (h *AdminHandler) Register(c *gin.Context) {
	var req adminRegisterRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Admins.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Admin registered successfully", "success": true})
}

// POST /api/v1/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	token, err := h.Admins.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	setSessionCookie(c, middleware.AdminCookie, token, sessionMaxAge, h.Respond.Production)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token, "success": true})
}

// GET /api/v1/admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.Admins.Users(c.Request.Context())
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "success": true})
}

// GET /api/v1/admin/hosts
func (h *AdminHandler) Hosts(c *gin.Context) {
	hosts, err := h.Admins.Hosts(c.Request.Context())
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hosts": hosts, "success": true})
}

// GET /api/v1/admin/properties?status=
func (h *AdminHandler) Properties(c *gin.Context) {
	props, err := h.Admins.Properties(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props, "success": true})
}

// GET /api/v1/admin/property/:id
func (h *AdminHandler) Property(c *gin.Context) {
	p, err := h.Admins.Property(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": p, "success": true})
}

type statusRequest struct {
	Action  string     `json:"action"`
	Rating  *model.Int `json:"rating"`
	Comment string     `json:"comment"`
}

func (r statusRequest) toChange() service.StatusChange {
	ch := service.StatusChange{Action: r.Action, Comment: r.Comment}
	if r.Rating != nil {
		rating := int(*r.Rating)
		ch.Rating = &rating
	}
	return ch
}

// PATCH /api/v1/admin/property/:id/status
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Admins.UpdateStatus(c.Request.Context(), middleware.AdminID(c), c.Param("id"), req.toChange())
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("Property %s successfully", req.Action),
		"property": p,
		"success":  true,
	})
}

// GET /api/v1/admin/property/:id/health-report
func (h *AdminHandler) HealthReport(c *gin.Context) {
	id := c.Param("id")
	rc, err := h.Admins.HealthReport(c.Request.Context(), id)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=property_%s_health_report.pdf", id))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.Respond.Log.Warnw("health report stream interrupted", "property", id, "error", err)
	}
}

type reviewRequest struct {
	Rating  model.Int `json:"rating"`
	Comment string    `json:"comment"`
}

// POST /api/v1/admin/property/:id/review
func (h *AdminHandler) Review(c *gin.Context) {
	var req reviewRequest
	if !bind(c, &req) {
		return
	}
	review, err := h.Admins.Review(c.Request.Context(), middleware.AdminID(c), c.Param("id"), int(req.Rating), req.Comment)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin review submitted successfully", "review": review, "success": true})
}

// DELETE /api/v1/admin/property/:id
func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	if err := h.Admins.DeleteProperty(c.Request.Context(), c.Param("id")); err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted successfully", "success": true})
}

// GET /api/v1/admin/top-rated-properties
func (h *AdminHandler) TopRated(c *gin.Context) {
	props, err := h.Admins.TopRated(c.Request.Context())
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props, "success": true})
}
