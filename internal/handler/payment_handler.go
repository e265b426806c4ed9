package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aniket-manhas-git/aasra-sewa/internal/middleware"
	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	Payments *service.PaymentService
	Auth     gin.HandlerFunc
	Respond  Responder
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook", h.Webhook)

	rg.POST("/create-intent", h.Auth, h.CreateIntent)
	rg.POST("/confirm", h.Auth, h.Confirm)
	rg.GET("/status/:paymentId", h.Auth, h.Status)
	rg.GET("/history", h.Auth, h.History)
}

type createIntentRequest struct {
	PropertyID string       `json:"propertyId"`
	Amount     model.Number `json:"amount"`
}

// POST /api/v1/payment/create-intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req createIntentRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Payments.CreateIntent(c.Request.Context(), middleware.UserID(c), req.PropertyID, float64(req.Amount))
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Payment intent created successfully",
		"clientSecret": res.ClientSecret,
		"paymentId":    res.PaymentID,
		"success":      true,
	})
}

type confirmRequest struct {
	PaymentID     string `json:"paymentId"`
	PaymentMethod string `json:"paymentMethod"`
}

// POST /api/v1/payment/confirm
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if !bind(c, &req) {
		return
	}
	pmt, err := h.Payments.Confirm(c.Request.Context(), middleware.UserID(c), req.PaymentID, req.PaymentMethod)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed successfully", "payment": pmt, "success": true})
}

// GET /api/v1/payment/status/:paymentId
func (h *PaymentHandler) Status(c *gin.Context) {
	pmt, err := h.Payments.Status(c.Request.Context(), middleware.UserID(c), c.Param("paymentId"))
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": pmt, "success": true})
}

// GET /api/v1/payment/history?page=&limit=
func (h *PaymentHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	hist, err := h.Payments.History(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payments":    hist.Payments,
		"totalPages":  hist.TotalPages,
		"currentPage": hist.CurrentPage,
		"success":     true,
	})
}

// POST /api/v1/payment/webhook
// The body must stay byte-for-byte intact for signature verification.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, "Webhook Error: "+err.Error())
		return
	}
	if err := h.Payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
