package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aniket-manhas-git/aasra-sewa/internal/middleware"
	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

// PropertyHandler serves the owner-facing listing endpoints.
type PropertyHandler struct {
	Properties *service.PropertyService
	Auth       gin.HandlerFunc
	Respond    Responder
}

func (h *PropertyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/top-rated", h.TopRated)

	rg.GET("/all", h.Auth, h.List)
	rg.GET("/my", h.Auth, h.Mine)
	rg.GET("/approved", h.Auth, h.Approved)
	rg.GET("/:id", h.Auth, h.Get)
	rg.POST("/register", h.Auth, h.Register)
	rg.PUT("/update/:id", h.Auth, h.Update)
}

func queryFloat(c *gin.Context, key string) *float64 {
	if v, err := strconv.ParseFloat(c.Query(key), 64); err == nil {
		return &v
	}
	return nil
}

func queryInt(c *gin.Context, key string) *int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return &v
	}
	return nil
}

func listQuery(c *gin.Context) service.ListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return service.ListQuery{
		Page:    page,
		Limit:   limit,
		MinCost: queryFloat(c, "minCost"),
		MaxCost: queryFloat(c, "maxCost"),
		Members: queryInt(c, "members"),
		Sort:    c.Query("sort"),
		Status:  c.Query("status"),
	}
}

// GET /api/v1/property/all?page=&limit=&minCost=&maxCost=&members=&sort=&status=
func (h *PropertyHandler) List(c *gin.Context) {
	res, err := h.Properties.List(c.Request.Context(), listQuery(c))
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/v1/property/approved
func (h *PropertyHandler) Approved(c *gin.Context) {
	q := listQuery(c)
	q.Approved = true
	res, err := h.Properties.List(c.Request.Context(), q)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/v1/property/my
func (h *PropertyHandler) Mine(c *gin.Context) {
	props, err := h.Properties.Mine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(props), "properties": props})
}

// GET /api/v1/property/top-rated
func (h *PropertyHandler) TopRated(c *gin.Context) {
	props, err := h.Properties.TopRated(c.Request.Context())
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "properties": props})
}

// GET /api/v1/property/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	p, err := h.Properties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property retrieved successfully.", "property": p})
}

type propertyRequest struct {
	Title           string               `json:"title"`
	Landmark        string               `json:"landmark"`
	Pincode         string               `json:"pincode"`
	FullAddress     string               `json:"fullAddress"`
	PricePerNight   model.Number         `json:"pricePerNight"`
	Description     string               `json:"description"`
	Capacity        model.Int            `json:"capacity"`
	Images          model.PropertyImages `json:"images"`
	PropertyImage   string               `json:"propertyImage"`
	HealthReportPDF string               `json:"healthReportPDF"`
}

// POST /api/v1/property/register
func (h *PropertyHandler) Register(c *gin.Context) {
	var req propertyRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Properties.Register(c.Request.Context(), middleware.UserID(c), model.Property{
		Title:           req.Title,
		Landmark:        req.Landmark,
		Pincode:         req.Pincode,
		FullAddress:     req.FullAddress,
		PricePerNight:   float64(req.PricePerNight),
		Description:     req.Description,
		Capacity:        int(req.Capacity),
		Images:          req.Images,
		PropertyImage:   req.PropertyImage,
		HealthReportPDF: req.HealthReportPDF,
	})
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Property registered successfully.", "property": p})
}

// PUT /api/v1/property/update/:id
func (h *PropertyHandler) Update(c *gin.Context) {
	var pu model.PropertyUpdate
	if !bind(c, &pu) {
		return
	}
	p, err := h.Properties.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), pu)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property updated successfully.", "property": p})
}
