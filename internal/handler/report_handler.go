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

const maxReportSize = 20 << 20

// ReportHandler serves the health report PDF of each property.
type ReportHandler struct {
	Reports *service.ReportService
	Auth    gin.HandlerFunc
	Respond Responder
}

func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:propertyId", h.Download)
	rg.POST("/:propertyId", h.Auth, h.Upload)
}

// POST /api/v1/report/:propertyId (multipart "report")
func (h *ReportHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("report")
	if err != nil {
		fail(c, http.StatusBadRequest, "Report file is required.")
		return
	}
	if fh.Size > maxReportSize {
		fail(c, http.StatusBadRequest, "Report file is too large.")
		return
	}
	file, err := fh.Open()
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	defer file.Close()

	id, err := h.Reports.Upload(c.Request.Context(), middleware.UserID(c), c.Param("propertyId"), file)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Report uploaded successfully.", "reportId": id, "success": true})
}

// GET /api/v1/report/:propertyId
func (h *ReportHandler) Download(c *gin.Context) {
	propertyID := c.Param("propertyId")
	rc, err := h.Reports.Open(c.Request.Context(), propertyID)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", model.ReportFilename(propertyID)))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.Respond.Log.Warnw("report stream interrupted", "property", propertyID, "error", err)
	}
}
