package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

const maxImageSize = 10 << 20

type FaceHandler struct {
	Faces   *service.FaceService
	Respond Responder
}

func (h *FaceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", h.Ping)
	rg.POST("/upload", h.Upload)
	rg.POST("/verify", h.Verify)
}

// GET /api/face/ping
func (h *FaceHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func readImage(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxImageSize {
		return nil, errors.New("image too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageSize))
}

// POST /api/face/upload (multipart "face")
func (h *FaceHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("face")
	if err != nil {
		fail(c, http.StatusBadRequest, "Face image is required.")
		return
	}
	img, err := readImage(fh)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid image format.")
		return
	}
	url, err := h.Faces.Upload(c.Request.Context(), img, fh.Filename)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"faceUrl": url,
		"message": "Face image uploaded successfully.",
	})
}

// POST /api/face/verify (multipart "image1", "image2")
func (h *FaceHandler) Verify(c *gin.Context) {
	fh1, err1 := c.FormFile("image1")
	fh2, err2 := c.FormFile("image2")
	if err1 != nil || err2 != nil {
		fail(c, http.StatusBadRequest, "Both images are required.")
		return
	}
	img1, err1 := readImage(fh1)
	img2, err2 := readImage(fh2)
	if err1 != nil || err2 != nil {
		fail(c, http.StatusBadRequest, "Invalid image format.")
		return
	}

	match, err := h.Faces.Verify(c.Request.Context(), img1, img2)
	if errors.Is(err, service.ErrNoFace) {
		c.JSON(http.StatusBadRequest, gin.H{"match": false, "message": err.Error()})
		return
	}
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}
