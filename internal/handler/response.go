package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

// Responder writes JSON error bodies. Internal errors are logged, and their
// text is only exposed outside production.
type Responder struct {
	Log        *zap.SugaredLogger
	Production bool
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg, "success": false})
}

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error maps err onto a status code and writes it.
func (r Responder) Error(c *gin.Context, err error) {
	if kind := service.KindOf(err); kind != 0 {
		fail(c, statusOf(kind), err.Error())
		return
	}
	_ = c.Error(err)
	r.Log.Errorw("request failed", "path", c.Request.URL.Path, "error", err)
	msg := "Internal server error"
	if !r.Production {
		msg = err.Error()
	}
	fail(c, http.StatusInternalServerError, msg)
}

// NoRoute answers unknown paths.
func NoRoute(c *gin.Context) {
	fail(c, http.StatusNotFound, "Route not found")
}
