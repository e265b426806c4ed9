package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aniket-manhas-git/aasra-sewa/internal/auth"
)

const (
	UserCookie  = "token"
	AdminCookie = "adminToken"

	userIDKey  = "userId"
	adminIDKey = "adminId"
)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg, "success": false})
}

// UserAuth admits requests carrying a valid user token in the token cookie
// and stores the user ID in the context.
func UserAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(UserCookie)
		if err != nil || tokenStr == "" {
			abort(c, http.StatusUnauthorized, "User not authenticated")
			return
		}
		claims, err := tokens.Parse(tokenStr)
		if err != nil || claims.UserID == "" {
			abort(c, http.StatusUnauthorized, "Authentication failed")
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// AdminAuth admits requests carrying an admin token, either in the
// adminToken cookie or as a bearer token.
func AdminAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(AdminCookie)
		if tokenStr == "" {
			tokenStr = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if tokenStr == "" {
			abort(c, http.StatusUnauthorized, "Admin authentication required")
			return
		}
		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if claims.Role != auth.RoleAdmin {
			abort(c, http.StatusForbidden, "Forbidden: Not an admin")
			return
		}
		c.Set(adminIDKey, claims.AdminID)
		c.Next()
	}
}

// UserID returns the ID set by UserAuth.
func UserID(c *gin.Context) string { return c.GetString(userIDKey) }

// AdminID returns the ID set by AdminAuth.
func AdminID(c *gin.Context) string { return c.GetString(adminIDKey) }
