package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/labreserve/lab-reservation-backend/internal/auth"
)

// RequireApprover ensures the authenticated user holds the approver role.
// It MUST be used after auth.AuthRequired middleware.
func RequireApprover() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.GetUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !auth.IsApprover(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: approver role required"})
			return
		}

		c.Next()
	}
}
