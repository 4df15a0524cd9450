package main

import (
	"log"
	"net/http"
	"strings"

	"be05/pkg/token"

	"github.com/gin-gonic/gin"
)

const bearerScheme = "Bearer "

// tokenVerifier is the part of token.Issuer the gate depends on.
type tokenVerifier interface {
	Verify(tokenStr string) *token.Claims
}

// requireRole gates a route on a valid session token carrying exactly the
// required role. A missing or malformed Authorization header is rejected
// before the verifier is consulted. The verified identity and role are put
// into the request context for the wrapped handler.
func requireRole(v tokenVerifier, required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerScheme) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		// Anything unexpected past this point becomes an opaque 500. The
		// 401/403 rejections above and below return normally and are never
		// masked by this.
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic in role gate: %v", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		claims := v.Verify(authHeader[len(bearerScheme):])
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if claims.Role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
