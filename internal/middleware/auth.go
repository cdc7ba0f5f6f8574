package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/auth"
)

const identityKey = "identity"

// Authenticate is a Gin middleware for JWT authentication. It checks the
// Authorization header, validates the token and stores the caller's
// identity in the context.
func Authenticate(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(jwtSecret, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(identityKey, auth.IdentityFromClaims(claims))
		c.Next()
	}
}

// IdentityFrom returns the caller identity stored by Authenticate. The
// zero identity means an anonymous request.
func IdentityFrom(c *gin.Context) auth.Identity {
	if v, exists := c.Get(identityKey); exists {
		if ident, ok := v.(auth.Identity); ok {
			return ident
		}
	}
	return auth.Identity{}
}

// RequireAdminOrStaff gates the user-management surface.
func RequireAdminOrStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.AdminOrStaff(IdentityFrom(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdminWrites applies the admin-or-read-only tier; attach it to
// route groups whose safe methods are public.
func RequireAdminWrites() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.AdminOrReadOnly(IdentityFrom(c), c.Request.Method) {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
