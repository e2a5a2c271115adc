package middleware

import (
	"net/http"
	"strconv"

	"obetrack/internal/domain/academic"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Principal extracts the authenticated caller from the X-User-ID and
// X-User-Role headers set by the identity gateway. Requests without both
// headers are rejected; authentication itself happens upstream.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader("X-User-ID")
		role := c.GetHeader("X-User-Role")
		if rawID == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Missing identity headers",
			})
			return
		}

		userID, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid X-User-ID header",
			})
			return
		}

		c.Set(principalKey, &academic.Principal{
			ID:   uint(userID),
			Role: role,
		})
		c.Next()
	}
}

// RequireRole rejects principals whose role is not in the allowed set.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil || !allowed[principal.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller, or nil outside the
// Principal middleware.
func PrincipalFrom(c *gin.Context) *academic.Principal {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, ok := value.(*academic.Principal)
	if !ok {
		return nil
	}
	return principal
}
