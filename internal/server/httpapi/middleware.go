package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
)

// claimsKey is the gin context key under which verified claims are stored.
const claimsKey = "claims"

// TokenParser verifies an access token and returns its claims. *auth.Minter
// satisfies it.
type TokenParser interface {
	Parse(tokenString string) (*auth.Claims, error)
}

// RequireRole returns a middleware that admits only requests carrying a
// valid Bearer access token whose claims include the given role. A missing
// or invalid token yields 401; a valid token without the role yields 403.
func RequireRole(parser TokenParser, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := parser.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if !hasRole(claims.Roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
