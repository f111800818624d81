package middleware

import (
	"net/http"
	"strings"

	"sharenest-backend/utils"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Actor is the authenticated caller, extracted from the access token.
type Actor struct {
	ID    uint
	Email string
	Roles map[string]bool
}

func (a Actor) HasRole(role string) bool {
	return a.Roles[role]
}

// RequireAuth validates the bearer token (or accessToken cookie) and
// stores the resulting Actor on the context.
func RequireAuth(accessSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token, accessSecret)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(actorKey, Actor{
			ID:    claims.UserID,
			Email: claims.Email,
			Roles: claims.RoleSet(),
		})
		c.Next()
	}
}

// RequireRole rejects authenticated callers lacking the given role.
// It must run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok || !actor.HasRole(role) {
			utils.JSONError(c, http.StatusForbidden, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentActor returns the authenticated caller set by RequireAuth.
func CurrentActor(c *gin.Context) (Actor, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return Actor{}, false
	}
	actor, ok := value.(Actor)
	return actor, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie
	}
	return ""
}
