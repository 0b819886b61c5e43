package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

const actorContextKey = "actor"

// TokenVerifier turns a bearer credential into a verified actor.
type TokenVerifier interface {
	Verify(token string) (domain.Actor, error)
}

// RequireActor authenticates the request and, when types are given,
// restricts it to those actor types. The token is read from the
// Authorization header or, for websocket upgrades, the token query parameter.
func RequireActor(verifier TokenVerifier, types ...domain.ActorType) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		actor, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if len(types) > 0 && !allowed(actor.Type, types) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not permitted for " + string(actor.Type)})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// ActorFromContext returns the actor set by RequireActor.
func ActorFromContext(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

func allowed(t domain.ActorType, types []domain.ActorType) bool {
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}
