package auth

import (
	"net/http"
	"strings"

	dom "taskmanager/internal/domain"

	"github.com/gin-gonic/gin"
)

const contextKeyIdentity = "identity"

// Authenticator resolves a raw bearer token to the caller's identity.
type Authenticator interface {
	Authenticate(token string) (dom.Identity, error)
}

// IdentityFromContext returns the identity set by RequireBearer.
func IdentityFromContext(c *gin.Context) (dom.Identity, bool) {
	v, ok := c.Get(contextKeyIdentity)
	if !ok {
		return dom.Identity{}, false
	}
	id, ok := v.(dom.Identity)
	return id, ok
}

// RequireBearer returns a middleware that reads "Authorization: Bearer <token>",
// resolves it and stores the identity in context. Any failure responds 401.
func RequireBearer(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, err := a.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(contextKeyIdentity, id)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
