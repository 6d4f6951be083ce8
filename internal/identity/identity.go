// Package identity carries the caller's authentication state explicitly
// through request handling.
package identity

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// Identity is what the upstream identity provider asserts about a caller.
type Identity struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role"`
	Email         string `json:"email"`
}

func (i Identity) HasRole(roles ...string) bool {
	return i.Authenticated && slices.Contains(roles, i.Role)
}

// Provider resolves the identity attached to a request.
type Provider interface {
	Identify(r *http.Request) Identity
}

// HeaderProvider trusts identity headers set by the authenticating gateway
// in front of this service.
type HeaderProvider struct {
	EmailHeader string
	RoleHeader  string
}

func NewHeaderProvider() *HeaderProvider {
	return &HeaderProvider{EmailHeader: "X-User-Email", RoleHeader: "X-User-Role"}
}

func (p *HeaderProvider) Identify(r *http.Request) Identity {
	email := strings.TrimSpace(r.Header.Get(p.EmailHeader))
	if email == "" {
		return Identity{}
	}
	return Identity{
		Authenticated: true,
		Email:         email,
		Role:          strings.ToLower(strings.TrimSpace(r.Header.Get(p.RoleHeader))),
	}
}

const contextKey = "identity"

func Middleware(p Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, p.Identify(c.Request))
		c.Next()
	}
}

func FromContext(c *gin.Context) Identity {
	if v, ok := c.Get(contextKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}

func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c).Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := FromContext(c)
		if !id.Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !id.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not allowed"})
			return
		}
		c.Next()
	}
}
