package server

import (
	"github.com/gin-gonic/gin"

	"github.com/brokercrm/crm-service/authz"
)

const ctxPermissionSet = "permission_set"

// IdentityMiddleware resolves the request credential and aggregates the
// caller's effective permissions once per request. Identity facts are never
// cached across requests, so a role or grant revoked between two calls is
// reflected on the very next one.
func (s *Server) IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ident, err := s.Resolver.Resolve(ctx, c.Request)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		set, err := s.Aggregator.Aggregate(ctx, ident)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(ctxPermissionSet, set)
		c.Next()
	}
}

// RequirePermission returns a middleware that rejects the request with 403
// unless the caller holds the named permission.
func (s *Server) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Gate.RequirePermission(permissionSet(c), permission); err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func permissionSet(c *gin.Context) *authz.EffectivePermissionSet {
	v, ok := c.Get(ctxPermissionSet)
	if !ok {
		return nil
	}
	set, _ := v.(*authz.EffectivePermissionSet)
	return set
}
