package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brokercrm/crm-service/auth"
	"github.com/brokercrm/crm-service/authz"
)

// HandleLogoutGin denylists the caller's own token until it would have
// expired. Requires a revocation backend; without one logout is a no-op the
// caller should know about.
func (s *Server) HandleLogoutGin(c *gin.Context) {
	if s.Revoker == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"success": false, "message": "revocation backend not configured"})
		return
	}
	cred, ok := auth.ExtractCredential(c.Request)
	if !ok {
		respondError(c, authz.ErrUnauthenticated)
		return
	}
	jti, ttl, err := s.Verifier.RevocationWindow(cred)
	if err != nil {
		respondError(c, authz.ErrUnauthenticated)
		return
	}
	if ttl <= 0 {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	if err := s.Revoker.Revoke(c.Request.Context(), jti, ttl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
