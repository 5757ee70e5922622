package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brokercrm/crm-service/authz"
	"github.com/brokercrm/crm-service/bulk"
)

// respondError translates the authorization and mutation error taxonomy into
// HTTP responses. The two 403 variants carry distinct messages so a client can
// tell a missing permission apart from an out-of-scope record.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthenticated"})
	case errors.Is(err, authz.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "permission denied"})
	case errors.Is(err, authz.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "no access to this record"})
	case errors.Is(err, authz.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
	case errors.Is(err, bulk.ErrNoTargets),
		errors.Is(err, bulk.ErrEmptyPatch),
		errors.Is(err, bulk.ErrMalformed),
		errors.Is(err, bulk.ErrBadResource):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, authz.ErrAuthorizationUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "authorization unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
	}
}
