package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brokercrm/crm-service/authz"
)

// HandleListActivityGin lists the most recent activity trail entries for a
// resource.
func (s *Server) HandleListActivityGin(c *gin.Context) {
	resource := strings.TrimSpace(c.Query("resource"))
	if resource == "" {
		resource = authz.ResourceLeads
	}
	entries, err := s.Activity.ListActivity(c.Request.Context(), resource, intQuery(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "activity": entries})
}
