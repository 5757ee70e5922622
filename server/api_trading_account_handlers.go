package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brokercrm/crm-service/authz"
)

// HandleListTradingAccountsGin lists the trading accounts of one lead,
// filtered by the caller's access scope on the trading_accounts resource.
func (s *Server) HandleListTradingAccountsGin(c *gin.Context) {
	leadID, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid id"})
		return
	}
	set := permissionSet(c)
	scope := authz.BuildScope(set, authz.ResourceTradingAccounts)
	accounts, err := s.Accounts.ListTradingAccounts(c.Request.Context(), scope, leadID,
		intQuery(c, "limit"), intQuery(c, "offset"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trading_accounts": accounts})
}

// HandleBulkUpdateTradingAccountsGin applies one patch to many trading
// accounts at once.
func (s *Server) HandleBulkUpdateTradingAccountsGin(c *gin.Context) {
	s.handleBulkMutation(c, authz.ResourceTradingAccounts)
}
