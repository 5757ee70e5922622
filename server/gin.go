package server

import (
	"github.com/gin-gonic/gin"

	"github.com/brokercrm/crm-service/authz"
)

// NewGinEngine builds the Gin router and registers all API routes. Every
// non-public route goes through IdentityMiddleware, which resolves the
// credential and aggregates permissions once per request; individual routes
// then declare the permission they require.
func NewGinEngine(s *Server) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())

	r.POST("/crm/v1/public/login", s.HandleLoginGin)

	api := r.Group("/crm/v1")
	api.Use(s.IdentityMiddleware())

	api.POST("/logout", s.HandleLogoutGin)

	api.GET("/leads", s.RequirePermission(authz.PermLeadsView), s.HandleListLeadsGin)
	api.GET("/leads/:id", s.RequirePermission(authz.PermLeadsView), s.HandleGetLeadGin)
	api.PATCH("/leads/:id", s.RequirePermission(authz.PermLeadsUpdate), s.HandleUpdateLeadGin)
	api.POST("/leads/bulk-update", s.RequirePermission(authz.PermLeadsUpdate), s.HandleBulkUpdateLeadsGin)
	api.POST("/leads/bulk-assign", s.RequirePermission(authz.PermLeadsAssign), s.HandleBulkAssignLeadsGin)

	api.GET("/leads/:id/trading-accounts", s.RequirePermission(authz.PermTradingAccountsView), s.HandleListTradingAccountsGin)
	api.POST("/trading-accounts/bulk-update", s.RequirePermission(authz.PermTradingAccountsUpdate), s.HandleBulkUpdateTradingAccountsGin)

	admin := api.Group("/admin")
	admin.GET("/roles", s.RequirePermission(authz.PermRolesManage), s.HandleListRolesGin)
	admin.POST("/roles", s.RequirePermission(authz.PermRolesManage), s.HandleUpsertRoleGin)
	admin.DELETE("/roles/:id", s.RequirePermission(authz.PermRolesManage), s.HandleDeleteRoleGin)
	admin.POST("/roles/:id/users/:userId", s.RequirePermission(authz.PermRolesManage), s.HandleAssignRoleToUserGin)
	admin.POST("/roles/:id/permissions", s.RequirePermission(authz.PermRolesManage), s.HandleGrantPermissionToRoleGin)
	admin.DELETE("/roles/:id/permissions/:name", s.RequirePermission(authz.PermRolesManage), s.HandleRevokePermissionFromRoleGin)
	admin.GET("/permissions", s.RequirePermission(authz.PermRolesManage), s.HandleListPermissionsGin)
	admin.POST("/users", s.RequirePermission(authz.PermRolesManage), s.HandleCreateUserGin)
	admin.POST("/users/:id/desks", s.RequirePermission(authz.PermRolesManage), s.HandleAssignDeskGin)
	admin.GET("/users/:id/roles", s.RequirePermission(authz.PermRolesManage), s.HandleListUserRolesGin)
	admin.POST("/users/:id/permissions", s.RequirePermission(authz.PermRolesManage), s.HandleGrantDirectPermissionGin)
	admin.DELETE("/users/:id/permissions/:name", s.RequirePermission(authz.PermRolesManage), s.HandleRevokeDirectPermissionGin)
	admin.GET("/activity", s.RequirePermission(authz.PermActivityView), s.HandleListActivityGin)

	return r
}
