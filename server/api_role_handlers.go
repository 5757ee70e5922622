package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brokercrm/crm-service/models"
)

func (s *Server) HandleUpsertRoleGin(c *gin.Context) {
	var body struct {
		Name        string `json:"name"`
		Status      string `json:"status"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid JSON payload"})
		return
	}
	role := models.Role{Name: body.Name, Status: body.Status, Description: body.Description}
	if err := s.Roles.UpsertRole(c.Request.Context(), role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) HandleListRolesGin(c *gin.Context) {
	roles, err := s.Roles.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "roles": roles})
}

func (s *Server) HandleDeleteRoleGin(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.Roles.DeleteRole(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) HandleAssignRoleToUserGin(c *gin.Context) {
	roleID := strings.TrimSpace(c.Param("id"))
	userID := strings.TrimSpace(c.Param("userId"))
	if err := s.Roles.AssignRoleToUser(c.Request.Context(), userID, roleID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) HandleGrantPermissionToRoleGin(c *gin.Context) {
	roleID := strings.TrimSpace(c.Param("id"))
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "permission name is required"})
		return
	}
	if err := s.Roles.GrantPermissionToRole(c.Request.Context(), roleID, body.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) HandleRevokePermissionFromRoleGin(c *gin.Context) {
	roleID := strings.TrimSpace(c.Param("id"))
	name := strings.TrimSpace(c.Param("name"))
	if err := s.Roles.RevokePermissionFromRole(c.Request.Context(), roleID, name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) HandleListPermissionsGin(c *gin.Context) {
	perms, err := s.Perms.ListPermissions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "permissions": perms})
}

// HandleGrantDirectPermissionGin grants a permission to a user outside of any
// role. The grant shows up in the user's effective set on their next request.
func (s *Server) HandleGrantDirectPermissionGin(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "permission name is required"})
		return
	}
	actorID := ""
	if set := permissionSet(c); set != nil {
		actorID = set.Identity().ID
	}
	if err := s.Perms.GrantDirect(c.Request.Context(), userID, body.Name, actorID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) HandleRevokeDirectPermissionGin(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	name := strings.TrimSpace(c.Param("name"))
	if err := s.Perms.RevokeDirect(c.Request.Context(), userID, name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
