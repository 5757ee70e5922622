package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) HandleCreateUserGin(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid JSON payload"})
		return
	}
	if strings.TrimSpace(body.Username) == "" || strings.TrimSpace(body.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password are required"})
		return
	}
	id, err := s.Users.CreateUser(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (s *Server) HandleAssignDeskGin(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	var body struct {
		DeskID int64 `json:"desk_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.DeskID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "desk_id is required"})
		return
	}
	if err := s.Users.AssignDesk(c.Request.Context(), userID, body.DeskID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) HandleListUserRolesGin(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	roles, err := s.Roles.ListRoleAssignmentsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "roles": roles})
}
