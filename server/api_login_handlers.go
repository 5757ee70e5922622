package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HandleLoginGin authenticates a user by username and password and issues a
// bearer access token.
func (s *Server) HandleLoginGin(c *gin.Context) {
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

	userID, ok, err := s.Users.Authenticate(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid username or password"})
		return
	}

	token, err := s.Verifier.Issue(userID, s.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(s.TokenTTL.Seconds()),
	})
}
