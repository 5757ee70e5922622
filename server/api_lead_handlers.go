package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brokercrm/crm-service/authz"
	"github.com/brokercrm/crm-service/bulk"
	"github.com/brokercrm/crm-service/store"
)

// HandleListLeadsGin lists the leads visible under the caller's access scope.
func (s *Server) HandleListLeadsGin(c *gin.Context) {
	set := permissionSet(c)
	scope := authz.BuildScope(set, authz.ResourceLeads)
	filter := store.LeadFilter{
		Status:     strings.TrimSpace(c.Query("status")),
		AssignedTo: strings.TrimSpace(c.Query("assigned_to")),
		Limit:      intQuery(c, "limit"),
		Offset:     intQuery(c, "offset"),
	}
	leads, err := s.Leads.ListLeads(c.Request.Context(), scope, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leads": leads})
}

// HandleGetLeadGin fetches one lead. A lead outside the caller's desks is a
// distinct 403 from a missing permission.
func (s *Server) HandleGetLeadGin(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid id"})
		return
	}
	set := permissionSet(c)
	ctx := c.Request.Context()

	ok, err := s.Gate.CanAccess(ctx, set, authz.ResourceLeads, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, authz.ErrAccessDenied)
		return
	}

	lead, found, err := s.Leads.GetLead(ctx, authz.BuildScope(set, authz.ResourceLeads), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, authz.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "lead": lead})
}

// HandleUpdateLeadGin patches a single lead. The write goes through the same
// mutation path as the bulk endpoints, so the allow-list, the delta predicate
// and the activity trail all apply.
func (s *Server) HandleUpdateLeadGin(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid id"})
		return
	}
	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid JSON payload"})
		return
	}
	patch, err := bulk.ParsePatch(authz.ResourceLeads, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, ok := patch.(bulk.UniformPatch); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "single update takes a field object"})
		return
	}

	res, err := s.Mutator.Apply(c.Request.Context(), permissionSet(c), authz.ResourceLeads,
		bulk.Request{TargetIDs: []int64{id}, Patch: patch})
	if errors.Is(err, authz.ErrPartialBatchDenied) {
		// Single target filtered out means the record is out of scope.
		respondError(c, authz.ErrAccessDenied)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated_count": res.UpdatedCount})
}

// HandleBulkUpdateLeadsGin applies one patch to many leads at once.
func (s *Server) HandleBulkUpdateLeadsGin(c *gin.Context) {
	s.handleBulkMutation(c, authz.ResourceLeads)
}

// HandleBulkAssignLeadsGin reassigns a batch of leads to one agent. An empty
// assigned_to clears the assignment.
func (s *Server) HandleBulkAssignLeadsGin(c *gin.Context) {
	var body struct {
		TargetIDs  []int64 `json:"target_ids"`
		AssignedTo string  `json:"assigned_to"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid JSON payload"})
		return
	}
	var assignee any
	if v := strings.TrimSpace(body.AssignedTo); v != "" {
		assignee = v
	}
	res, err := s.Mutator.Apply(c.Request.Context(), permissionSet(c), authz.ResourceLeads,
		bulk.Request{TargetIDs: body.TargetIDs, Patch: bulk.UniformPatch{"assigned_to": assignee}})
	s.respondBulk(c, res, err)
}

func (s *Server) handleBulkMutation(c *gin.Context, resource string) {
	var body struct {
		TargetIDs []int64         `json:"target_ids"`
		Patch     json.RawMessage `json:"patch"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid JSON payload"})
		return
	}
	patch, err := bulk.ParsePatch(resource, body.Patch)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := s.Mutator.Apply(c.Request.Context(), permissionSet(c), resource,
		bulk.Request{TargetIDs: body.TargetIDs, Patch: patch})
	s.respondBulk(c, res, err)
}

func (s *Server) respondBulk(c *gin.Context, res *bulk.Result, err error) {
	if errors.Is(err, authz.ErrPartialBatchDenied) {
		failed := []int64{}
		if res != nil {
			failed = res.FailedIDs
		}
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "no access to any target record",
			"failed":  failed,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	failed := res.FailedIDs
	if failed == nil {
		failed = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"updated_count": res.UpdatedCount,
		"failed":        failed,
	})
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
}

func intQuery(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
