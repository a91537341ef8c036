package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/haidang/taskhive/backend/internal/middleware"
	"github.com/haidang/taskhive/backend/internal/services"
	"github.com/haidang/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

type MemberHandler struct {
	memberService *services.MemberService
}

func NewMemberHandler(db *gorm.DB, access *services.AccessService) *MemberHandler {
	return &MemberHandler{
		memberService: services.NewMemberService(db, access),
	}
}

// Add puts a user into a project
// POST /api/projects/:id/members
func (h *MemberHandler) Add(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Add(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member)
}

// UpdateRole changes a member's role in one project
// PUT /api/projects/:id/members/:userId
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	var req services.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.UpdateRole(middleware.GetUserID(c), projectID, targetID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}

// Remove drops a membership
// DELETE /api/projects/:id/members/:userId
func (h *MemberHandler) Remove(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	if err := h.memberService.Remove(middleware.GetUserID(c), projectID, targetID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"removed": true})
}

// Leave removes the caller's own membership
// POST /api/projects/:id/leave
func (h *MemberHandler) Leave(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.memberService.Leave(middleware.GetUserID(c), projectID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"left": true})
}

// Join adds the caller to an open project
// POST /api/projects/:id/join
func (h *MemberHandler) Join(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	member, err := h.memberService.Join(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member)
}

// ListTeam returns everyone sharing a project with the caller
// GET /api/team
func (h *MemberHandler) ListTeam(c *gin.Context) {
	team, err := h.memberService.ListTeam(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, team)
}

// TeamStats summarizes the caller's team
// GET /api/team/stats
func (h *MemberHandler) TeamStats(c *gin.Context) {
	stats, err := h.memberService.TeamStats(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// UpdateTeamRole sweeps a role change across shared projects
// PUT /api/team/:userId/role
func (h *MemberHandler) UpdateTeamRole(c *gin.Context) {
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	var req services.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.memberService.UpdateRoleAcrossSharedProjects(middleware.GetUserID(c), targetID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"updated": updated})
}

// RemoveFromTeam sweeps a removal across shared projects
// DELETE /api/team/:userId
func (h *MemberHandler) RemoveFromTeam(c *gin.Context) {
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	removed, err := h.memberService.RemoveAcrossSharedProjects(middleware.GetUserID(c), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"removed": removed})
}
