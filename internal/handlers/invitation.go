package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/haidang/taskhive/backend/internal/middleware"
	"github.com/haidang/taskhive/backend/internal/services"
	"github.com/haidang/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
	authService       *services.AuthService
}

func NewInvitationHandler(db *gorm.DB, access *services.AccessService, expireDays int) *InvitationHandler {
	return &InvitationHandler{
		invitationService: services.NewInvitationService(db, access, expireDays),
		authService:       services.NewAuthService(db, 0),
	}
}

// Invite sends invitations for one email across the caller's editable projects
// POST /api/invitations
func (h *InvitationHandler) Invite(c *gin.Context) {
	var req services.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.invitationService.Invite(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPending returns pending invitations across the caller's editable projects
// GET /api/invitations
func (h *InvitationHandler) ListPending(c *gin.Context) {
	invitations, err := h.invitationService.ListPending(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, invitations)
}

// ListMine returns invitations addressed to the caller's email
// GET /api/invitations/mine
func (h *InvitationHandler) ListMine(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	invitations, err := h.invitationService.ListForEmail(user.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, invitations)
}

// Cancel marks a pending invitation cancelled
// POST /api/invitations/:id/cancel
func (h *InvitationHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.invitationService.Cancel(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"cancelled": true})
}

// Resend refreshes a pending invitation and re-sends the mail
// POST /api/invitations/:id/resend
func (h *InvitationHandler) Resend(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	invitation, err := h.invitationService.Resend(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, invitation)
}

// Accept redeems an invitation token for the caller
// POST /api/invitations/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.invitationService.Accept(middleware.GetUserID(c), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member)
}
