package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/haidang/taskhive/backend/internal/services"
	"github.com/haidang/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

type ActivityHandler struct {
	activityService *services.ActivityLogService
}

func NewActivityHandler(db *gorm.DB) *ActivityHandler {
	return &ActivityHandler{
		activityService: services.NewActivityLogService(db),
	}
}

// List returns paginated activity logs
// GET /api/admin/activity
func (h *ActivityHandler) List(c *gin.Context) {
	var req services.ActivityLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.activityService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// Modules returns the distinct modules seen in the log
// GET /api/admin/activity/modules
func (h *ActivityHandler) Modules(c *gin.Context) {
	modules, err := h.activityService.GetModules()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, modules)
}
