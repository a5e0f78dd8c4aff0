package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/service"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/response"
)

// SettingsHandler serves the role management endpoints.
type SettingsHandler struct {
	permissions service.PermissionService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(permissions service.PermissionService) *SettingsHandler {
	return &SettingsHandler{permissions: permissions}
}

// GetPermissions returns the active role→permissions table.
// GET /api/v1/settings/permissions
func (h *SettingsHandler) GetPermissions(c *gin.Context) {
	response.Success(c, h.permissions.Table(c.Request.Context()))
}

// UpdatePermissions replaces role entries of the permission table.
// PUT /api/v1/settings/permissions
func (h *SettingsHandler) UpdatePermissions(c *gin.Context) {
	var req dto.PermissionTable
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.permissions.Update(c.Request.Context(), &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "Permission table updated"})
}
