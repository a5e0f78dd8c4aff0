package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/middleware"
	"github.com/DesarrolloRWD/adp-rh-console/internal/service"
	"github.com/DesarrolloRWD/adp-rh-console/internal/upstream"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/response"
)

// UserHandler serves the user directory endpoints.
type UserHandler struct {
	directory service.DirectoryService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(directory service.DirectoryService) *UserHandler {
	return &UserHandler{directory: directory}
}

// List returns a directory page.
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var query dto.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.directory.ListUsers(c.Request.Context(), sess, &query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, result)
}

// Get returns one directory entry.
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.directory.GetUser(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotVisible) {
			response.NotFound(c, "User not found")
			return
		}
		h.writeError(c, err)
		return
	}
	response.Success(c, user)
}

// Create adds a new directory entry.
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.directory.CreateUser(c.Request.Context(), sess, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, user)
}

// Update edits a directory entry.
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.directory.UpdateUser(c.Request.Context(), sess, c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateStatus activates or deactivates an account.
// PUT /api/v1/users/:id/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.directory.UpdateUserStatus(c.Request.Context(), sess, c.Param("id"), *req.Activo); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Status updated"})
}

func (h *UserHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, upstream.ErrUnauthorized):
		response.Unauthorized(c, "Session rejected by backend")
	case errors.Is(err, upstream.ErrUnavailable):
		response.UpstreamError(c, err)
	default:
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			response.UpstreamError(c, err)
			return
		}
		response.InternalError(c, err)
	}
}
