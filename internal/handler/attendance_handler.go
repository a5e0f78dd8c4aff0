package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/middleware"
	"github.com/DesarrolloRWD/adp-rh-console/internal/service"
	"github.com/DesarrolloRWD/adp-rh-console/internal/upstream"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/response"
)

// AttendanceHandler serves the attendance endpoints.
type AttendanceHandler struct {
	attendance service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendance service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// List returns attendance records in a date range.
// GET /api/v1/attendance
func (h *AttendanceHandler) List(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var query dto.AttendanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.attendance.List(c.Request.Context(), sess, &query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, result)
}

// Get returns one record with capture metadata.
// GET /api/v1/attendance/:id
func (h *AttendanceHandler) Get(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	detail, err := h.attendance.Detail(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, detail)
}

// Export streams the same listing as a CSV download.
// GET /api/v1/attendance/export
func (h *AttendanceHandler) Export(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var query dto.AttendanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	data, err := h.attendance.ExportCSV(c.Request.Context(), sess, &query)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="attendance.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *AttendanceHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, upstream.ErrUnauthorized):
		response.Unauthorized(c, "Session rejected by backend")
	case errors.Is(err, upstream.ErrUnavailable):
		response.UpstreamError(c, err)
	default:
		response.InternalError(c, err)
	}
}
