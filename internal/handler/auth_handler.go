// Package handler contains the gin HTTP handlers of the console API and the
// server-rendered pages.
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/middleware"
	"github.com/DesarrolloRWD/adp-rh-console/internal/service"
	"github.com/DesarrolloRWD/adp-rh-console/internal/session"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/response"
)

// AuthHandler handles login, logout and session introspection.
type AuthHandler struct {
	authService service.AuthService
	catalog     *authz.Catalog
	storeCfg    session.StoreConfig
	codec       *token.Codec
	mirror      session.RecordMirror
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, catalog *authz.Catalog, storeCfg session.StoreConfig, codec *token.Codec, mirror session.RecordMirror) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		catalog:     catalog,
		storeCfg:    storeCfg,
		codec:       codec,
		mirror:      mirror,
	}
}

func (h *AuthHandler) store(c *gin.Context) *session.Store {
	return session.NewStore(c, h.storeCfg, h.codec, h.mirror)
}

// Login handles credential exchange and establishes the session cookies.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	store := h.store(c)
	result, err := h.authService.Login(c.Request.Context(), &req, store.DeviceID())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, service.ErrWebAccessBlocked):
			response.Forbidden(c, "This account cannot use the web console")
		case errors.Is(err, service.ErrUpstreamDown), errors.Is(err, service.ErrUnusableToken):
			response.UpstreamError(c, err)
		default:
			response.InternalError(c, err)
		}
		return
	}

	if err := store.Save(result.Token, result.Record); err != nil {
		response.InternalError(c, err)
		return
	}

	sess := &domain.Session{
		Token:         result.Token,
		Authenticated: true,
		Record:        result.Record,
		Permissions:   h.catalog.PermissionsFor(result.Record.Roles),
	}
	response.Success(c, dto.LoginResponse{
		User:       dto.NewSessionUser(sess),
		RedirectTo: result.RedirectTo,
	})
}

// Logout drops the session from every storage location.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	store := h.store(c)
	record := store.Record()
	deviceID := store.DeviceID()

	store.Clear()
	h.authService.Logout(c.Request.Context(), record, deviceID)

	response.Success(c, gin.H{"message": "Logged out"})
}

// Me returns the evaluated session of the caller.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok || !sess.Authenticated {
		response.Unauthorized(c, "Not authenticated")
		return
	}
	response.Success(c, dto.NewSessionUser(sess))
}
