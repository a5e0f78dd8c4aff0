package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/middleware"
	"github.com/DesarrolloRWD/adp-rh-console/internal/session"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/response"
)

// SessionHandler lets the browser UI re-evaluate its session after mount.
// The page was already admitted by the gatekeeper; this endpoint re-runs the
// same decision for a client-side navigation target so the UI can render,
// redirect or fall back without a full page load.
type SessionHandler struct {
	storeCfg  session.StoreConfig
	evaluator *session.Evaluator
	table     *authz.RouteTable
	codec     *token.Codec
	mirror    session.RecordMirror
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(storeCfg session.StoreConfig, evaluator *session.Evaluator, table *authz.RouteTable, codec *token.Codec, mirror session.RecordMirror) *SessionHandler {
	return &SessionHandler{
		storeCfg:  storeCfg,
		evaluator: evaluator,
		table:     table,
		codec:     codec,
		mirror:    mirror,
	}
}

type sessionDecision struct {
	State      string `json:"state"`
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

type sessionInfo struct {
	Authenticated bool             `json:"authenticated"`
	User          *dto.SessionUser `json:"user,omitempty"`
	Decision      *sessionDecision `json:"decision,omitempty"`
}

// Get returns the evaluated session and, when a ?path= query is present, the
// navigation decision for that path.
// GET /api/v1/session
func (h *SessionHandler) Get(c *gin.Context) {
	store := session.NewStore(c, h.storeCfg, h.codec, h.mirror)
	sess := h.evaluator.Evaluate(store)

	info := sessionInfo{Authenticated: sess.Authenticated}
	if sess.Authenticated {
		user := dto.NewSessionUser(sess)
		info.User = &user
	}

	if path := c.Query("path"); path != "" {
		d := middleware.Decide(h.table, sess, path)
		info.Decision = &sessionDecision{
			State:      string(d.State),
			Allow:      d.Allow,
			RedirectTo: d.RedirectTo,
		}
	}

	response.Success(c, info)
}
