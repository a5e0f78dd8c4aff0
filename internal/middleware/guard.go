package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/session"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/response"
)

// Guard is the API-side enforcement point. Unlike the gatekeeper it never
// redirects: API callers get 401/403 JSON envelopes. Both enforcement points
// authorize through the same evaluator, so a view a user cannot navigate to
// is backed by endpoints that refuse them too.
type Guard struct {
	storeCfg  session.StoreConfig
	evaluator *session.Evaluator
	codec     *token.Codec
	mirror    session.RecordMirror
}

// NewGuard wires the API guard. mirror may be nil.
func NewGuard(storeCfg session.StoreConfig, evaluator *session.Evaluator, codec *token.Codec, mirror session.RecordMirror) *Guard {
	return &Guard{
		storeCfg:  storeCfg,
		evaluator: evaluator,
		codec:     codec,
		mirror:    mirror,
	}
}

// session returns the evaluated session, reusing the one a prior middleware
// stored on the context when present.
func (g *Guard) session(c *gin.Context) *domain.Session {
	if sess, ok := SessionFrom(c); ok {
		return sess
	}
	store := session.NewStore(c, g.storeCfg, g.codec, g.mirror)
	sess := g.evaluator.Evaluate(store)
	c.Set(SessionKey, sess)
	return sess
}

// RequireAuth admits any live session.
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := g.session(c)
		if !sess.Authenticated {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles admits sessions carrying at least one of the given roles.
func (g *Guard) RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := g.session(c)
		if !sess.Authenticated {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}
		for _, role := range roles {
			if sess.HasRole(role) {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "Insufficient role")
		c.Abort()
	}
}

// RequirePermissions admits sessions carrying every one of the given
// permissions.
func (g *Guard) RequirePermissions(perms ...domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := g.session(c)
		if !sess.Authenticated {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}
		if !g.evaluator.Authorize(sess, perms...) {
			response.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
