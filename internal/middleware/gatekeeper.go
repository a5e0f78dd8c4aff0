package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/session"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/logger"
)

// SessionKey is the gin context key the evaluated session is stored under.
const SessionKey = "authz_session"

// Decision is the gatekeeper's verdict for one navigation.
type Decision struct {
	State        domain.AccessState
	Allow        bool
	RedirectTo   string
	ClearSession bool
}

// AuditSink receives gatekeeper decisions for the audit log. Implementations
// must never block the request path.
type AuditSink interface {
	Record(entry domain.AuditEntry)
}

// Decide classifies one page navigation against the route table. It is a
// pure function of (requested, session): every redirect the console ever
// issues for a page request comes out of here, which keeps the decision
// sequence testable without HTTP plumbing. requested may carry a query
// string; matching uses the path alone, the login callback keeps the query.
//
// The order is fixed: the public-only login page is handled before
// everything else so every redirect chain terminates there, then the
// blocked-role check, then the root shortcut, then the protected-prefix
// checks.
func Decide(table *authz.RouteTable, sess *domain.Session, requested string) Decision {
	path := requested
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	roles := sess.Roles()

	// The login page renders even for dead or blocked sessions; redirecting
	// away from it could only loop back here.
	if table.IsPublicOnly(path) {
		if !sess.Authenticated {
			return Decision{State: domain.AccessPublicUnauthenticated, Allow: true}
		}
		if sess.HasRole(domain.RoleBlocked) {
			return Decision{State: domain.AccessWebBlocked, Allow: true, ClearSession: true}
		}
		rule := table.Match(table.LandingPath)
		if rule != nil && !rule.RoleAllowed(roles) {
			return Decision{State: domain.AccessPublicAuthenticated, RedirectTo: table.DeniedPath}
		}
		return Decision{State: domain.AccessPublicAuthenticated, RedirectTo: table.LandingPath}
	}

	// Blocked accounts lose the session outright. The blocked page itself
	// stays reachable so the redirect terminates.
	if sess.Authenticated && sess.HasRole(domain.RoleBlocked) {
		if path == table.BlockedPath {
			return Decision{State: domain.AccessWebBlocked, Allow: true, ClearSession: true}
		}
		return Decision{State: domain.AccessWebBlocked, RedirectTo: table.BlockedPath, ClearSession: true}
	}

	if path == "/" {
		if sess.Authenticated {
			return Decision{State: domain.AccessPublicAuthenticated, RedirectTo: table.LandingFor(roles)}
		}
		return Decision{State: domain.AccessPublicUnauthenticated, RedirectTo: table.LoginPath}
	}

	rule := table.Match(path)
	if rule == nil {
		// Unlisted pages (access-denied, blocked, static assets) render for
		// everyone.
		if sess.Authenticated {
			return Decision{State: domain.AccessPublicAuthenticated, Allow: true}
		}
		return Decision{State: domain.AccessPublicUnauthenticated, Allow: true}
	}

	if !sess.Authenticated {
		return Decision{
			State:      domain.AccessNoToken,
			RedirectTo: loginRedirect(table.LoginPath, requested),
		}
	}

	if !rule.RoleAllowed(roles) {
		return Decision{State: domain.AccessUnauthorizedRole, RedirectTo: table.DeniedPath}
	}
	for _, perm := range rule.Permissions {
		if !sess.HasPermission(perm) {
			return Decision{State: domain.AccessUnauthorizedRole, RedirectTo: table.DeniedPath}
		}
	}

	return Decision{State: domain.AccessAuthorized, Allow: true}
}

// loginRedirect builds the login URL carrying the originally requested path
// so the user lands back where they were headed. Only relative single-slash
// paths are ever propagated; anything else is dropped to keep the parameter
// from becoming an open redirect.
func loginRedirect(loginPath, requested string) string {
	if !strings.HasPrefix(requested, "/") || strings.HasPrefix(requested, "//") {
		return loginPath
	}
	return loginPath + "?callbackUrl=" + url.QueryEscape(requested)
}

// Gatekeeper is the page-navigation enforcement point. It evaluates the
// session once, decides, applies the decision, and exposes the session to
// downstream handlers under SessionKey.
type Gatekeeper struct {
	storeCfg  session.StoreConfig
	evaluator *session.Evaluator
	table     *authz.RouteTable
	audit     AuditSink
	log       *logger.Logger

	newStore func(c *gin.Context) *session.Store
}

// NewGatekeeper wires the gatekeeper. audit may be nil when auditing is
// disabled, mirror may be nil when the Redis mirror is not configured.
func NewGatekeeper(storeCfg session.StoreConfig, evaluator *session.Evaluator, table *authz.RouteTable, codec *token.Codec, mirror session.RecordMirror, audit AuditSink) *Gatekeeper {
	g := &Gatekeeper{
		storeCfg:  storeCfg,
		evaluator: evaluator,
		table:     table,
		audit:     audit,
		log:       logger.Get(),
	}
	g.newStore = func(c *gin.Context) *session.Store {
		return session.NewStore(c, storeCfg, codec, mirror)
	}
	return g
}

// Handle returns the gin middleware for page routes.
func (g *Gatekeeper) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := g.newStore(c)
		sess := g.evaluator.Evaluate(store)
		requested := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			requested += "?" + raw
		}
		decision := Decide(g.table, sess, requested)

		if decision.ClearSession {
			store.Clear()
		}
		g.record(c, sess, decision)

		if !decision.Allow {
			g.log.Info("navigation redirected",
				zap.String("path", c.Request.URL.Path),
				zap.String("to", decision.RedirectTo),
				zap.String("state", string(decision.State)),
			)
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
			return
		}

		c.Set(SessionKey, sess)
		c.Next()
	}
}

func (g *Gatekeeper) record(c *gin.Context, sess *domain.Session, decision Decision) {
	if g.audit == nil {
		return
	}
	var subject string
	if sess.Record != nil {
		subject = sess.Record.Subject
	}
	g.audit.Record(domain.AuditEntry{
		ID:         uuid.New().String(),
		OccurredAt: time.Now().UTC(),
		Subject:    subject,
		Path:       c.Request.URL.Path,
		Roles:      sess.Roles(),
		State:      decision.State,
		RedirectTo: decision.RedirectTo,
		RequestID:  GetRequestID(c),
	})
}

// SessionFrom returns the session the gatekeeper (or a guard) stored on the
// context. The second return is false when no enforcement point ran.
func SessionFrom(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*domain.Session)
	return sess, ok
}
