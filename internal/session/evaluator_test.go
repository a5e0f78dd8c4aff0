package session

import (
	"net/url"
	"testing"
	"time"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluatorAt(token.NewCodecAt(fixedClock), authz.NewCatalog(), fixedClock)
}

func TestEvaluate_NoToken(t *testing.T) {
	c, _ := testContext(nil)
	store := NewStore(c, testStoreConfig(), token.NewCodecAt(fixedClock), nil)

	sess := newTestEvaluator().Evaluate(store)
	if sess.Authenticated {
		t.Error("empty store must evaluate unauthenticated")
	}
	if sess.Permissions == nil || len(sess.Permissions) != 0 {
		t.Errorf("Permissions = %v, want empty non-nil set", sess.Permissions)
	}
	if len(sess.Roles()) != 0 {
		t.Errorf("Roles = %v, want empty", sess.Roles())
	}
}

func TestEvaluate_LiveSession(t *testing.T) {
	tok := makeToken(t, map[string]interface{}{
		"sub":   "jperez",
		"exp":   testNow.Add(time.Hour).Unix(),
		"roles": []interface{}{map[string]interface{}{"nombre": "ROLE_RH"}},
	})
	c, _ := testContext(map[string]string{"adp_rh_auth_token": tok})
	store := NewStore(c, testStoreConfig(), token.NewCodecAt(fixedClock), nil)

	sess := newTestEvaluator().Evaluate(store)
	if !sess.Authenticated {
		t.Fatal("valid token must evaluate authenticated")
	}
	if sess.Token != tok {
		t.Error("session must carry the raw token for upstream calls")
	}
	if !sess.HasRole(domain.RoleRH) {
		t.Errorf("Roles = %v, want ROLE_RH", sess.Roles())
	}
	if !sess.HasPermission(authz.PermUsersView) {
		t.Error("RH session must carry users:view")
	}
	if sess.HasPermission(authz.PermUsersDelete) {
		t.Error("RH session must not carry users:delete")
	}
}

func TestEvaluate_ExpiredTokenPurges(t *testing.T) {
	tok := makeToken(t, map[string]interface{}{
		"sub": "jperez",
		"exp": testNow.Add(-time.Minute).Unix(),
	})
	c, w := testContext(map[string]string{"adp_rh_auth_token": tok})
	store := NewStore(c, testStoreConfig(), token.NewCodecAt(fixedClock), nil)

	sess := newTestEvaluator().Evaluate(store)
	if sess.Authenticated {
		t.Fatal("expired token must evaluate unauthenticated")
	}

	purged := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "adp_rh_auth_token" && ck.MaxAge < 0 {
			purged = true
		}
	}
	if !purged {
		t.Error("expired token must be purged from the store")
	}
}

func TestEvaluate_RolesFallBackToRecordCookie(t *testing.T) {
	// Token without any role claim; the record cookie written at login
	// supplies the roles.
	tok := makeToken(t, map[string]interface{}{
		"sub": "jperez",
		"exp": testNow.Add(time.Hour).Unix(),
	})
	c, _ := testContext(map[string]string{
		"adp_rh_auth_token": tok,
		"adp_rh_user_data":  url.QueryEscape(`{"subject":"jperez","roles":["ROLE_SUPERVISOR"]}`),
	})
	store := NewStore(c, testStoreConfig(), token.NewCodecAt(fixedClock), nil)

	sess := newTestEvaluator().Evaluate(store)
	if !sess.Authenticated {
		t.Fatal("session should be live")
	}
	if !sess.HasRole(domain.RoleSupervisor) {
		t.Errorf("Roles = %v, want ROLE_SUPERVISOR from record cookie", sess.Roles())
	}
}

func TestAuthorize_ANDSemantics(t *testing.T) {
	e := newTestEvaluator()

	rh := &domain.Session{
		Authenticated: true,
		Record:        &domain.SessionRecord{Roles: []domain.Role{domain.RoleRH}},
		Permissions:   authz.NewCatalog().PermissionsFor([]domain.Role{domain.RoleRH}),
	}

	if !e.Authorize(rh, authz.PermUsersView) {
		t.Error("RH should pass users:view")
	}
	if !e.Authorize(rh, authz.PermUsersView, authz.PermAttendanceView) {
		t.Error("RH should pass both held permissions")
	}
	if e.Authorize(rh, authz.PermUsersView, authz.PermUsersDelete) {
		t.Error("one missing permission must fail the whole check")
	}
	if e.Authorize(nil, authz.PermUsersView) {
		t.Error("nil session never authorizes")
	}
	if e.Authorize(&domain.Session{}, authz.PermUsersView) {
		t.Error("unauthenticated session never authorizes")
	}
	if !e.Authorize(rh) {
		t.Error("no required permissions means any live session passes")
	}
}
