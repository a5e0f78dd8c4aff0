package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/service"
	"github.com/DesarrolloRWD/adp-rh-console/internal/session"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var handlerNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func handlerClock() time.Time { return handlerNow }

func handlerToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("failed to marshal claims: %v", err)
	}
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func handlerStoreConfig() session.StoreConfig {
	return session.StoreConfig{
		TokenCookie:  "adp_rh_auth_token",
		ClientCookie: "adp_rh_auth_client",
		RecordCookie: "adp_rh_user_data",
		DeviceCookie: "adp_rh_device_id",
		TTL:          168 * time.Hour,
	}
}

type stubAuthService struct {
	result  *service.LoginResult
	err     error
	logouts int
}

func (s *stubAuthService) Login(context.Context, *dto.LoginRequest, string) (*service.LoginResult, error) {
	return s.result, s.err
}

func (s *stubAuthService) Logout(context.Context, *domain.SessionRecord, string) {
	s.logouts++
}

func newAuthRouter(stub *stubAuthService) *gin.Engine {
	h := NewAuthHandler(stub, authz.NewCatalog(), handlerStoreConfig(), token.NewCodecAt(handlerClock), nil)
	r := gin.New()
	r.POST("/api/v1/auth/login", h.Login)
	r.POST("/api/v1/auth/logout", h.Logout)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginHandler_Success(t *testing.T) {
	tok := handlerToken(t, map[string]interface{}{
		"sub":   "jperez",
		"exp":   handlerNow.Add(time.Hour).Unix(),
		"roles": []string{"ROLE_RH"},
	})
	stub := &stubAuthService{result: &service.LoginResult{
		Token: tok,
		Record: &domain.SessionRecord{
			Subject:   "jperez",
			Roles:     []domain.Role{domain.RoleRH},
			ExpiresAt: handlerNow.Add(time.Hour).Unix(),
		},
		RedirectTo: "/dashboard",
	}}

	w := postJSON(t, newAuthRouter(stub), "/api/v1/auth/login",
		dto.LoginRequest{Usuario: "jperez", Pswd: "secreta"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !body.Success || body.Data.RedirectTo != "/dashboard" {
		t.Errorf("body = %+v", body)
	}
	if body.Data.User.Subject != "jperez" {
		t.Errorf("user = %+v", body.Data.User)
	}

	cookies := map[string]string{}
	for _, ck := range w.Result().Cookies() {
		cookies[ck.Name] = ck.Value
	}
	if cookies["adp_rh_auth_token"] != tok || cookies["adp_rh_auth_client"] != tok {
		t.Errorf("session cookies = %v", cookies)
	}
	if _, ok := cookies["adp_rh_user_data"]; !ok {
		t.Error("record cookie not set")
	}
	if _, ok := cookies["adp_rh_device_id"]; !ok {
		t.Error("device cookie not set on first login")
	}
}

func TestLoginHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"blocked account", service.ErrWebAccessBlocked, http.StatusForbidden},
		{"upstream down", service.ErrUpstreamDown, http.StatusBadGateway},
		{"unusable token", service.ErrUnusableToken, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubAuthService{err: tc.err}
			w := postJSON(t, newAuthRouter(stub), "/api/v1/auth/login",
				dto.LoginRequest{Usuario: "u", Pswd: "p"})
			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			for _, ck := range w.Result().Cookies() {
				if ck.Name == "adp_rh_auth_token" && ck.MaxAge >= 0 {
					t.Error("failed login must not establish a session cookie")
				}
			}
		})
	}
}

func TestLoginHandler_MissingFields(t *testing.T) {
	w := postJSON(t, newAuthRouter(&stubAuthService{}), "/api/v1/auth/login",
		map[string]string{"usuario": "jperez"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLogoutHandler_ClearsCookies(t *testing.T) {
	stub := &stubAuthService{}
	r := newAuthRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "adp_rh_auth_token", Value: "whatever"})
	req.AddCookie(&http.Cookie{Name: "adp_rh_device_id", Value: "dev-7"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if stub.logouts != 1 {
		t.Errorf("Logout called %d times", stub.logouts)
	}

	expired := map[string]bool{}
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			expired[ck.Name] = true
		}
	}
	for _, name := range []string{"adp_rh_auth_token", "adp_rh_auth_client", "adp_rh_user_data"} {
		if !expired[name] {
			t.Errorf("cookie %s was not expired", name)
		}
	}
	if expired["adp_rh_device_id"] {
		t.Error("device cookie must survive logout")
	}
}

func TestMeHandler(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, authz.NewCatalog(), handlerStoreConfig(), token.NewCodecAt(handlerClock), nil)

	// Without a gatekeeper-established session the endpoint refuses.
	r := gin.New()
	r.GET("/me", h.Me)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
