package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/events"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
	"github.com/DesarrolloRWD/adp-rh-console/internal/upstream"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/config"
)

func serviceToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("failed to marshal claims: %v", err)
	}
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

type recordingPublisher struct {
	opened []string
	closed []string
}

func (p *recordingPublisher) SessionOpened(_ context.Context, record *domain.SessionRecord, _ string) {
	p.opened = append(p.opened, record.Subject)
}

func (p *recordingPublisher) SessionClosed(_ context.Context, record *domain.SessionRecord, _ string) {
	subject := ""
	if record != nil {
		subject = record.Subject
	}
	p.closed = append(p.closed, subject)
}

func (p *recordingPublisher) Close() {}

func newAuthService(t *testing.T, upstreamHandler http.HandlerFunc, publisher events.Publisher) (AuthService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(upstreamHandler)
	t.Cleanup(srv.Close)

	client := upstream.NewClient(&config.UpstreamConfig{
		BaseURL:      srv.URL,
		AuthEndpoint: "/security/generate/token",
		Timeout:      5 * time.Second,
	})
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return NewAuthService(client, token.NewCodec(), authz.DefaultRouteTable(), publisher), srv
}

func TestLogin_Success(t *testing.T) {
	tok := serviceToken(t, map[string]interface{}{
		"sub":   "jperez",
		"name":  "Juan Pérez",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": []string{"ROLE_RH"},
	})

	publisher := &recordingPublisher{}
	svc, _ := newAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("upstream saw method %s", r.Method)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("bad login body: %v", err)
		}
		if creds["usuario"] != "jperez" || creds["pswd"] != "secreta" {
			t.Errorf("credentials forwarded as %v", creds)
		}
		json.NewEncoder(w).Encode(map[string]string{"token": tok})
	}, publisher)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{Usuario: "jperez", Pswd: "secreta"}, "dev-1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token != tok {
		t.Error("result must carry the upstream token verbatim")
	}
	if result.Record == nil || result.Record.Subject != "jperez" {
		t.Errorf("Record = %+v", result.Record)
	}
	if result.RedirectTo != "/dashboard" {
		t.Errorf("RedirectTo = %q, want RH landing /dashboard", result.RedirectTo)
	}
	if len(publisher.opened) != 1 || publisher.opened[0] != "jperez" {
		t.Errorf("session opened events = %v", publisher.opened)
	}
}

func TestLogin_ToleratesTrailingSpaceTokenKey(t *testing.T) {
	tok := serviceToken(t, map[string]interface{}{
		"sub":   "jperez",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": []string{"ROLE_RH"},
	})

	svc, _ := newAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		// Some backend releases ship the key with a trailing space.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token ": "` + tok + `"}`))
	}, nil)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{Usuario: "jperez", Pswd: "x"}, "dev-1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token != tok {
		t.Error("token under padded key must still be found")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Usuario: "jperez", Pswd: "mala"}, "dev-1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := upstream.NewClient(&config.UpstreamConfig{
		BaseURL:      srv.URL,
		AuthEndpoint: "/security/generate/token",
		Timeout:      time.Second,
	})
	svc := NewAuthService(client, token.NewCodec(), authz.DefaultRouteTable(), events.NoopPublisher{})

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Usuario: "u", Pswd: "p"}, "dev-1")
	if !errors.Is(err, ErrUpstreamDown) {
		t.Errorf("err = %v, want ErrUpstreamDown", err)
	}
}

func TestLogin_UnusableToken(t *testing.T) {
	cases := []struct {
		name string
		tok  string
	}{
		{"malformed", "not-a-jwt"},
		{"expired", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok := tc.tok
			if tok == "" {
				tok = serviceToken(t, map[string]interface{}{
					"sub": "jperez",
					"exp": time.Now().Add(-time.Hour).Unix(),
				})
			}
			svc, _ := newAuthService(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"token": tok})
			}, nil)

			_, err := svc.Login(context.Background(), &dto.LoginRequest{Usuario: "u", Pswd: "p"}, "dev-1")
			if !errors.Is(err, ErrUnusableToken) {
				t.Errorf("err = %v, want ErrUnusableToken", err)
			}
		})
	}
}

func TestLogin_BlockedAccount(t *testing.T) {
	tok := serviceToken(t, map[string]interface{}{
		"sub":   "bad",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": []string{"ROLE_CHECKTIME", "ROLE_BLOCKED"},
	})
	publisher := &recordingPublisher{}
	svc, _ := newAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": tok})
	}, publisher)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Usuario: "bad", Pswd: "p"}, "dev-1")
	if !errors.Is(err, ErrWebAccessBlocked) {
		t.Errorf("err = %v, want ErrWebAccessBlocked", err)
	}
	if len(publisher.opened) != 0 {
		t.Error("blocked login must not publish a session event")
	}
}

func TestLogin_CallbackRedirect(t *testing.T) {
	tok := serviceToken(t, map[string]interface{}{
		"sub":   "jperez",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": []string{"ROLE_RH"},
	})
	svc, _ := newAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": tok})
	}, nil)

	cases := []struct {
		callback string
		want     string
	}{
		{"/user?tab=2", "/user?tab=2"},
		{"", "/dashboard"},
		{"https://evil.example.com", "/dashboard"},
		{"//evil.example.com", "/dashboard"},
	}
	for _, tc := range cases {
		result, err := svc.Login(context.Background(), &dto.LoginRequest{
			Usuario: "jperez", Pswd: "p", CallbackURL: tc.callback,
		}, "dev-1")
		if err != nil {
			t.Fatalf("Login(%q) failed: %v", tc.callback, err)
		}
		if result.RedirectTo != tc.want {
			t.Errorf("callback %q → %q, want %q", tc.callback, result.RedirectTo, tc.want)
		}
	}
}

func TestLogout_PublishesEvent(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _ := newAuthService(t, func(w http.ResponseWriter, r *http.Request) {}, publisher)

	svc.Logout(context.Background(), &domain.SessionRecord{Subject: "jperez"}, "dev-1")
	if len(publisher.closed) != 1 || publisher.closed[0] != "jperez" {
		t.Errorf("session closed events = %v", publisher.closed)
	}

	// A logout without a readable record still announces the device.
	svc.Logout(context.Background(), nil, "dev-1")
	if len(publisher.closed) != 2 {
		t.Errorf("session closed events = %v", publisher.closed)
	}
}
