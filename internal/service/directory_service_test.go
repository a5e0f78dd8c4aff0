package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/upstream"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/config"
)

func sessionFor(roles ...domain.Role) *domain.Session {
	return &domain.Session{
		Token:         "bearer-tok",
		Authenticated: true,
		Record:        &domain.SessionRecord{Subject: "caller", Roles: roles},
		Permissions:   authz.NewCatalog().PermissionsFor(roles),
	}
}

func newDirectoryService(t *testing.T, handler http.HandlerFunc) DirectoryService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := upstream.NewClient(&config.UpstreamConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	return NewDirectoryService(client)
}

func directoryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer bearer-tok" {
			http.Error(w, "missing bearer", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"users": []dto.UserRecord{
				{ID: "1", Usuario: "jperez", Roles: []string{"ROLE_RH"}, Activo: true},
				{ID: "2", Usuario: "root", Roles: []string{"ROLE_ADMIN"}, Activo: true},
				{ID: "3", Usuario: "mlopez", Roles: []string{"ROLE_CHECKTIME"}, Activo: false},
			},
			"total": 3,
		})
	}
}

func TestListUsers_HidesAdminsFromNonAdmins(t *testing.T) {
	svc := newDirectoryService(t, directoryPage())

	page, err := svc.ListUsers(context.Background(), sessionFor(domain.RoleRH), &dto.ListUsersQuery{Page: 1, PageSize: 25})
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(page.Users) != 2 {
		t.Fatalf("got %d users, want 2 (admin hidden)", len(page.Users))
	}
	for _, u := range page.Users {
		if u.Usuario == "root" {
			t.Error("admin account leaked into an RH listing")
		}
	}
	if page.Total != 3 {
		t.Errorf("Total = %d, want the backend's count", page.Total)
	}
}

func TestListUsers_AdminsSeeEverything(t *testing.T) {
	svc := newDirectoryService(t, directoryPage())

	page, err := svc.ListUsers(context.Background(), sessionFor(domain.RoleAdmin), &dto.ListUsersQuery{Page: 1, PageSize: 25})
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(page.Users) != 3 {
		t.Errorf("got %d users, want all 3", len(page.Users))
	}
}

func TestGetUser_AdminAccountHidden(t *testing.T) {
	svc := newDirectoryService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dto.UserRecord{ID: "2", Usuario: "root", Roles: []string{"ROLE_ADMIN"}})
	})

	if _, err := svc.GetUser(context.Background(), sessionFor(domain.RoleRH), "2"); !errors.Is(err, ErrNotVisible) {
		t.Errorf("err = %v, want ErrNotVisible", err)
	}

	user, err := svc.GetUser(context.Background(), sessionFor(domain.RoleAdmin), "2")
	if err != nil {
		t.Fatalf("GetUser as admin failed: %v", err)
	}
	if user.Usuario != "root" {
		t.Errorf("Usuario = %q", user.Usuario)
	}
}

func TestUpdateUserStatus(t *testing.T) {
	var gotPath string
	var gotBody map[string]bool
	svc := newDirectoryService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	if err := svc.UpdateUserStatus(context.Background(), sessionFor(domain.RoleRH), "42", false); err != nil {
		t.Fatalf("UpdateUserStatus failed: %v", err)
	}
	if gotPath != "/users/42/status" {
		t.Errorf("path = %q", gotPath)
	}
	if v, ok := gotBody["activo"]; !ok || v {
		t.Errorf("body = %v, want activo=false", gotBody)
	}
}

func TestListUsers_BearerRejected(t *testing.T) {
	svc := newDirectoryService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := svc.ListUsers(context.Background(), sessionFor(domain.RoleRH), &dto.ListUsersQuery{Page: 1, PageSize: 25})
	if !errors.Is(err, upstream.ErrUnauthorized) {
		t.Errorf("err = %v, want upstream.ErrUnauthorized", err)
	}
}
