package service

import (
	"context"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/upstream"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/telemetry"
)

// DirectoryService serves the user directory screens. All data comes from
// the attendance backend; the console only filters what the caller is
// allowed to see.
type DirectoryService interface {
	ListUsers(ctx context.Context, sess *domain.Session, query *dto.ListUsersQuery) (*dto.UserListResponse, error)
	GetUser(ctx context.Context, sess *domain.Session, id string) (*dto.UserRecord, error)
	CreateUser(ctx context.Context, sess *domain.Session, req *dto.CreateUserRequest) (*dto.UserRecord, error)
	UpdateUser(ctx context.Context, sess *domain.Session, id string, req *dto.UpdateUserRequest) (*dto.UserRecord, error)
	UpdateUserStatus(ctx context.Context, sess *domain.Session, id string, active bool) error
}

type directoryService struct {
	client *upstream.Client
}

// NewDirectoryService creates the directory service.
func NewDirectoryService(client *upstream.Client) DirectoryService {
	return &directoryService{client: client}
}

func (s *directoryService) ListUsers(ctx context.Context, sess *domain.Session, query *dto.ListUsersQuery) (*dto.UserListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.list_users")
	defer span.End()

	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("pageSize", strconv.Itoa(query.PageSize))

	var page struct {
		Users []dto.UserRecord `json:"users"`
		Total int              `json:"total"`
	}
	if err := s.client.Get(ctx, "/users", params, sess.Token, &page); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	users := s.filterVisible(sess, page.Users)
	span.SetAttributes(attribute.Int("count", len(users)))
	span.SetStatus(codes.Ok, "")

	return &dto.UserListResponse{
		Users:    users,
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    page.Total,
	}, nil
}

func (s *directoryService) GetUser(ctx context.Context, sess *domain.Session, id string) (*dto.UserRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.get_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	var user dto.UserRecord
	if err := s.client.Get(ctx, "/users/"+url.PathEscape(id), nil, sess.Token, &user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if isAdminAccount(&user) && !sess.HasPermission(authz.PermUsersViewAdmins) {
		span.SetStatus(codes.Error, "admin account hidden")
		return nil, ErrNotVisible
	}

	span.SetStatus(codes.Ok, "")
	return &user, nil
}

func (s *directoryService) CreateUser(ctx context.Context, sess *domain.Session, req *dto.CreateUserRequest) (*dto.UserRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.create_user")
	defer span.End()

	span.SetAttributes(attribute.String("usuario", req.Usuario))

	var user dto.UserRecord
	if err := s.client.Post(ctx, "/users", sess.Token, req, &user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &user, nil
}

func (s *directoryService) UpdateUser(ctx context.Context, sess *domain.Session, id string, req *dto.UpdateUserRequest) (*dto.UserRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.update_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	var user dto.UserRecord
	if err := s.client.Put(ctx, "/users/"+url.PathEscape(id), sess.Token, req, &user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &user, nil
}

func (s *directoryService) UpdateUserStatus(ctx context.Context, sess *domain.Session, id string, active bool) error {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.update_user_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", id),
		attribute.Bool("active", active),
	)

	body := map[string]bool{"activo": active}
	if err := s.client.Put(ctx, "/users/"+url.PathEscape(id)+"/status", sess.Token, body, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// filterVisible drops administrator accounts from listings for callers
// without the view-admins permission.
func (s *directoryService) filterVisible(sess *domain.Session, users []dto.UserRecord) []dto.UserRecord {
	if sess.HasPermission(authz.PermUsersViewAdmins) {
		return users
	}
	visible := make([]dto.UserRecord, 0, len(users))
	for _, u := range users {
		if !isAdminAccount(&u) {
			visible = append(visible, u)
		}
	}
	return visible
}

func isAdminAccount(user *dto.UserRecord) bool {
	for _, role := range user.Roles {
		if domain.Role(role) == domain.RoleAdmin {
			return true
		}
	}
	return false
}
