package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/upstream"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/telemetry"
)

// AttendanceService serves the check-in/check-out screens from the
// attendance backend.
type AttendanceService interface {
	List(ctx context.Context, sess *domain.Session, query *dto.AttendanceQuery) (*dto.AttendanceListResponse, error)
	Detail(ctx context.Context, sess *domain.Session, id string) (*dto.AttendanceDetail, error)
	ExportCSV(ctx context.Context, sess *domain.Session, query *dto.AttendanceQuery) ([]byte, error)
}

type attendanceService struct {
	client *upstream.Client
}

// NewAttendanceService creates the attendance service.
func NewAttendanceService(client *upstream.Client) AttendanceService {
	return &attendanceService{client: client}
}

func (s *attendanceService) List(ctx context.Context, sess *domain.Session, query *dto.AttendanceQuery) (*dto.AttendanceListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.attendance.list")
	defer span.End()

	span.SetAttributes(
		attribute.String("from", query.From),
		attribute.String("to", query.To),
	)

	params := url.Values{}
	params.Set("from", query.From)
	params.Set("to", query.To)
	if query.Usuario != "" {
		params.Set("usuario", query.Usuario)
	}

	var records []dto.AttendanceRecord
	if err := s.client.Get(ctx, "/attendance", params, sess.Token, &records); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(records)))
	span.SetStatus(codes.Ok, "")

	return &dto.AttendanceListResponse{
		Records: records,
		From:    query.From,
		To:      query.To,
	}, nil
}

// Detail returns one record with its capture metadata (geotag, photo).
func (s *attendanceService) Detail(ctx context.Context, sess *domain.Session, id string) (*dto.AttendanceDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.attendance.detail")
	defer span.End()

	span.SetAttributes(attribute.String("record_id", id))

	var detail dto.AttendanceDetail
	if err := s.client.Get(ctx, "/attendance/"+url.PathEscape(id), nil, sess.Token, &detail); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &detail, nil
}

// ExportCSV renders the same listing as a CSV document for download.
func (s *attendanceService) ExportCSV(ctx context.Context, sess *domain.Session, query *dto.AttendanceQuery) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.attendance.export_csv")
	defer span.End()

	listing, err := s.List(ctx, sess, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"usuario", "nombre", "fecha", "entrada", "salida", "sucursal", "estado"})
	for _, r := range listing.Records {
		_ = w.Write([]string{r.Usuario, r.Nombre, r.Fecha, r.Entrada, r.Salida, r.Sucursal, r.Estado})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return buf.Bytes(), nil
}
