package city

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-city-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-city-registry/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// CityVerifier confirms that a name denotes a real place.
// It returns the first matching place when verified. Implementations decide whether
// a failed lookup is an error or simply "not verified".
type CityVerifier interface {
	VerifyCity(ctx context.Context, name string) (*types.GeoPlace, bool, error)
}

// Service defines the business logic contract for city operations.
type Service interface {
	ListCities(ctx context.Context) ([]types.City, error)
	GetCity(ctx context.Context, id uuid.UUID) (*types.City, error)
	CreateCity(ctx context.Context, req types.CityRequest) (*types.City, error)
	UpdateCity(ctx context.Context, id uuid.UUID, req types.CityRequest) (*types.City, error)
	DeleteCity(ctx context.Context, id uuid.UUID) error
	VerifyCity(ctx context.Context, name string) (*types.GeoPlace, error)
}

// ServiceImpl implements Service on top of a CityRepository and a CityVerifier.
type ServiceImpl struct {
	logger           *slog.Logger
	repo             CityRepository
	verifier         CityVerifier
	sanitizeOnCreate bool
}

// NewCityService creates the city service. Names are HTML-escaped on update;
// sanitizeOnCreate extends that to create.
func NewCityService(repo CityRepository, verifier CityVerifier, sanitizeOnCreate bool, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:           logger,
		repo:             repo,
		verifier:         verifier,
		sanitizeOnCreate: sanitizeOnCreate,
	}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// SanitizeName escapes the characters that carry meaning in HTML markup.
func SanitizeName(name string) string {
	return htmlEscaper.Replace(name)
}

func countWrite(ctx context.Context, operation string) {
	metrics.Get().CityWritesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// ListCities returns every stored city.
func (s *ServiceImpl) ListCities(ctx context.Context) ([]types.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "ListCities")
	defer span.End()

	l := s.logger.With(slog.String("method", "ListCities"))
	l.DebugContext(ctx, "Fetching all cities")

	cities, err := s.repo.ListCities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch cities")
		return nil, fmt.Errorf("error fetching cities: %w", err)
	}

	span.SetStatus(codes.Ok, "Cities fetched")
	return cities, nil
}

// GetCity returns a single city. It never calls the verifier.
func (s *ServiceImpl) GetCity(ctx context.Context, id uuid.UUID) (*types.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "GetCity", trace.WithAttributes(
		attribute.String("city.id", id.String()),
	))
	defer span.End()

	city, err := s.repo.GetCityByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch city")
		return nil, fmt.Errorf("error fetching city: %w", err)
	}

	span.SetStatus(codes.Ok, "City fetched")
	return city, nil
}

// verify wraps the verifier and turns "not verified" into types.ErrCityNotVerified.
func (s *ServiceImpl) verify(ctx context.Context, name string) (*types.GeoPlace, error) {
	place, ok, err := s.verifier.VerifyCity(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error verifying city %q: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("city %q: %w", name, types.ErrCityNotVerified)
	}
	return place, nil
}

// CreateCity verifies the name and inserts the city. Nothing is written when
// verification fails.
func (s *ServiceImpl) CreateCity(ctx context.Context, req types.CityRequest) (*types.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "CreateCity", trace.WithAttributes(
		attribute.String("city.name", req.Name),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateCity"), slog.String("name", req.Name))

	if _, err := s.verify(ctx, req.Name); err != nil {
		l.InfoContext(ctx, "City rejected by verification", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "City not verified")
		return nil, err
	}

	params := req.Params()
	if s.sanitizeOnCreate {
		params.Name = SanitizeName(params.Name)
	}

	city, err := s.repo.CreateCity(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create city")
		return nil, fmt.Errorf("error creating city: %w", err)
	}

	countWrite(ctx, "create")
	l.InfoContext(ctx, "City created", slog.String("cityID", city.ID.String()))
	span.SetStatus(codes.Ok, "City created")
	return city, nil
}

// UpdateCity re-verifies the new name, escapes it and overwrites all fields.
// The stored record is untouched when the city is missing or the name is not verified.
func (s *ServiceImpl) UpdateCity(ctx context.Context, id uuid.UUID, req types.CityRequest) (*types.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "UpdateCity", trace.WithAttributes(
		attribute.String("city.id", id.String()),
		attribute.String("city.name", req.Name),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateCity"), slog.String("cityID", id.String()))

	if _, err := s.repo.GetCityByID(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch city")
		return nil, fmt.Errorf("error fetching city: %w", err)
	}

	if _, err := s.verify(ctx, req.Name); err != nil {
		l.InfoContext(ctx, "City rejected by verification", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "City not verified")
		return nil, err
	}

	params := req.Params()
	params.Name = SanitizeName(params.Name)

	city, err := s.repo.UpdateCity(ctx, id, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update city")
		return nil, fmt.Errorf("error updating city: %w", err)
	}

	countWrite(ctx, "update")
	l.InfoContext(ctx, "City updated")
	span.SetStatus(codes.Ok, "City updated")
	return city, nil
}

// DeleteCity removes a city by id.
func (s *ServiceImpl) DeleteCity(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("CityService").Start(ctx, "DeleteCity", trace.WithAttributes(
		attribute.String("city.id", id.String()),
	))
	defer span.End()

	if err := s.repo.DeleteCity(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete city")
		return fmt.Errorf("error deleting city: %w", err)
	}

	countWrite(ctx, "delete")
	s.logger.InfoContext(ctx, "City deleted", slog.String("method", "DeleteCity"), slog.String("cityID", id.String()))
	span.SetStatus(codes.Ok, "City deleted")
	return nil
}

// VerifyCity looks a name up without touching the store.
func (s *ServiceImpl) VerifyCity(ctx context.Context, name string) (*types.GeoPlace, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "VerifyCity", trace.WithAttributes(
		attribute.String("city.name", name),
	))
	defer span.End()

	place, err := s.verify(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "City not verified")
		return nil, err
	}

	span.SetStatus(codes.Ok, "City verified")
	return place, nil
}
