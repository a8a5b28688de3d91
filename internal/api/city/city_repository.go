package city

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-city-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-city-registry/internal/types"
)

const (
	citiesTable        = "cities"
	uniqueViolation    = "23505"
	cityReturnedFields = "RETURNING id, name, favorite, temperature, created_at"
)

var cityColumns = []string{"id", "name", "favorite", "temperature", "created_at"}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var _ CityRepository = (*PostgresCityRepository)(nil)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type CityRepository interface {
	ListCities(ctx context.Context) ([]types.City, error)
	GetCityByID(ctx context.Context, id uuid.UUID) (*types.City, error)
	CreateCity(ctx context.Context, params types.CityParams) (*types.City, error)
	UpdateCity(ctx context.Context, id uuid.UUID, params types.CityParams) (*types.City, error)
	DeleteCity(ctx context.Context, id uuid.UUID) error
}

type PostgresCityRepository struct {
	logger *slog.Logger
	pgpool DB
}

func NewCityRepository(pgpool DB, logger *slog.Logger) *PostgresCityRepository {
	return &PostgresCityRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func startSpan(ctx context.Context, name, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", citiesTable),
	}, attrs...)
	return otel.Tracer("CityRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

// observe records query latency, and counts err unless it is an expected not-found.
func observe(ctx context.Context, operation string, start time.Time, err error) {
	m := metrics.Get()
	opAttr := metric.WithAttributes(attribute.String("operation", operation))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), opAttr)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		m.DbQueryErrorsTotal.Add(ctx, 1, opAttr)
	}
}

func scanCity(row pgx.Row) (*types.City, error) {
	var c types.City
	if err := row.Scan(&c.ID, &c.Name, &c.Favorite, &c.Temperature, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCities returns every city in insertion order.
func (r *PostgresCityRepository) ListCities(ctx context.Context) (cities []types.City, err error) {
	ctx, span := startSpan(ctx, "ListCities", "SELECT")
	defer span.End()
	start := time.Now()
	defer func() { observe(ctx, "list", start, err) }()

	l := r.logger.With(slog.String("method", "ListCities"))

	query, args, err := psql.Select(cityColumns...).From(citiesTable).OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	cities = make([]types.City, 0)
	for rows.Next() {
		c, scanErr := scanCity(rows)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan city row: %w", scanErr)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Scan failed")
			return nil, err
		}
		cities = append(cities, *c)
	}
	if err = rows.Err(); err != nil {
		l.ErrorContext(ctx, "Error iterating city rows", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return nil, fmt.Errorf("error iterating city rows: %w", err)
	}

	l.DebugContext(ctx, "Fetched cities", slog.Int("count", len(cities)))
	span.SetAttributes(attribute.Int("db.rows_returned", len(cities)))
	span.SetStatus(codes.Ok, "Cities fetched")
	return cities, nil
}

// GetCityByID returns types.ErrNotFound when no row has the given id.
func (r *PostgresCityRepository) GetCityByID(ctx context.Context, id uuid.UUID) (city *types.City, err error) {
	ctx, span := startSpan(ctx, "GetCityByID", "SELECT", attribute.String("db.city.id", id.String()))
	defer span.End()
	start := time.Now()
	defer func() { observe(ctx, "get", start, err) }()

	query, args, err := psql.Select(cityColumns...).From(citiesTable).Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get query: %w", err)
	}

	city, err = scanCity(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "City not found")
			return nil, fmt.Errorf("city %s: %w", id, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to fetch city", slog.String("method", "GetCityByID"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("failed to fetch city: %w", err)
	}

	span.SetStatus(codes.Ok, "City fetched")
	return city, nil
}

// CreateCity inserts a city; a duplicate name is reported as types.ErrConflict.
func (r *PostgresCityRepository) CreateCity(ctx context.Context, params types.CityParams) (city *types.City, err error) {
	ctx, span := startSpan(ctx, "CreateCity", "INSERT", attribute.String("db.city.name", params.Name))
	defer span.End()
	start := time.Now()
	defer func() { observe(ctx, "insert", start, err) }()

	l := r.logger.With(slog.String("method", "CreateCity"), slog.String("name", params.Name))

	query, args, err := psql.Insert(citiesTable).
		Columns("name", "favorite", "temperature").
		Values(params.Name, params.Favorite, params.Temperature).
		Suffix(cityReturnedFields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	city, err = scanCity(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			l.WarnContext(ctx, "Attempted to create city with duplicate name", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Duplicate city name")
			return nil, fmt.Errorf("city with name '%s' already exists: %w", params.Name, types.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating city: %w", err)
	}

	l.InfoContext(ctx, "City created", slog.String("cityID", city.ID.String()))
	span.SetAttributes(attribute.String("db.city.id", city.ID.String()))
	span.SetStatus(codes.Ok, "City created")
	return city, nil
}

// UpdateCity overwrites name, favorite and temperature of an existing city.
func (r *PostgresCityRepository) UpdateCity(ctx context.Context, id uuid.UUID, params types.CityParams) (city *types.City, err error) {
	ctx, span := startSpan(ctx, "UpdateCity", "UPDATE", attribute.String("db.city.id", id.String()))
	defer span.End()
	start := time.Now()
	defer func() { observe(ctx, "update", start, err) }()

	l := r.logger.With(slog.String("method", "UpdateCity"), slog.String("cityID", id.String()))

	query, args, err := psql.Update(citiesTable).
		Set("name", params.Name).
		Set("favorite", params.Favorite).
		Set("temperature", params.Temperature).
		Where("id = ?", id).
		Suffix(cityReturnedFields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	city, err = scanCity(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			span.SetStatus(codes.Ok, "City not found")
			return nil, fmt.Errorf("city %s: %w", id, types.ErrNotFound)
		case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
			l.WarnContext(ctx, "Attempted to rename city to an existing name", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Duplicate city name")
			return nil, fmt.Errorf("city with name '%s' already exists: %w", params.Name, types.ErrConflict)
		default:
			l.ErrorContext(ctx, "Failed to update city", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB UPDATE failed")
			return nil, fmt.Errorf("database error updating city: %w", err)
		}
	}

	l.InfoContext(ctx, "City updated")
	span.SetStatus(codes.Ok, "City updated")
	return city, nil
}

// DeleteCity removes a city; types.ErrNotFound when nothing was deleted.
func (r *PostgresCityRepository) DeleteCity(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "DeleteCity", "DELETE", attribute.String("db.city.id", id.String()))
	defer span.End()
	start := time.Now()
	defer func() { observe(ctx, "delete", start, err) }()

	l := r.logger.With(slog.String("method", "DeleteCity"), slog.String("cityID", id.String()))

	query, args, err := psql.Delete(citiesTable).Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting city: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Ok, "City not found")
		return fmt.Errorf("city %s: %w", id, types.ErrNotFound)
	}

	l.InfoContext(ctx, "City deleted")
	span.SetStatus(codes.Ok, "City deleted")
	return nil
}
