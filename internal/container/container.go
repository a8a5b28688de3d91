package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-city-registry/app/db"
	"github.com/FACorreiaa/go-city-registry/config"
	"github.com/FACorreiaa/go-city-registry/internal/api/city"
	"github.com/FACorreiaa/go-city-registry/internal/api/geonames"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *slog.Logger
	Pool        *pgxpool.Pool
	CityHandler *city.Handler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	cityRepo := city.NewCityRepository(pool, logger)
	cityService := city.NewCityService(cityRepo, NewVerifier(cfg.Geonames, logger), cfg.Cities.SanitizeOnCreate, logger)
	cityHandler := city.NewCityHandler(cityService, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Pool:        pool,
		CityHandler: cityHandler,
	}, nil
}

// NewVerifier picks the GeoNames client flavour configured by geonames.strict.
func NewVerifier(cfg config.GeonamesConfig, logger *slog.Logger) city.CityVerifier {
	if cfg.Strict {
		logger.Info("Using strict GeoNames client")
		return geonames.NewStrictClient(cfg, nil, logger)
	}
	return geonames.NewClient(cfg, nil, logger)
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
