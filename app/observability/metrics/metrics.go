package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	VerificationRequestsTotal   metric.Int64Counter
	VerificationDurationSeconds metric.Float64Histogram
	CityWritesTotal             metric.Int64Counter
	DbQueryDurationSeconds      metric.Float64Histogram
	DbQueryErrorsTotal          metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments from the global MeterProvider, once.
// Call it after the provider is installed so the instruments are exported.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-city-registry")
		var err error
		m := &AppMetrics{}

		m.VerificationRequestsTotal, err = meter.Int64Counter(
			"city_verification_requests_total",
			metric.WithDescription("Total number of geocoding verification lookups, by result"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create city_verification_requests_total: %v", err)
		}

		m.VerificationDurationSeconds, err = meter.Float64Histogram(
			"city_verification_duration_seconds",
			metric.WithDescription("Duration of geocoding verification lookups in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create city_verification_duration_seconds: %v", err)
		}

		m.CityWritesTotal, err = meter.Int64Counter(
			"city_writes_total",
			metric.WithDescription("Total number of successful city inserts, updates and deletes"),
			metric.WithUnit("{write}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create city_writes_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the instruments, creating them on first use.
// Instruments created before otel.SetMeterProvider forward to the provider once it is set.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
