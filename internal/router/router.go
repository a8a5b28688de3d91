package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	appMiddleware "github.com/FACorreiaa/go-city-registry/app/middleware"
	_ "github.com/FACorreiaa/go-city-registry/docs"
	"github.com/FACorreiaa/go-city-registry/internal/api/city"
)

// Config contains dependencies needed for the router setup
type Config struct {
	CityHandler    *city.Handler
	Logger         *slog.Logger
	AllowedOrigins []string
}

// SetupRouter initializes and configures the application router.
// Server-wide middleware (requestID, logger, recoverer) is applied in main.go
// before this router is mounted.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/cities", func(r chi.Router) {
		r.Use(otelhttp.NewMiddleware("cities"))
		r.Use(appMiddleware.LogResponse(cfg.Logger))

		r.Get("/", cfg.CityHandler.ListCities)
		r.Post("/", cfg.CityHandler.CreateCity)
		r.Get("/verify/{name}", cfg.CityHandler.VerifyCity)
		r.Get("/{id}", cfg.CityHandler.GetCity)
		r.Put("/{id}", cfg.CityHandler.UpdateCity)
		r.Delete("/{id}", cfg.CityHandler.DeleteCity)
	})

	return r
}
