package city

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-city-registry/internal/api"
	"github.com/FACorreiaa/go-city-registry/internal/types"
)

// Response messages.
const (
	msgCityAdded        = "City added successfully"
	msgCityUpdated      = "City updated successfully"
	msgCityDeleted      = "City deleted successfully"
	msgCityNotFound     = "City not found"
	msgCityDoesNotExist = "City does not exist"
	msgCityExists       = "City name already exists"
	msgVerifyDown       = "City verification is unavailable"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewCityHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

func startHandlerSpan(r *http.Request, name, route string) (trace.Span, *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return span, r.WithContext(ctx)
}

// cityID parses the {id} path segment. A malformed id cannot match a stored city.
func cityID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// decodeCityRequest reads and validates the body, writing the 400 response itself on failure.
// JSON type mismatches and shape violations are reported together; an empty body counts as {}.
func (h *Handler) decodeCityRequest(w http.ResponseWriter, r *http.Request, l *slog.Logger, span trace.Span) (types.CityRequest, bool) {
	var req types.CityRequest
	verrs := api.ValidationErrors{}

	err := api.DecodeJSONBody(w, r, &req)
	var ftes api.FieldTypeErrors
	switch {
	case err == nil, errors.Is(err, api.ErrEmptyBody):
	case errors.As(err, &ftes):
		for _, fte := range ftes {
			verrs.Add(fte.Field, typeMessage(fte))
		}
	default:
		l.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return req, false
	}

	for field, msgs := range validateCityRequest(&req) {
		// A mistyped field already carries its message.
		if _, mistyped := verrs[field]; mistyped {
			continue
		}
		verrs[field] = append(verrs[field], msgs...)
	}

	if len(verrs) > 0 {
		l.InfoContext(r.Context(), "City request failed validation", slog.Any("errors", verrs))
		span.SetStatus(codes.Error, "Validation failed")
		api.WriteJSONResponse(w, r, http.StatusBadRequest, verrs)
		return req, false
	}
	return req, true
}

// writeServiceError maps service errors onto status codes. fallback is the message for
// unexpected failures, which never carry internal detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.MessageResponse(w, r, http.StatusNotFound, msgCityNotFound)
	case errors.Is(err, types.ErrCityNotVerified):
		api.MessageResponse(w, r, http.StatusNotFound, msgCityDoesNotExist)
	case errors.Is(err, types.ErrConflict):
		api.ErrorResponse(w, r, http.StatusBadRequest, msgCityExists)
	case errors.Is(err, types.ErrVerificationUnavailable):
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, msgVerifyDown)
	default:
		api.ErrorResponse(w, r, http.StatusInternalServerError, fallback)
	}
}

// ListCities godoc
// @Summary      List cities
// @Description  Returns every stored city.
// @Tags         Cities
// @Produce      json
// @Success      200 {array}  types.City
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /cities [get]
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "ListCities", "/cities")
	defer span.End()
	ctx := r.Context()

	l := h.logger.With(slog.String("method", "ListCities"))

	cities, err := h.service.ListCities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to retrieve cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve cities")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, cities)
	l.InfoContext(ctx, "Successfully returned cities", slog.Int("count", len(cities)))
	span.SetStatus(codes.Ok, "Cities returned successfully")
}

// CreateCity godoc
// @Summary      Create a city
// @Description  Validates the body, confirms the name with GeoNames and stores the city.
// @Tags         Cities
// @Accept       json
// @Produce      json
// @Param        city body types.CityRequest true "City"
// @Success      201 {object} api.Message "City added successfully"
// @Failure      400 {object} api.Response "Validation error or duplicate name"
// @Failure      404 {object} api.Message "City does not exist"
// @Failure      500 {object} api.Response "Failed to add city"
// @Failure      503 {object} api.Response "Verification unavailable"
// @Router       /cities [post]
func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "CreateCity", "/cities")
	defer span.End()
	ctx := r.Context()

	l := h.logger.With(slog.String("method", "CreateCity"))

	req, ok := h.decodeCityRequest(w, r, l, span)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("city.name", req.Name))

	city, err := h.service.CreateCity(ctx, req)
	if err != nil {
		l.WarnContext(ctx, "Failed to create city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create failed")
		h.writeServiceError(w, r, err, "Failed to add city")
		return
	}

	api.MessageResponse(w, r, http.StatusCreated, msgCityAdded)
	l.InfoContext(ctx, "City created", slog.String("cityID", city.ID.String()))
	span.SetStatus(codes.Ok, "City created")
}

// GetCity godoc
// @Summary      Get a city
// @Tags         Cities
// @Produce      json
// @Param        id path string true "City ID"
// @Success      200 {object} types.City
// @Failure      404 {object} api.Message "City not found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /cities/{id} [get]
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "GetCity", "/cities/{id}")
	defer span.End()
	ctx := r.Context()

	id, ok := cityID(r)
	if !ok {
		span.SetStatus(codes.Error, "Malformed city id")
		api.MessageResponse(w, r, http.StatusNotFound, msgCityNotFound)
		return
	}
	span.SetAttributes(attribute.String("city.id", id.String()))

	city, err := h.service.GetCity(ctx, id)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			h.logger.ErrorContext(ctx, "Failed to fetch city", slog.String("method", "GetCity"), slog.Any("error", err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Get failed")
		h.writeServiceError(w, r, err, "Failed to retrieve city")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, city)
	span.SetStatus(codes.Ok, "City returned")
}

// UpdateCity godoc
// @Summary      Update a city
// @Description  Re-verifies the name with GeoNames, escapes HTML in it and overwrites all fields.
// @Tags         Cities
// @Accept       json
// @Produce      json
// @Param        id   path string            true "City ID"
// @Param        city body types.CityRequest true "City"
// @Success      200 {object} types.UpdateCityResponse
// @Failure      400 {object} api.Response "Validation error or duplicate name"
// @Failure      404 {object} api.Message "City not found / City does not exist"
// @Failure      500 {object} api.Response "Failed to update city"
// @Failure      503 {object} api.Response "Verification unavailable"
// @Router       /cities/{id} [put]
func (h *Handler) UpdateCity(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "UpdateCity", "/cities/{id}")
	defer span.End()
	ctx := r.Context()

	l := h.logger.With(slog.String("method", "UpdateCity"))

	req, ok := h.decodeCityRequest(w, r, l, span)
	if !ok {
		return
	}

	id, ok := cityID(r)
	if !ok {
		span.SetStatus(codes.Error, "Malformed city id")
		api.MessageResponse(w, r, http.StatusNotFound, msgCityNotFound)
		return
	}
	l = l.With(slog.String("cityID", id.String()))
	span.SetAttributes(attribute.String("city.id", id.String()), attribute.String("city.name", req.Name))

	city, err := h.service.UpdateCity(ctx, id, req)
	if err != nil {
		l.WarnContext(ctx, "Failed to update city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		h.writeServiceError(w, r, err, "Failed to update city")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.UpdateCityResponse{
		Message: msgCityUpdated,
		City:    city,
	})
	l.InfoContext(ctx, "City updated")
	span.SetStatus(codes.Ok, "City updated")
}

// DeleteCity godoc
// @Summary      Delete a city
// @Tags         Cities
// @Produce      json
// @Param        id path string true "City ID"
// @Success      200 {object} api.Message "City deleted successfully"
// @Failure      404 {object} api.Message "City not found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /cities/{id} [delete]
func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "DeleteCity", "/cities/{id}")
	defer span.End()
	ctx := r.Context()

	id, ok := cityID(r)
	if !ok {
		span.SetStatus(codes.Error, "Malformed city id")
		api.MessageResponse(w, r, http.StatusNotFound, msgCityNotFound)
		return
	}
	span.SetAttributes(attribute.String("city.id", id.String()))

	if err := h.service.DeleteCity(ctx, id); err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			h.logger.ErrorContext(ctx, "Failed to delete city", slog.String("method", "DeleteCity"), slog.Any("error", err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete failed")
		h.writeServiceError(w, r, err, "Failed to delete city")
		return
	}

	api.MessageResponse(w, r, http.StatusOK, msgCityDeleted)
	span.SetStatus(codes.Ok, "City deleted")
}

// VerifyCity godoc
// @Summary      Verify a city name
// @Description  Looks the name up with GeoNames without storing anything.
// @Tags         Cities
// @Produce      json
// @Param        name path string true "City name"
// @Success      200 {object} types.VerifyCityResponse
// @Failure      404 {object} types.VerifyCityResponse
// @Failure      503 {object} api.Response "Verification unavailable"
// @Router       /cities/verify/{name} [get]
func (h *Handler) VerifyCity(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "VerifyCity", "/cities/verify/{name}")
	defer span.End()
	ctx := r.Context()

	// chi matches on RawPath when it is set, so only then is the param still escaped.
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	span.SetAttributes(attribute.String("city.name", name))

	place, err := h.service.VerifyCity(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Verification failed")
		if errors.Is(err, types.ErrVerificationUnavailable) {
			h.writeServiceError(w, r, err, msgVerifyDown)
			return
		}
		api.WriteJSONResponse(w, r, http.StatusNotFound, types.VerifyCityResponse{
			Valid:   false,
			Message: msgCityNotFound,
		})
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.VerifyCityResponse{
		Valid: true,
		Data:  place,
	})
	span.SetStatus(codes.Ok, "City verified")
}
