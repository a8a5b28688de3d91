package city

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-city-registry/internal/types"
)

// MockCityService is a mock implementation of Service
type MockCityService struct {
	mock.Mock
}

func (m *MockCityService) ListCities(ctx context.Context) ([]types.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.City), args.Error(1)
}

func (m *MockCityService) GetCity(ctx context.Context, id uuid.UUID) (*types.City, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.City), args.Error(1)
}

func (m *MockCityService) CreateCity(ctx context.Context, req types.CityRequest) (*types.City, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.City), args.Error(1)
}

func (m *MockCityService) UpdateCity(ctx context.Context, id uuid.UUID, req types.CityRequest) (*types.City, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.City), args.Error(1)
}

func (m *MockCityService) DeleteCity(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCityService) VerifyCity(ctx context.Context, name string) (*types.GeoPlace, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GeoPlace), args.Error(1)
}

func setupCityHandlerTest() (*Handler, *MockCityService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockCityService)
	return NewCityHandler(mockService, logger), mockService
}

// withURLParams attaches chi route params so handlers can be called directly.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestHandler_ListCities(t *testing.T) {
	t.Run("returns the array", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		temp := 18.0
		cities := []types.City{
			{ID: uuid.New(), Name: "Lisbon", Favorite: true, Temperature: &temp},
			{ID: uuid.New(), Name: "Porto"},
		}
		mockService.On("ListCities", mock.Anything).Return(cities, nil).Once()

		rr := httptest.NewRecorder()
		h.ListCities(rr, httptest.NewRequest(http.MethodGet, "/cities", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		var got []types.City
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Lisbon", got[0].Name)
		assert.Nil(t, got[1].Temperature)
		mockService.AssertExpectations(t)
	})

	t.Run("empty store is an empty array", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		mockService.On("ListCities", mock.Anything).Return([]types.City{}, nil).Once()

		rr := httptest.NewRecorder()
		h.ListCities(rr, httptest.NewRequest(http.MethodGet, "/cities", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("service error", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		mockService.On("ListCities", mock.Anything).Return(nil, errors.New("db down")).Once()

		rr := httptest.NewRecorder()
		h.ListCities(rr, httptest.NewRequest(http.MethodGet, "/cities", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "db down")
	})
}

func TestHandler_CreateCity(t *testing.T) {
	post := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/cities", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("created", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		mockService.On("CreateCity", mock.Anything, mock.MatchedBy(func(req types.CityRequest) bool {
			return req.Name == "Lisbon" && req.Favorite != nil && *req.Favorite && req.Temperature != nil && *req.Temperature == 21.5
		})).Return(&types.City{ID: uuid.New(), Name: "Lisbon"}, nil).Once()

		rr := httptest.NewRecorder()
		h.CreateCity(rr, post(`{"name":"Lisbon","favorite":true,"temperature":21.5}`))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"message":"City added successfully"}`, rr.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("name is trimmed before the service sees it", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		mockService.On("CreateCity", mock.Anything, types.CityRequest{Name: "Lisbon"}).
			Return(&types.City{ID: uuid.New(), Name: "Lisbon"}, nil).Once()

		rr := httptest.NewRecorder()
		h.CreateCity(rr, post(`{"name":"  Lisbon  "}`))

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name string
			body string
			want map[string][]string
		}{
			{"missing name", `{"favorite":true}`, map[string][]string{"name": {"The name field is required."}}},
			{"blank name", `{"name":"   "}`, map[string][]string{"name": {"The name field is required."}}},
			{"name too long", `{"name":"` + strings.Repeat("a", 256) + `"}`, map[string][]string{"name": {"The name field must not be greater than 255 characters."}}},
			{"favorite not boolean", `{"name":"Lisbon","favorite":"yes"}`, map[string][]string{"favorite": {"The favorite field must be a boolean value."}}},
			{"temperature not number", `{"name":"Lisbon","temperature":"warm"}`, map[string][]string{"temperature": {"The temperature field must be a number."}}},
			{"temperature numeric string", `{"name":"Lisbon","temperature":"25.5"}`, map[string][]string{"temperature": {"The temperature field must be a number."}}},
			{"name not string", `{"name":42}`, map[string][]string{"name": {"The name field must be a string."}}},
			{"empty body", ``, map[string][]string{"name": {"The name field is required."}}},
			{"mistyped favorite and missing name", `{"favorite":"yes"}`, map[string][]string{
				"name":     {"The name field is required."},
				"favorite": {"The favorite field must be a boolean value."},
			}},
			{"blank name and mistyped temperature", `{"name":"","temperature":"warm"}`, map[string][]string{
				"name":        {"The name field is required."},
				"temperature": {"The temperature field must be a number."},
			}},
			{"every field mistyped", `{"name":true,"favorite":"yes","temperature":"warm"}`, map[string][]string{
				"name":        {"The name field must be a string."},
				"favorite":    {"The favorite field must be a boolean value."},
				"temperature": {"The temperature field must be a number."},
			}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h, mockService := setupCityHandlerTest()

				rr := httptest.NewRecorder()
				h.CreateCity(rr, post(tt.body))

				assert.Equal(t, http.StatusBadRequest, rr.Code)
				var got map[string][]string
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got), rr.Body.String())
				assert.Equal(t, tt.want, got)
				mockService.AssertNotCalled(t, "CreateCity", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("exactly 255 characters is accepted", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		name := strings.Repeat("a", 255)
		mockService.On("CreateCity", mock.Anything, types.CityRequest{Name: name}).
			Return(&types.City{ID: uuid.New(), Name: name}, nil).Once()

		rr := httptest.NewRecorder()
		h.CreateCity(rr, post(`{"name":"`+name+`"}`))

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		h, _ := setupCityHandlerTest()

		rr := httptest.NewRecorder()
		h.CreateCity(rr, post(`{"name":`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, false, decodeBody(t, rr)["success"])
	})

	t.Run("service errors", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
			body   string
		}{
			{"not verified", types.ErrCityNotVerified, http.StatusNotFound, `{"message":"City does not exist"}`},
			{"duplicate", types.ErrConflict, http.StatusBadRequest, `{"success":false,"error":"City name already exists"}`},
			{"verification unavailable", types.ErrVerificationUnavailable, http.StatusServiceUnavailable, `{"success":false,"error":"City verification is unavailable"}`},
			{"unexpected", errors.New("connection refused"), http.StatusInternalServerError, `{"success":false,"error":"Failed to add city"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h, mockService := setupCityHandlerTest()
				mockService.On("CreateCity", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

				rr := httptest.NewRecorder()
				h.CreateCity(rr, post(`{"name":"Atlantis"}`))

				assert.Equal(t, tt.status, rr.Code)
				assert.JSONEq(t, tt.body, rr.Body.String())
			})
		}
	})
}

func TestHandler_GetCity(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		id := uuid.New()
		mockService.On("GetCity", mock.Anything, id).Return(&types.City{ID: id, Name: "Lisbon"}, nil).Once()

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/cities/"+id.String(), nil), map[string]string{"id": id.String()})
		rr := httptest.NewRecorder()
		h.GetCity(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, id.String(), body["id"])
		assert.Equal(t, "Lisbon", body["name"])
		assert.Contains(t, body, "created_at")
	})

	t.Run("not found", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		id := uuid.New()
		mockService.On("GetCity", mock.Anything, id).Return(nil, types.ErrNotFound).Once()

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/cities/"+id.String(), nil), map[string]string{"id": id.String()})
		rr := httptest.NewRecorder()
		h.GetCity(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"City not found"}`, rr.Body.String())
	})

	t.Run("malformed id", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/cities/abc", nil), map[string]string{"id": "abc"})
		rr := httptest.NewRecorder()
		h.GetCity(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"City not found"}`, rr.Body.String())
		mockService.AssertNotCalled(t, "GetCity", mock.Anything, mock.Anything)
	})
}

func TestHandler_UpdateCity(t *testing.T) {
	put := func(id, body string) *http.Request {
		req := httptest.NewRequest(http.MethodPut, "/cities/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return withURLParams(req, map[string]string{"id": id})
	}

	t.Run("updated", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		id := uuid.New()
		updated := &types.City{ID: id, Name: "Porto", Favorite: true}
		mockService.On("UpdateCity", mock.Anything, id, mock.MatchedBy(func(req types.CityRequest) bool {
			return req.Name == "Porto"
		})).Return(updated, nil).Once()

		rr := httptest.NewRecorder()
		h.UpdateCity(rr, put(id.String(), `{"name":"Porto","favorite":true}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "City updated successfully", body["message"])
		city, ok := body["city"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Porto", city["name"])
		assert.Equal(t, true, city["favorite"])
	})

	t.Run("validation runs before lookup", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()

		rr := httptest.NewRecorder()
		h.UpdateCity(rr, put(uuid.NewString(), `{}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "UpdateCity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service errors", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
			body   string
		}{
			{"missing city", types.ErrNotFound, http.StatusNotFound, `{"message":"City not found"}`},
			{"not verified", types.ErrCityNotVerified, http.StatusNotFound, `{"message":"City does not exist"}`},
			{"duplicate", types.ErrConflict, http.StatusBadRequest, `{"success":false,"error":"City name already exists"}`},
			{"unexpected", errors.New("boom"), http.StatusInternalServerError, `{"success":false,"error":"Failed to update city"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h, mockService := setupCityHandlerTest()
				mockService.On("UpdateCity", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

				rr := httptest.NewRecorder()
				h.UpdateCity(rr, put(uuid.NewString(), `{"name":"Porto"}`))

				assert.Equal(t, tt.status, rr.Code)
				assert.JSONEq(t, tt.body, rr.Body.String())
			})
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()

		rr := httptest.NewRecorder()
		h.UpdateCity(rr, put("999", `{"name":"Porto"}`))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertNotCalled(t, "UpdateCity", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_DeleteCity(t *testing.T) {
	del := func(id string) *http.Request {
		return withURLParams(httptest.NewRequest(http.MethodDelete, "/cities/"+id, nil), map[string]string{"id": id})
	}

	t.Run("deleted", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		id := uuid.New()
		mockService.On("DeleteCity", mock.Anything, id).Return(nil).Once()

		rr := httptest.NewRecorder()
		h.DeleteCity(rr, del(id.String()))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"City deleted successfully"}`, rr.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		id := uuid.New()
		mockService.On("DeleteCity", mock.Anything, id).Return(types.ErrNotFound).Once()

		rr := httptest.NewRecorder()
		h.DeleteCity(rr, del(id.String()))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"City not found"}`, rr.Body.String())
	})
}

func TestHandler_VerifyCity(t *testing.T) {
	// get fills the param the way chi does: from RawPath when it is set, else from Path.
	get := func(segment string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/cities/verify/"+segment, nil)
		routed := req.URL.Path
		if req.URL.RawPath != "" {
			routed = req.URL.RawPath
		}
		return withURLParams(req, map[string]string{"name": strings.TrimPrefix(routed, "/cities/verify/")})
	}

	t.Run("verified", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		place := &types.GeoPlace{GeonameID: 2643743, Name: "London", CountryName: "United Kingdom"}
		mockService.On("VerifyCity", mock.Anything, "London").Return(place, nil).Once()

		rr := httptest.NewRecorder()
		h.VerifyCity(rr, get("London"))

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["valid"])
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "London", data["name"])
		assert.Equal(t, float64(2643743), data["geonameId"])
	})

	t.Run("escaped name is decoded", func(t *testing.T) {
		tests := []struct {
			segment string
			want    string
		}{
			{"New%20York", "New York"},
			{"Kharkiv%2FKharkov", "Kharkiv/Kharkov"},
			{"%2541", "%41"},
			{"100%2525", "100%25"},
		}
		for _, tt := range tests {
			t.Run(tt.segment, func(t *testing.T) {
				h, mockService := setupCityHandlerTest()
				mockService.On("VerifyCity", mock.Anything, tt.want).Return(&types.GeoPlace{Name: tt.want}, nil).Once()

				rr := httptest.NewRecorder()
				h.VerifyCity(rr, get(tt.segment))

				assert.Equal(t, http.StatusOK, rr.Code)
				mockService.AssertExpectations(t)
			})
		}
	})

	t.Run("not verified", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		mockService.On("VerifyCity", mock.Anything, "Xyzzyville").Return(nil, types.ErrCityNotVerified).Once()

		rr := httptest.NewRecorder()
		h.VerifyCity(rr, get("Xyzzyville"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"valid":false,"message":"City not found"}`, rr.Body.String())
	})

	t.Run("lookup unavailable", func(t *testing.T) {
		h, mockService := setupCityHandlerTest()
		mockService.On("VerifyCity", mock.Anything, "London").Return(nil, types.ErrVerificationUnavailable).Once()

		rr := httptest.NewRecorder()
		h.VerifyCity(rr, get("London"))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
