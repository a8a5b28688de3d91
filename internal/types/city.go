package types

import (
	"time"

	"github.com/google/uuid"
)

// City matches the cities table structure.
type City struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Favorite    bool      `json:"favorite"`
	Temperature *float64  `json:"temperature"`
	CreatedAt   time.Time `json:"created_at"`
}

// CityRequest is the body accepted by the create and update endpoints.
type CityRequest struct {
	Name        string   `json:"name" validate:"required,max=255" example:"Lisbon"`
	Favorite    *bool    `json:"favorite,omitempty" example:"true"`
	Temperature *float64 `json:"temperature,omitempty" example:"21.5"`
}

// CityParams holds the values written to the store on insert and update.
type CityParams struct {
	Name        string
	Favorite    bool
	Temperature *float64
}

// Params converts a validated request into store parameters.
// A missing favorite flag is stored as false.
func (r CityRequest) Params() CityParams {
	p := CityParams{
		Name:        r.Name,
		Temperature: r.Temperature,
	}
	if r.Favorite != nil {
		p.Favorite = *r.Favorite
	}
	return p
}

// UpdateCityResponse is returned by PUT /cities/{id}.
type UpdateCityResponse struct {
	Message string `json:"message" example:"City updated successfully"`
	City    *City  `json:"city"`
}
