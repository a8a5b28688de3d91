package city

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/go-city-registry/internal/api"
	"github.com/FACorreiaa/go-city-registry/internal/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// typeMessages is used when the JSON value of a field has the wrong type.
var typeMessages = map[string]string{
	"name":        "The name field must be a string.",
	"favorite":    "The favorite field must be a boolean value.",
	"temperature": "The temperature field must be a number.",
}

// validateCityRequest trims the name and checks the request shape.
// It returns nil when the request is valid.
func validateCityRequest(req *types.CityRequest) api.ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return api.ValidationErrors{"request": {err.Error()}}
	}

	out := api.ValidationErrors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

// typeMessage renders a JSON type mismatch the same way as a shape violation.
func typeMessage(fte *api.FieldTypeError) string {
	if msg, ok := typeMessages[fte.Field]; ok {
		return msg
	}
	return fmt.Sprintf("The %s field has an invalid type.", fte.Field)
}
