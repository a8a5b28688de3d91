package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1_048_576

// FieldTypeError reports a JSON value whose type does not match the target field.
type FieldTypeError struct {
	Field string
	Want  string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("body contains incorrect JSON type for field %q (wanted %s)", e.Field, e.Want)
}

// ErrorResponse writes a standard JSON error response including request ID.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := Response{
		Success:   false,
		Error:     message,
		RequestID: middleware.GetReqID(r.Context()),
	}
	WriteJSONResponse(w, r, status, resp)
}

// MessageResponse writes {"message": ...} with the given status.
func MessageResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, Message{Message: message})
}

// WriteJSONResponse encodes the data to JSON and writes the response header and body.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(js); err != nil {
		// Status is already on the wire.
		slog.ErrorContext(r.Context(), "Failed to write response body",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// ErrEmptyBody is returned by DecodeJSONBody when the request has no body.
var ErrEmptyBody = errors.New("body must not be empty")

// FieldTypeErrors lists every top-level field whose JSON value has the wrong type.
type FieldTypeErrors []*FieldTypeError

func (e FieldTypeErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fte := range e {
		msgs = append(msgs, fte.Error())
	}
	return strings.Join(msgs, "; ")
}

// DecodeJSONBody reads and decodes a single JSON value from the request body.
// Unknown keys are ignored. Type mismatches on named fields are returned together as
// FieldTypeErrors; dst still holds every field that decoded.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		}
		return fmt.Errorf("error reading body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))

	err = dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")

		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field == "" {
				return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
			}
			if ftes := fieldTypeErrors(body, dst); len(ftes) > 0 {
				return ftes
			}
			return FieldTypeErrors{{Field: unmarshalTypeError.Field, Want: unmarshalTypeError.Type.String()}}

		case errors.As(err, &invalidUnmarshalError):
			panic(fmt.Errorf("developer error: invalid argument passed to json.Unmarshal: %w", err))

		default:
			return fmt.Errorf("error decoding JSON body: %w", err)
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// fieldTypeErrors decodes each top-level key of body into the matching field of dst on its own.
// encoding/json only reports the first mismatch.
func fieldTypeErrors(body []byte, dst interface{}) FieldTypeErrors {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var out FieldTypeErrors
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		value, ok := raw[name]
		if !ok {
			continue
		}
		var ute *json.UnmarshalTypeError
		if err := json.Unmarshal(value, reflect.New(f.Type).Interface()); errors.As(err, &ute) {
			out = append(out, &FieldTypeError{Field: name, Want: f.Type.String()})
		}
	}
	return out
}
