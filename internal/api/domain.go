package api

// Response represents a generic API error body.
type Response struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error,omitempty" example:"Failed to add city"`
	RequestID string `json:"request_id,omitempty" example:"host/abc123-000001"`
}

// Message is the body of most successful writes and of not-found answers.
type Message struct {
	Message string `json:"message" example:"City added successfully"`
}

// ValidationErrors maps a request field to the messages explaining why it was rejected.
type ValidationErrors map[string][]string

// Add appends a message for field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}
