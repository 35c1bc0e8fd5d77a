package api

// ErrorResponse represents an error response sent to the client
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// MessageResponse is the body of the root route
type MessageResponse struct {
	Message string `json:"message"`
}
