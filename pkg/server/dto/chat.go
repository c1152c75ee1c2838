package dto

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// ChatResponse mirrors the pipeline's answer for API consumers.
type ChatResponse struct {
	Answer         string   `json:"answer"`
	Intent         string   `json:"intent"`
	Sources        []string `json:"sources"`
	RequiresAction bool     `json:"requires_action"`
}

// HealthResponse reports service liveness and store reachability.
type HealthResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
