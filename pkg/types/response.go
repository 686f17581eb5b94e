package types

// Envelope is the single response shape for every endpoint. On failure Data holds
// an APIError.
type Envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data"`
	Timestamp  string `json:"timestamp"`
	StatusCode int    `json:"statusCode"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

