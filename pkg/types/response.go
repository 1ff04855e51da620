package types

// SuccessEnvelope wraps every JSON payload the kiosk API returns.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of every failed request. RequestID echoes the
// X-Request-Id header so till operators can quote it.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StreamEvent is one server-sent event frame pushed to the kiosk UI.
type StreamEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
