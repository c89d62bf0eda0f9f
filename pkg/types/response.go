package types

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// DataEnvelope wraps every successful response body.
type DataEnvelope struct {
	Data any `json:"data"`
}

// ErrorBody is the public face of a pkg/errors error. Details are present
// only for codes whose metadata allows them, such as a rejected cart change
// or a stock shortfall.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
