package response

// Envelope is the JSON error body used by middleware and handlers that do
// not go through the fres success wrapper.
type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Error(code, message string, details any) Envelope {
	return Envelope{
		Code:    code,
		Message: message,
		Details: details,
	}
}
