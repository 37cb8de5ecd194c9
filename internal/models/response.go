package models

// Response is the JSON envelope every handler returns.
type Response struct {
	Success bool        `json:"success"`
	Error   bool        `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	Action  string      `json:"action,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Machine-readable failure reasons surfaced to clients.
const (
	ReasonLimit     = "limit"
	ReasonDuplicate = "duplicate"
	ReasonPresign   = "presign"
	ReasonUnknown   = "unknown"
)

func SuccessResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message string) Response {
	return Response{
		Success: false,
		Error:   true,
		Message: message,
	}
}

// ReasonResponse is an error envelope carrying a machine-readable reason.
func ReasonResponse(message, reason string) Response {
	return Response{
		Success: false,
		Error:   true,
		Message: message,
		Reason:  reason,
	}
}
