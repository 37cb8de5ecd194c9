package service

// Error is a failure a handler can map straight onto the response
// envelope: an HTTP status plus the client-facing message, and optionally
// a machine-readable reason or action.
type Error struct {
	Status  int
	Message string
	Reason  string
	Action  string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func NewReasonError(status int, message, reason string) *Error {
	return &Error{Status: status, Message: message, Reason: reason}
}

func NewActionError(status int, message, action string) *Error {
	return &Error{Status: status, Message: message, Action: action}
}
