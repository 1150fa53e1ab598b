package service

// ClientError marks a failure caused by the caller's input. The handler
// maps it to a 400; everything else is a server fault.
type ClientError struct {
	msg string
}

// NewClientError builds a caller-facing input error.
func NewClientError(msg string) *ClientError {
	return &ClientError{msg: msg}
}

func (e *ClientError) Error() string {
	return e.msg
}
