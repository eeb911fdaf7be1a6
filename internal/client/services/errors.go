package services

import (
	"github.com/dmitrijs2005/authdesk/internal/client/client"
)

// OpError is the failure of a session or admin operation. Message is what
// the user should see: the server's detail when it sent one, otherwise the
// underlying error text, otherwise a fixed per-operation default.
type OpError struct {
	Op      string
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func newOpError(op, fallback string, err error) *OpError {
	msg := fallback
	if detail, ok := client.DetailOf(err); ok {
		msg = detail
	} else if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &OpError{Op: op, Message: msg, Err: err}
}
