package accessor

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TransportError reports a network failure, a non-2xx status or an unreadable body
type TransportError struct {
	Method string
	Path   string
	Status int // zero when no response arrived
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError reports a well-formed response whose discriminator is not a success
type ApplicationError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *ApplicationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("application error on %s %s: %s", e.Method, e.Path, e.Message)
}

// AsTransport unwraps err into a *TransportError
func AsTransport(err error) (*TransportError, bool) {
	var te *TransportError
	ok := errors.As(err, &te)
	return te, ok
}

// AsApplication unwraps err into an *ApplicationError
func AsApplication(err error) (*ApplicationError, bool) {
	var ae *ApplicationError
	ok := errors.As(err, &ae)
	return ae, ok
}

// IsTransport reports whether err is a transport error
func IsTransport(err error) bool {
	_, ok := AsTransport(err)
	return ok
}

// IsApplication reports whether err is an application error
func IsApplication(err error) bool {
	_, ok := AsApplication(err)
	return ok
}
