package netprovider

import "errors"

// ErrorType classifies a provider failure. The set is closed.
type ErrorType int

const (
	InvalidURL ErrorType = iota + 1
	GeneralServiceError
	InvalidData
)

func (t ErrorType) String() string {
	switch t {
	case InvalidURL:
		return "invalid url"
	case GeneralServiceError:
		return "general service error"
	case InvalidData:
		return "invalid data"
	default:
		return "unknown error"
	}
}

// Sentinel errors for errors.Is checks.
var (
	ErrInvalidURL = &APIError{Type: InvalidURL}
	// ErrGeneralService is never produced by the provider itself; it is kept
	// for callers layering their own checks on top of it.
	ErrGeneralService = &APIError{Type: GeneralServiceError}
	ErrInvalidData    = &APIError{Type: InvalidData}
)

// APIError carries the classification and, when available, the underlying cause.
type APIError struct {
	Type ErrorType
	Err  error
}

func (e *APIError) Error() string {
	if e.Err == nil {
		return e.Type.String()
	}
	return e.Type.String() + ": " + e.Err.Error()
}

func (e *APIError) Unwrap() error { return e.Err }

// Is matches any APIError of the same type, so wrapped causes still compare
// equal to the sentinels.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Type == e.Type
}

// TypeOf reports the classification of err, or 0 when err is not an APIError.
func TypeOf(err error) ErrorType {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type
	}
	return 0
}

func newError(t ErrorType, cause error) error {
	return &APIError{Type: t, Err: cause}
}
