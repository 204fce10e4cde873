package errors

import (
	"errors"
	"fmt"
)

var (
	ErrBackendNotConfigured = errors.New("backend is not configured")
	ErrInvalidAddress       = errors.New("invalid backend address")
	ErrInvalidTimeout       = errors.New("invalid backend timeout")
	ErrInvalidRetryMax      = errors.New("invalid backend retry count")
	ErrInvalidPort          = errors.New("invalid listen port")
	ErrMissingField         = errors.New("required field missing")
	ErrEmptyKeyID           = errors.New("key_id is empty")

	// ErrNetwork and ErrSchema are the two failure kinds a fetch can end with.
	ErrNetwork = errors.New("network error")
	ErrSchema  = errors.New("schema error")
)

// NetworkError reports a backend request that did not complete with a
// success status.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// SchemaError reports a response body that is not a well-formed record list.
// Index is -1 when the failure is not tied to a single record.
type SchemaError struct {
	Index int
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("malformed record list: %v", e.Err)
	case e.Field != "":
		return fmt.Sprintf("record %d: field %q: %v", e.Index, e.Field, e.Err)
	default:
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Kind names the failure kind of err for notices and metrics labels.
// Anything that is not a schema failure counts as a network failure.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSchema) {
		return "schema"
	}
	return "network"
}
