package apperrors

import (
	"fmt"
	"net/http"
)

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// ErrNetworkUnavailable is returned when the TVMaze API could not be reached at all
// (DNS failure, refused connection, timeout).
type ErrNetworkUnavailable struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ErrNetworkUnavailable) Error() string {
	return fmt.Sprintf("network unavailable for %s: %v", e.URL, e.Err)
}

// Unwrap exposes the transport error.
func (e *ErrNetworkUnavailable) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrNetworkUnavailable) Is(target error) bool {
	_, ok := target.(*ErrNetworkUnavailable)
	return ok
}

// ErrUpstream is returned when TVMaze answers with a non-success status.
type ErrUpstream struct {
	URL    string
	Status int
}

// Error implements the error interface.
func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.Status)
}

// Is matches any *ErrUpstream, and *ErrNotFound when the status is 404.
func (e *ErrUpstream) Is(target error) bool {
	switch target.(type) {
	case *ErrUpstream:
		return true
	case *ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Transient reports whether retrying the request could succeed.
func (e *ErrUpstream) Transient() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

// ErrMalformedResponse is returned when a response body is not the expected JSON shape.
type ErrMalformedResponse struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
}

// Unwrap exposes the decoding error.
func (e *ErrMalformedResponse) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrMalformedResponse) Is(target error) bool {
	_, ok := target.(*ErrMalformedResponse)
	return ok
}

// ErrInvalidShowID is returned when a show identifier is not a non-negative integer.
type ErrInvalidShowID struct {
	Value string
}

// Error implements the error interface.
func (e *ErrInvalidShowID) Error() string {
	return fmt.Sprintf("invalid show ID %q", e.Value)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidShowID) Is(target error) bool {
	_, ok := target.(*ErrInvalidShowID)
	return ok
}
