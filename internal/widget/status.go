package widget

import (
	"context"
	"errors"
	"fmt"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
)

// StatusKind classifies the last failure shown to the user.
type StatusKind string

const (
	StatusOK                 StatusKind = ""
	StatusNetworkUnavailable StatusKind = "network_unavailable"
	StatusUpstreamError      StatusKind = "upstream_error"
	StatusMalformedResponse  StatusKind = "malformed_response"
	StatusNotFound           StatusKind = "not_found"
	StatusInvalidRequest     StatusKind = "invalid_request"
	StatusCanceled           StatusKind = "canceled"
	StatusUnknown            StatusKind = "unknown"
)

// Status is the user-visible outcome of the last action.
type Status struct {
	Kind    StatusKind
	Message string
}

// OK reports whether the last action succeeded.
func (s Status) OK() bool {
	return s.Kind == StatusOK
}

// StatusFor maps a fetch error to the message the widget displays.
// NotFound is checked before Upstream because a 404 matches both.
func StatusFor(err error) Status {
	var upstream *apperrors.ErrUpstream
	switch {
	case err == nil:
		return Status{}
	case errors.Is(err, context.Canceled):
		return Status{Kind: StatusCanceled, Message: "The request was cancelled."}
	case errors.Is(err, &apperrors.ErrInvalidShowID{}):
		return Status{Kind: StatusInvalidRequest, Message: "That show identifier is not valid."}
	case errors.Is(err, &apperrors.ErrNotFound{}):
		return Status{Kind: StatusNotFound, Message: "That show is no longer available."}
	case errors.As(err, &upstream):
		return Status{Kind: StatusUpstreamError, Message: fmt.Sprintf("TVMaze returned an error (status %d).", upstream.Status)}
	case errors.Is(err, &apperrors.ErrMalformedResponse{}):
		return Status{Kind: StatusMalformedResponse, Message: "TVMaze sent a response we could not read."}
	case errors.Is(err, &apperrors.ErrNetworkUnavailable{}):
		return Status{Kind: StatusNetworkUnavailable, Message: "TVMaze is unreachable, please try again."}
	default:
		return Status{Kind: StatusUnknown, Message: "Something went wrong, please try again."}
	}
}
