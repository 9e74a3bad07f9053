package server

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/goccy/go-json"

	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/widget"
)

// statusClientClosedRequest is reported when the caller went away before TVMaze
// answered.
const statusClientClosedRequest = 499

// errorResponse is the JSON body of a failed API call.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// httpStatus maps a widget status to the HTTP status code returned for it.
func httpStatus(status widget.Status) int {
	switch status.Kind {
	case widget.StatusOK:
		return http.StatusOK
	case widget.StatusInvalidRequest:
		return http.StatusBadRequest
	case widget.StatusNotFound:
		return http.StatusNotFound
	case widget.StatusUpstreamError, widget.StatusMalformedResponse:
		return http.StatusBadGateway
	case widget.StatusNetworkUnavailable:
		return http.StatusServiceUnavailable
	case widget.StatusCanceled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// reportError logs err and, for server-side failures, sends it to Sentry.
// It returns the HTTP status for err.
func reportError(r *http.Request, err error, status widget.Status) int {
	code := httpStatus(status)
	logger := config.GetLogger()

	if code >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Int("status", code).Msg("Request failed")
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub()
		}
		hub.CaptureException(err)
	} else {
		logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", code).Msg("Request rejected")
	}
	return code
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status := widget.StatusFor(err)
	code := reportError(r, err, status)
	writeJSON(w, code, errorResponse{Error: status.Message, Kind: string(status.Kind)})
}
