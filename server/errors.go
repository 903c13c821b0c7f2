package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/honganh1206/convodash/schema"
)

// Message returned for every upstream failure. Upstream detail never reaches
// the client.
const msgFetchFailed = "Failed to fetch conversations"

var ErrMalformedBody = errors.New("malformed upstream body")

type HTTPError struct {
	Code    int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// UpstreamError describes a failed call to the upstream API.
type UpstreamError struct {
	URL        string
	StatusCode int // zero for transport failures
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return "upstream " + e.URL + " returned " + http.StatusText(e.StatusCode) + ": " + e.Err.Error()
	}
	return "upstream " + e.URL + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func handleError(w http.ResponseWriter, err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		writeError(w, httpErr.Code, httpErr.Message)
		return
	}

	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, schema.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
