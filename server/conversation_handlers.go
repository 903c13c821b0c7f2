package server

import (
	"net/http"
	"net/url"

	"github.com/honganh1206/convodash/query"
)

// forwardParams copies the known, non-empty parameters. Values are not
// validated here.
func forwardParams(in url.Values) url.Values {
	out := url.Values{}
	for _, name := range query.Params {
		if v := in.Get(name); v != "" {
			out.Set(name, v)
		}
	}
	return out
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	params := forwardParams(r.URL.Query())

	body, status, err := s.upstream.ListConversations(r.Context(), params)
	if err != nil {
		s.logger.Error("Error fetching conversations",
			"error", err,
			"params", params.Encode())
		handleError(w, &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: msgFetchFailed,
			Err:     err,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}
