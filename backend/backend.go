package backend

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/honganh1206/convodash/backend/data"
	"github.com/honganh1206/convodash/query"
	"github.com/honganh1206/convodash/schema"
)

// Server is a local stand-in for the upstream conversations API.
type Server struct {
	conversations *data.ConversationModel
	logger        *slog.Logger
	mux           *http.ServeMux
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		conversations: &data.ConversationModel{DB: db},
		logger:        logger,
		mux:           http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.HandleFunc("GET /chat/conversations", s.listConversations)

	return s
}

func (s *Server) Conversations() *data.ConversationModel {
	return s.conversations
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
	s.mux.ServeHTTP(w, r)
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, schema.ErrorResponse{Error: err.Error()})
		return
	}

	page, err := s.conversations.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, data.ErrInvalidPage) {
			writeJSON(w, http.StatusBadRequest, schema.ErrorResponse{Error: err.Error()})
			return
		}
		s.logger.Error("Failed to list conversations", "error", err)
		writeJSON(w, http.StatusInternalServerError, schema.ErrorResponse{Error: "Failed to list conversations"})
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func parseListParams(r *http.Request) (data.ListParams, error) {
	q := r.URL.Query()
	p := data.ListParams{Page: 1, PageSize: schema.DefaultPageSize}

	var err error
	if v := q.Get(query.ParamPage); v != "" {
		if p.Page, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("invalid %s: %q", query.ParamPage, v)
		}
	}
	if v := q.Get(query.ParamPageSize); v != "" {
		if p.PageSize, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("invalid %s: %q", query.ParamPageSize, v)
		}
	}

	bounds := []struct {
		name string
		dst  *time.Time
	}{
		{query.ParamStartCreatedAt, &p.StartCreatedAt},
		{query.ParamEndCreatedAt, &p.EndCreatedAt},
		{query.ParamStartUpdatedAt, &p.StartUpdatedAt},
		{query.ParamEndUpdatedAt, &p.EndUpdatedAt},
	}
	for _, b := range bounds {
		v := q.Get(b.name)
		if v == "" {
			continue
		}
		if *b.dst, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return p, fmt.Errorf("invalid %s: %q", b.name, v)
		}
	}

	return p, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
