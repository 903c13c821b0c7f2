package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/honganh1206/convodash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}

func TestListConversations_Success(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"items":[{"id":"abc","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}],"total_items":1,"start_index":0,"end_index":1,"total_pages":1,"current_page":1,"current_page_size":10}`)
	})

	params := url.Values{"page": {"1"}, "page_size": {"10"}, "start_created_at": {"2024-01-01T00:00:00.000Z"}}
	page, err := c.ListConversations(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "/api/conversations", gotPath)
	assert.Equal(t, params, gotQuery)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "abc", page.Items[0].ID)
	assert.Equal(t, 1, page.TotalItems)
}

func TestListConversations_GatewayError(t *testing.T) {
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"Failed to fetch conversations"}`)
	})

	page, err := c.ListConversations(context.Background(), url.Values{})
	assert.Nil(t, page)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "Failed to fetch conversations", httpErr.Message)
}

func TestListConversations_PlainTextError(t *testing.T) {
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.ListConversations(context.Background(), url.Values{})

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "bad gateway")
}

func TestListConversations_MalformedBody(t *testing.T) {
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	})

	page, err := c.ListConversations(context.Background(), url.Values{})
	assert.Nil(t, page)
	assert.ErrorContains(t, err, "failed to decode response")
}

func TestListConversations_OKBodyThatIsNotAPage(t *testing.T) {
	for _, body := range []string{`null`, `{}`, `{"error":"boom"}`} {
		t.Run(body, func(t *testing.T) {
			c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, body)
			})

			page, err := c.ListConversations(context.Background(), url.Values{})
			assert.Nil(t, page)
			assert.ErrorIs(t, err, schema.ErrInvalidPage)
		})
	}
}

func TestListConversations_ContextCanceled(t *testing.T) {
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListConversations(ctx, url.Values{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHealth(t *testing.T) {
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		io.WriteString(w, `{"status":"ok"}`)
	})

	assert.NoError(t, c.Health(context.Background()))
}
