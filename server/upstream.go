package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/honganh1206/convodash/schema"
)

const (
	listPath     = "/chat/conversations"
	maxBodyBytes = 10 << 20
)

// Upstream calls the conversations API. It is immutable after construction and
// safe for concurrent use.
type Upstream struct {
	baseURL    string
	httpClient *http.Client
}

// NewUpstream creates an upstream client. A zero timeout keeps the transport
// default.
func NewUpstream(baseURL string, timeout time.Duration) *Upstream {
	return &Upstream{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (u *Upstream) listURL(params url.Values) string {
	endpoint := u.baseURL + listPath
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	return endpoint
}

// ListConversations fetches one page and returns the raw body together with
// the upstream status. Non-2xx statuses, transport failures and bodies that
// are not a conversations page all come back as *UpstreamError.
func (u *Upstream) ListConversations(ctx context.Context, params url.Values) ([]byte, int, error) {
	endpoint := u.listURL(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, &UpstreamError{URL: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, 0, &UpstreamError{URL: endpoint, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, &UpstreamError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("backend API error: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, &UpstreamError{URL: endpoint, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	var page schema.ConversationsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, 0, &UpstreamError{URL: endpoint, Err: fmt.Errorf("%w: %v", ErrMalformedBody, err)}
	}
	if err := page.Validate(); err != nil {
		return nil, 0, &UpstreamError{URL: endpoint, Err: fmt.Errorf("%w: %v", ErrMalformedBody, err)}
	}

	return body, resp.StatusCode, nil
}
