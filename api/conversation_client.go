package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/honganh1206/convodash/schema"
)

// ListConversations fetches one page through the gateway. An error body is
// never returned as data.
func (c *Client) ListConversations(ctx context.Context, params url.Values) (*schema.ConversationsResponse, error) {
	var page schema.ConversationsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/conversations", params, &page); err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &page, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
}
