package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/honganh1206/convodash/schema"
)

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, result any) error {
	target := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return newHTTPError(resp.StatusCode, bodyBytes)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

type HTTPError struct {
	StatusCode int
	Message    string
}

func newHTTPError(status int, body []byte) *HTTPError {
	var errBody schema.ErrorResponse
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error != "" {
		return &HTTPError{StatusCode: status, Message: errBody.Error}
	}
	return &HTTPError{StatusCode: status, Message: string(body)}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}
