package api // package api wraps the backend REST contract behind typed calls

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the current access token for outgoing requests.
// An empty string means no bearer header is attached.
type TokenSource func() string

// Client is the single point of outbound HTTP to the backend.  It attaches
// the bearer token and decodes error envelopes; it never mutates the token
// store and never attempts a silent refresh, so a 401 always reaches the
// caller.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient builds a client for the given base URL.  A nil TokenSource is
// valid and produces unauthenticated requests.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
}

// AccessToken returns the token the client would attach to a request
// right now, or empty when unauthenticated.
func (c *Client) AccessToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens()
}

// do issues one request and returns the raw response body.  Any status
// outside 2xx is decoded into *Error.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

// doJSON is do plus decoding into out.  Pass nil when the body is ignored.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// listEnvelope is the paginated wrapper the backend uses on collection
// endpoints.  Some endpoints return a bare array instead, so decodeList
// accepts both.
type listEnvelope[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func decodeList[T any](data []byte) ([]T, error) {
	var env listEnvelope[T]
	if err := json.Unmarshal(data, &env); err == nil && env.Results != nil {
		return env.Results, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}
