package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/and161185/gratitude-journal/internal/convert"
	httpserver "github.com/and161185/gratitude-journal/internal/server/http"
)

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server: %d %s", e.Status, e.Message)
}

// apiClient talks JSON to the journal API.
type apiClient struct {
	base    string
	hc      *http.Client
	bearer  string
	refresh string
}

func newClient(base string, hc *http.Client) *apiClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &apiClient{base: strings.TrimRight(base, "/"), hc: hc}
}

// do sends in as JSON and decodes a 2xx body into out. A 204 leaves out untouched.
func (c *apiClient) do(ctx context.Context, method, path string, in, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if c.refresh != "" {
		req.AddCookie(&http.Cookie{Name: httpserver.RefreshCookieName, Value: c.refresh})
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e convert.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return resp, &apiError{Status: resp.StatusCode, Message: e.Error}
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}

func refreshFrom(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == httpserver.RefreshCookieName {
			return c.Value
		}
	}
	return ""
}
