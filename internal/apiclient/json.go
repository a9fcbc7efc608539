package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/starford/finboard/internal/apperr"
)

// GetJSON fetches rawURL with credentials and decodes a 2xx JSON body into
// out. Non-success statuses become *apperr.DomainError; fallback is the
// message used when the body carries no detail.
func (c *Client) GetJSON(ctx context.Context, rawURL, fallback string, out any) error {
	return c.DoJSON(ctx, rawURL, Options{Method: http.MethodGet, Credentials: CredentialsInclude}, fallback, out)
}

// PostJSON sends body as JSON with credentials and decodes the reply.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body any, fallback string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("apiclient: encode body: %w", err)
	}
	return c.DoJSON(ctx, rawURL, Options{
		Method:      http.MethodPost,
		Header:      http.Header{"Content-Type": []string{"application/json"}},
		Body:        bytes.NewReader(payload),
		Credentials: CredentialsInclude,
	}, fallback, out)
}

// DoJSON runs Fetch and decodes the reply into out (skipped when out is nil).
func (c *Client) DoJSON(ctx context.Context, rawURL string, opts Options, fallback string, out any) error {
	resp, err := c.Fetch(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if !success(resp.StatusCode) {
		return ResponseError(resp, fallback)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrMalformedResponse, err)
	}
	return nil
}

// GetText fetches rawURL with credentials and returns the body as text.
func (c *Client) GetText(ctx context.Context, rawURL, fallback string) (string, error) {
	resp, err := c.Fetch(ctx, rawURL, Options{Method: http.MethodGet, Credentials: CredentialsInclude})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if !success(resp.StatusCode) {
		return "", ResponseError(resp, fallback)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("apiclient: read body: %w", err)
	}
	return string(data), nil
}

// ResponseError builds a DomainError from a non-success response. The body's
// "detail" (or "message") string wins; an unparsable body yields fallback.
func ResponseError(resp *http.Response, fallback string) error {
	if fallback == "" {
		fallback = "request failed"
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return &apperr.DomainError{Status: resp.StatusCode, Detail: fallback}
	}
	if s, ok := body.Detail.(string); ok && s != "" {
		return &apperr.DomainError{Status: resp.StatusCode, Detail: s}
	}
	if body.Message != "" {
		return &apperr.DomainError{Status: resp.StatusCode, Detail: body.Message}
	}
	return &apperr.DomainError{Status: resp.StatusCode, Detail: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, fallback)}
}
