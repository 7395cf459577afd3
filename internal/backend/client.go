package backend

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

// Client talks to the booking backend. It is a value type; WithToken returns
// a copy bound to one caller's credentials.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

func New(baseURL string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return Client{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c Client) WithToken(token string) Client {
	c.Token = token
	return c
}

// envelope is the response shape shared by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Detail  json.RawMessage `json:"detail,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	// Validation errors come back as a list; surface it verbatim.
	return string(e.Detail)
}

func (c Client) doJSON(ctx context.Context, op, method, path string, reqBody any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.BaseURL == "" {
		return fmt.Errorf("backend %s: missing base url", op)
	}

	var body io.Reader
	if reqBody != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return fmt.Errorf("backend %s: encode request: %w", op, err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("backend %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(b, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Op: op, Status: resp.StatusCode}
		if decodeErr == nil {
			se.Message = env.text()
		}
		return se
	}
	if decodeErr != nil {
		return fmt.Errorf("backend %s: decode response: %w", op, decodeErr)
	}
	if !env.Success {
		return &RejectedError{Op: op, Message: env.text()}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("backend %s: decode data: %w", op, err)
		}
	}
	return nil
}
