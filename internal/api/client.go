package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"healthcare-app-client/internal/session"
)

// CredentialSource supplies the bearer token and is told when the backend
// rejects it.
type CredentialSource interface {
	Credential() (string, error)
	Invalidate(credential string)
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// MessageResponse is the backend's plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// Client talks to the booking backend. It never retries and sets no timeout
// of its own; callers bound requests through their context.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialSource
	logger      zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client for the API rooted at baseURL (e.g. http://host/api).
func NewClient(baseURL string, credentials CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  http.DefaultClient,
		credentials: credentials,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authMode int

const (
	// authNone sends no credential
	authNone authMode = iota
	// authOptional attaches a credential when one is valid
	authOptional
	// authRequired refuses to send the request without a valid credential
	authRequired
)

func (c *Client) do(ctx context.Context, method, path string, mode authMode, body, out any) error {
	raw, err := c.send(ctx, method, path, mode, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

// send performs one request and returns the raw body of a 2xx answer.
func (c *Client) send(ctx context.Context, method, path string, mode authMode, body any, accept string) ([]byte, error) {
	var credential string
	if mode != authNone && c.credentials != nil {
		cred, err := c.credentials.Credential()
		if err != nil && mode == authRequired {
			return nil, &session.AuthorizationError{Reason: "no valid session", Err: err}
		}
		credential = cred
	} else if mode == authRequired {
		return nil, &session.AuthorizationError{Reason: "no credential source configured"}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("backend request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
		if resp.StatusCode == http.StatusUnauthorized {
			if credential != "" && c.credentials != nil {
				c.credentials.Invalidate(credential)
			}
			return nil, &session.AuthorizationError{Reason: "rejected by backend", Err: statusErr}
		}
		return nil, statusErr
	}
	return raw, nil
}

const maxErrorMessage = 200

// errorMessage pulls a human message out of an error body, which the backend
// sends as {"message": ...}, {"error": ...} or plain text.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	text := []rune(strings.TrimSpace(string(raw)))
	if len(text) > maxErrorMessage {
		text = text[:maxErrorMessage]
	}
	return string(text)
}

// IsStatus reports whether err is a StatusError carrying code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
