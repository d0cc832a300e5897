package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/linuxmatters/arianator/internal/mediaerr"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	maxResponseBytes   = 64 << 20
)

// Config captures the runtime settings of an HTTP synthesis backend.
type Config struct {
	URL     string
	Timeout time.Duration
}

// HTTPClient posts {"text", "model"} as JSON and expects audio bytes back.
// Failures are not retried.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*HTTPClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewHTTPClient constructs a client for the backend at cfg.URL.
func NewHTTPClient(cfg Config, opts ...Option) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &HTTPClient{
		cfg:        Config{URL: strings.TrimSpace(cfg.URL), Timeout: timeout},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type synthesisRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Synthesize requests speech for text. A transport failure, a non-2xx status
// or an empty body is a *mediaerr.NetworkError; a successful response that
// carries JSON instead of audio is a *mediaerr.UnexpectedResponseFormatError
// holding the backend's payload.
func (c *HTTPClient) Synthesize(ctx context.Context, text, model string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("synthesize: text required")
	}
	if c.cfg.URL == "" {
		return nil, errors.New("synthesize: backend url required")
	}

	body, err := json.Marshal(synthesisRequest{Text: text, Model: model})
	if err != nil {
		return nil, fmt.Errorf("synthesize: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &mediaerr.NetworkError{URL: c.cfg.URL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav, audio/*, application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &mediaerr.NetworkError{URL: c.cfg.URL, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &mediaerr.NetworkError{URL: c.cfg.URL, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail error
		if snippet := strings.TrimSpace(string(payload)); snippet != "" {
			detail = errors.New(truncate(snippet, 256))
		}
		return nil, &mediaerr.NetworkError{URL: c.cfg.URL, Status: resp.StatusCode, Err: detail}
	}

	contentType := resp.Header.Get("Content-Type")
	if isJSONResponse(contentType, payload) {
		return nil, &mediaerr.UnexpectedResponseFormatError{ContentType: contentType, Payload: string(payload)}
	}
	if len(payload) == 0 {
		return nil, &mediaerr.NetworkError{URL: c.cfg.URL, Status: resp.StatusCode, Err: errors.New("empty response body")}
	}
	return payload, nil
}

// isJSONResponse reports whether a successful response carries structured
// data rather than audio. The body is sniffed as well because some backends
// send error objects as application/octet-stream.
func isJSONResponse(contentType string, body []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
			return true
		}
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid(trimmed)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
