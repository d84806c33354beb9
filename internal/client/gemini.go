package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/markis/flashdeck/internal/errs"
	"google.golang.org/genai"
)

// DefaultAPIBase is the public Gemini REST endpoint.
const DefaultAPIBase = "https://generativelanguage.googleapis.com"

// GenerateRequest is the JSON body of a streamGenerateContent call.
type GenerateRequest struct {
	Contents         []*genai.Content        `json:"contents"`
	GenerationConfig *genai.GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []*genai.SafetySetting  `json:"safetySettings,omitempty"`
}

// errorResponse is the body Gemini sends with a non-2xx status.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Options configures a Client.
type Options struct {
	APIBase string
	Model   string
	APIKey  string
	// HTTPClient overrides the shared client; tests point it at httptest.
	HTTPClient *http.Client
}

// Client issues streamed generation requests to Gemini.
type Client struct {
	apiBase string
	model   string
	apiKey  string
	http    *http.Client
}

func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errs.New(errs.CodeCredentialMissing, "gemini: missing API key")
	}
	if opts.Model == "" {
		return nil, errs.New(errs.CodeTransportRequest, "gemini: missing model name")
	}

	c := &Client{
		apiBase: strings.TrimRight(opts.APIBase, "/"),
		model:   opts.Model,
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
	}
	if c.apiBase == "" {
		c.apiBase = DefaultAPIBase
	}
	if c.http == nil {
		c.http = getHTTPClient()
	}
	return c, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// getHTTPClient returns a singleton HTTP client
var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

// The shared client has no overall timeout: a stream lives as long as the
// server keeps sending, bounded only by the caller's context.
func getHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		transport := &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 0,
			ForceAttemptHTTP2:     true,
		}

		transport.DialContext = (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext

		httpClient = &http.Client{
			Transport: transport,
		}
	})
	return httpClient
}

func (c *Client) endpoint() string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("alt", "sse")
	return fmt.Sprintf("%s/v1/models/%s:streamGenerateContent?%s", c.apiBase, url.PathEscape(c.model), q.Encode())
}

// Stream posts req and returns the event-stream body once the service has
// acknowledged the call with a 2xx status. The caller must close the body.
func (c *Client) Stream(ctx context.Context, req GenerateRequest) (io.ReadCloser, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeTransportRequest, "failed to marshal payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeTransportRequest, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errs.Wrap(redact(err, c.apiKey), errs.CodeTransportRequest, "request failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, statusError(resp, body)
	}

	return resp.Body, nil
}

func statusError(resp *http.Response, body []byte) error {
	msg := fmt.Sprintf("API error: %s", resp.Status)

	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg += ". " + apiErr.Error.Message
	}

	return errs.New(errs.CodeTransportStatus, msg,
		errs.Field("status", resp.StatusCode),
		errs.Field("body", string(body)),
	)
}

// redact strips the API key from errors that embed the request URL.
func redact(err error, key string) error {
	msg := err.Error()
	if key == "" || (!strings.Contains(msg, key) && !strings.Contains(msg, url.QueryEscape(key))) {
		return err
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
	return errors.New(strings.ReplaceAll(msg, key, "REDACTED"))
}
