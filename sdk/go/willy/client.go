package willy

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings needed to construct a Client.
type Config struct {
	// BaseURL is the root URL of the Willy server (e.g. "http://localhost:8080").
	BaseURL string

	// ServiceID identifies the calling service for authentication.
	ServiceID string

	// APIKey is the secret used to obtain a JWT token.
	APIKey string

	// HTTPClient is an optional custom HTTP client. If nil, a default client
	// with a 30-second timeout is used.
	HTTPClient *http.Client

	// Timeout applies to individual API requests. Defaults to 30 seconds.
	Timeout time.Duration
}

// Client is an HTTP client for the Willy safety-mode API.
// All methods are safe for concurrent use.
type Client struct {
	baseURL  string
	client   *http.Client
	tokenMgr *tokenManager
}

// NewClient creates a Client from the given configuration.
// Returns an error if BaseURL, ServiceID, or APIKey is empty.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("willy: BaseURL is required")
	}
	if cfg.ServiceID == "" {
		return nil, fmt.Errorf("willy: ServiceID is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("willy: APIKey is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:  baseURL,
		client:   httpClient,
		tokenMgr: newTokenManager(baseURL, cfg.ServiceID, cfg.APIKey, httpClient),
	}, nil
}

// SendMessage submits one conversation turn and returns the directive the
// caller should act on.
func (c *Client) SendMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.post(ctx, "/v1/messages", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModeStatus reports a subject's current mode and whether an escalation
// timer is armed.
func (c *Client) ModeStatus(ctx context.Context, subjectID string) (*ModeStatus, error) {
	var resp ModeStatus
	if err := c.get(ctx, "/v1/subjects/"+url.PathEscape(subjectID)+"/mode", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartSupervision opens a supervision session for a third party. The
// returned directive acknowledges the session to the user.
func (c *Client) StartSupervision(ctx context.Context, subjectID string, req StartSupervisionRequest) (*Directive, error) {
	var resp Directive
	if err := c.post(ctx, "/v1/supervision/"+url.PathEscape(subjectID)+"/start", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopSupervision closes a subject's supervision session and cancels any
// armed escalation timer.
func (c *Client) StopSupervision(ctx context.Context, subjectID string) (*Directive, error) {
	var resp Directive
	if err := c.post(ctx, "/v1/supervision/"+url.PathEscape(subjectID)+"/stop", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordEvent appends a consented critical event to a subject's log.
// The server rejects the write with 403 unless req.Consented is set.
func (c *Client) RecordEvent(ctx context.Context, req RecordEventRequest) (*CriticalEvent, error) {
	var resp CriticalEvent
	if err := c.post(ctx, "/v1/events", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListEvents returns a subject's critical events, most recent first.
// A limit of 0 uses the server default.
func (c *Client) ListEvents(ctx context.Context, subjectID string, limit int) ([]CriticalEvent, error) {
	path := "/v1/subjects/" + url.PathEscape(subjectID) + "/events"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp []CriticalEvent
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListAlerts returns a subject's fired caregiver alerts, most recent first.
// A limit of 0 uses the server default.
func (c *Client) ListAlerts(ctx context.Context, subjectID string, limit int) ([]Alert, error) {
	path := "/v1/subjects/" + url.PathEscape(subjectID) + "/alerts"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp []Alert
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SubscribeAlerts opens the server's alert stream and delivers fired alerts
// on the returned channel until ctx is cancelled or the stream ends. The
// channel is closed when the stream terminates; check the context's error to
// distinguish cancellation from a dropped connection.
//
// The stream request bypasses the client's per-request timeout, since it is
// long-lived by design.
func (c *Client) SubscribeAlerts(ctx context.Context) (<-chan Alert, error) {
	token, err := c.tokenMgr.getToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/alerts/subscribe", nil)
	if err != nil {
		return nil, fmt.Errorf("willy: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")

	// A client-level Timeout would kill the stream mid-flight.
	streamClient := &http.Client{Transport: c.client.Transport}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("willy: subscribe: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	ch := make(chan Alert)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		readAlertStream(ctx, resp.Body, ch)
	}()
	return ch, nil
}

// readAlertStream parses server-sent events off r, sending each "alert"
// event's payload to ch. Keepalive comments and unknown event types are
// skipped.
func readAlertStream(ctx context.Context, r io.Reader, ch chan<- Alert) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var eventType, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if eventType == "alert" && data != "" {
				var alert Alert
				if err := json.Unmarshal([]byte(data), &alert); err == nil {
					select {
					case ch <- alert:
					case <-ctx.Done():
						return
					}
				}
			}
			eventType, data = "", ""
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

// Health checks the server's health status. This endpoint does not require
// authentication and will work even if the client has invalid credentials.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.getNoAuth(ctx, "/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ---------------------------------------------------------------------------
// HTTP transport
// ---------------------------------------------------------------------------

// apiEnvelope is the server's standard response wrapper.
type apiEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// apiErrorEnvelope is the server's standard error response wrapper.
type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("willy: marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("willy: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(ctx, req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("willy: create request: %w", err)
	}

	return c.doRequest(ctx, req, dest)
}

func (c *Client) getNoAuth(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("willy: create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("willy: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResponse(resp, dest)
}

func (c *Client) doRequest(ctx context.Context, req *http.Request, dest any) error {
	token, err := c.tokenMgr.getToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("willy: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResponse(resp, dest)
}

func handleResponse(resp *http.Response, dest any) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("willy: read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	if resp.StatusCode == http.StatusNoContent || dest == nil {
		return nil
	}

	// Unwrap the server's { "data": ... } envelope.
	var envelope apiEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return fmt.Errorf("willy: decode response envelope: %w", err)
	}

	if envelope.Data == nil {
		// Fallback: some endpoints may not wrap in "data".
		return json.Unmarshal(bodyBytes, dest)
	}

	return json.Unmarshal(envelope.Data, dest)
}

func parseErrorResponse(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode}

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Code = http.StatusText(statusCode)
		apiErr.Message = string(body)
	}

	return apiErr
}
