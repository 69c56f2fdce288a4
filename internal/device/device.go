package device

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomato-exporter/tomato-exporter/internal/config"
)

// Field is one name=value pair in a form-encoded device request.
// Fields are a slice, not a map: the device expects the session token first
// and callers control the order of the rest.
type Field struct {
	Name  string
	Value string
}

// TransportError reports a failed device call: connection failure, a non-2xx
// status, or an authentication rejection (which the device signals as 401).
type TransportError struct {
	Endpoint   string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("device: %s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("device: %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client performs authenticated form-POST requests against the device's web
// interface. It is safe for concurrent use; all state is set at construction.
type Client struct {
	baseURL  string
	username string
	password string
	httpID   string
	http     *http.Client
}

// New builds a Client for the device described by cfg. The password is
// resolved once, at construction; credentials are immutable afterwards.
func New(cfg config.Router) *Client {
	return &Client{
		baseURL:  "http://" + cfg.Address,
		username: cfg.Username,
		password: cfg.ResolvedPassword(),
		httpID:   cfg.HTTPID,
		http:     &http.Client{},
	}
}

// Request POSTs the given fields to endpoint and returns the response body.
// The device's `_http_id` session token is always sent as the first field;
// the remaining fields follow in caller order.
func (c *Client) Request(ctx context.Context, endpoint string, fields []Field) (string, error) {
	var body strings.Builder
	body.WriteString("_http_id=")
	body.WriteString(url.QueryEscape(c.httpID))
	for _, f := range fields {
		body.WriteByte('&')
		body.WriteString(url.QueryEscape(f.Name))
		body.WriteByte('=')
		body.WriteString(url.QueryEscape(f.Value))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+endpoint, strings.NewReader(body.String()))
	if err != nil {
		return "", &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	return string(data), nil
}

// RunCommand executes a shell command through the device's remote-shell CGI
// and returns its raw output. Most metric families are read this way; the
// device exposes a generic shell endpoint rather than per-stat CGIs.
func (c *Client) RunCommand(ctx context.Context, command string) (string, error) {
	return c.Request(ctx, "shell.cgi", []Field{
		{Name: "action", Value: "execute"},
		{Name: "nojs", Value: "1"},
		{Name: "working_dir", Value: "/www"},
		{Name: "command", Value: command},
	})
}
