// Package upstream is the HTTP client for the banking transactions API.
//
// Every call is a single attempt bounded by the client timeout and the
// caller's context. Failures are reported with one of three kinds:
// apierr.ErrUnreachable, *apierr.StatusError or apierr.ErrMalformed.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/bankdash/internal/domain/apierr"
	"github.com/okian/bankdash/internal/domain/model"
	"github.com/okian/bankdash/pkg/logger"
	"github.com/okian/bankdash/pkg/metrics"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultHealthTimeout = 2 * time.Second
	defaultMaxBodyBytes  = 16 << 20
	dialTimeout          = 2 * time.Second
	idleConnTimeout      = 90 * time.Second
	maxMessageLen        = 300
)

// Client calls the transactions API rooted at a base URL.
type Client struct {
	baseURL       string
	prefix        string
	timeout       time.Duration
	healthTimeout time.Duration
	maxBody       int64
	http          *http.Client
	logger        logger.Logger
}

// Request describes one call to the API.
type Request struct {
	Method string
	// Path is relative to the base URL and prefix, e.g. "stats/overview".
	Path  string
	Query url.Values
	// Body is JSON-encoded when non-nil; json.RawMessage is sent as is.
	Body any
	// Endpoint labels the call in metrics and logs; defaults to Path.
	Endpoint string
}

// Response is a successful (2xx) answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		timeout:       defaultTimeout,
		healthTimeout: defaultHealthTimeout,
		maxBody:       defaultMaxBodyBytes,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.prefix = "/" + strings.Trim(c.prefix, "/")
	if c.prefix == "/" {
		c.prefix = ""
	}
	if c.http == nil {
		c.http = newHTTPClient(c.timeout)
	}
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: tr, Timeout: timeout}
}

// WithBaseURL returns a copy of c pointed at another API root. The copy
// shares the transport.
func (c *Client) WithBaseURL(baseURL string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(baseURL, "/")
	return &cp
}

// BaseURL returns the API root without the prefix.
func (c *Client) BaseURL() string { return c.baseURL }

// APIURL returns the root that endpoint paths are resolved against.
func (c *Client) APIURL() string { return c.baseURL + c.prefix }

// Timeout returns the per-request bound.
func (c *Client) Timeout() time.Duration { return c.timeout }

// NormalizeBaseURL validates a user-supplied API root.
func NormalizeBaseURL(raw string) (string, error) {
	const op = "upstream.normalize_base_url"
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", apierr.WrapKind(op, apierr.ErrInvalidRequest, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("%q is not an absolute http(s) URL", raw))
	}
	if u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return "", apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("%q must not carry credentials, query or fragment", raw))
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// CleanPath validates an endpoint path typed by a user and returns it
// without leading or trailing slashes. Only relative paths below the API
// root are accepted.
func CleanPath(p string) (string, error) {
	const op = "upstream.clean_path"
	p = strings.TrimSpace(p)
	if strings.Contains(p, "://") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "\\?#") {
		return "", apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("path %q must be relative to the API root", p))
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "", apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("path must not be empty"))
	}
	for _, seg := range strings.Split(p, "/") {
		// segments are compared decoded so %2e%2e cannot climb out of the prefix
		dec, err := url.PathUnescape(seg)
		if err != nil || dec == ".." || dec == "." || dec == "" || strings.ContainsAny(dec, "/\\") {
			return "", apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("path %q contains an invalid segment", p))
		}
	}
	return p, nil
}

// Fetch performs req once. Non-2xx answers come back as *apierr.StatusError.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	const op = "upstream.fetch"
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = req.Path
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	resp, err := c.do(ctx, method, req)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = apierr.Classify(err)
		c.logger.Warn(ctx, "api call failed",
			logger.String("endpoint", endpoint),
			logger.String("method", method),
			logger.String("kind", outcome),
			logger.Float64("duration_ms", float64(elapsed.Microseconds())/1000),
			logger.Error(err))
	} else {
		resp.Duration = elapsed
		c.logger.Debug(ctx, "api call",
			logger.String("endpoint", endpoint),
			logger.String("method", method),
			logger.Int("status", resp.StatusCode),
			logger.Float64("duration_ms", float64(elapsed.Microseconds())/1000))
	}
	metrics.RecordUpstreamRequest(endpoint, method, outcome, float64(elapsed.Milliseconds()))
	if err != nil {
		return nil, apierr.Wrap(op, err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method string, req Request) (*Response, error) {
	target := c.APIURL() + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		var raw []byte
		switch b := req.Body.(type) {
		case json.RawMessage:
			raw = b
		case []byte:
			raw = b
		default:
			var err error
			if raw, err = json.Marshal(b); err != nil {
				return nil, fmt.Errorf("%w: encode body: %w", apierr.ErrInvalidRequest, err)
			}
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apierr.ErrInvalidRequest, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if id := logger.RequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apierr.ErrUnreachable, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", apierr.ErrUnreachable, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", apierr.ErrMalformed, c.maxBody)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &apierr.StatusError{StatusCode: httpResp.StatusCode, Message: statusMessage(httpResp.StatusCode, data)}
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

// statusMessage extracts a human message from an error body. FastAPI puts it
// under "detail", which is either a string or a list of {msg} objects.
func statusMessage(code int, body []byte) string {
	var env struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		if len(env.Detail) > 0 {
			var s string
			if json.Unmarshal(env.Detail, &s) == nil && s != "" {
				return truncate(s)
			}
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(env.Detail, &items) == nil && len(items) > 0 {
				msgs := make([]string, 0, len(items))
				for _, it := range items {
					if it.Msg != "" {
						msgs = append(msgs, it.Msg)
					}
				}
				if len(msgs) > 0 {
					return truncate(strings.Join(msgs, "; "))
				}
			}
		}
		if env.Message != "" {
			return truncate(env.Message)
		}
		if env.Error != "" {
			return truncate(env.Error)
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "<") {
		return truncate(s)
	}
	return http.StatusText(code)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageLen {
		return s
	}
	return string(r[:maxMessageLen]) + "…"
}

// decode unmarshals body into out and validates it against its schema.
func decode(op string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return apierr.WrapKind(op, apierr.ErrMalformed, err)
	}
	if err := model.Validate(out); err != nil {
		return apierr.WrapKind(op, apierr.ErrMalformed, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, endpoint, path string, query url.Values, out any) error {
	resp, err := c.Fetch(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Endpoint: endpoint})
	if err != nil {
		return apierr.Wrap(op, err)
	}
	return decode(op, resp.Body, out)
}

func (c *Client) postJSON(ctx context.Context, op, endpoint, path string, body, out any) ([]byte, error) {
	resp, err := c.Fetch(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Endpoint: endpoint})
	if err != nil {
		return nil, apierr.Wrap(op, err)
	}
	return resp.Body, decode(op, resp.Body, out)
}
