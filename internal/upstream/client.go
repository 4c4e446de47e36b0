package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps how much of an upstream body is read into memory.
const DefaultMaxBodyBytes = 16 << 20

// ErrBodyTooLarge is returned when a body exceeds the client's size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// DefaultHeaders identify outbound calls as a regular desktop browser.
// Steam's community endpoints answer non-browser agents with 403s or empty pages.
var DefaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/html, application/xml;q=0.9, image/*;q=0.8, */*;q=0.5",
	"Accept-Language": "en-US,en;q=0.9",
}

// Response is a raw upstream answer. The client never interprets it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// ContentType returns the upstream Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Options configure a Client.
type Options struct {
	Timeout      time.Duration
	Proxy        string
	Headers      map[string]string
	Logger       *zap.Logger
	Transport    http.RoundTripper
	MaxBodyBytes int64 // Defaults to DefaultMaxBodyBytes

	// CheckRedirect is called before following each redirect, as in
	// http.Client. Nil follows up to 10 redirects.
	CheckRedirect func(req *http.Request, via []*http.Request) error
}

// Client performs outbound calls with a fixed header set and a bounded timeout.
type Client struct {
	http    *http.Client
	headers map[string]string
	maxBody int64
	logger  *zap.Logger
}

// New creates a Client. An invalid proxy URL is logged and ignored.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if opts.Proxy != "" {
			proxyURL, err := url.Parse(opts.Proxy)
			if err != nil {
				logger.Warn("invalid proxy URL, calling upstream directly", zap.String("proxy", opts.Proxy), zap.Error(err))
			} else {
				t.Proxy = http.ProxyURL(proxyURL)
			}
		}
		transport = t
	}

	headers := make(map[string]string, len(DefaultHeaders)+len(opts.Headers))
	for k, v := range DefaultHeaders {
		headers[k] = v
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &Client{
		http: &http.Client{
			Transport:     transport,
			Timeout:       opts.Timeout,
			CheckRedirect: opts.CheckRedirect,
		},
		headers: headers,
		maxBody: maxBody,
		logger:  logger,
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.Do(req)
}

// PostForm issues a form-encoded POST request.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// Do sends req with the client's headers. Only transport failures are
// returned as errors; any HTTP status is a valid Response.
func (c *Client) Do(req *http.Request) (*Response, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrBodyTooLarge, c.maxBody, req.URL.Host)
	}

	c.logger.Debug("upstream call",
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
