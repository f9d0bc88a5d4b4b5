// Package session provides the cookie-carrying, retrying HTTP session shared
// by every component that talks to the source shop.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"

	"github.com/law-makers/catalogsync/internal/proxy"
	"github.com/law-makers/catalogsync/internal/ratelimit"
	"github.com/law-makers/catalogsync/internal/retry"
)

// Options configures a Session
type Options struct {
	BaseURL   string
	UserAgent string
	Headers   map[string]string
	// Timeout bounds each attempt of a request, not the whole retried call
	Timeout time.Duration
	Retry   retry.Config

	// RateLimitRPS <= 0 disables throttling
	RateLimitRPS   float64
	RateLimitBurst int

	Proxies []string

	// OnRetry is invoked before each repeated attempt
	OnRetry func(req *http.Request, attempt int)
}

// Session is safe for concurrent use by multiple goroutines
type Session struct {
	client  *http.Client
	base    *url.URL
	headers map[string]string
}

// Response is a fully-read HTTP response
type Response struct {
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// New builds a Session with its own cookie jar
func New(opts Options) (*Session, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}

	httpTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	var rt http.RoundTripper = httpTransport
	if len(opts.Proxies) > 0 {
		rt = proxy.NewTransport(proxy.NewProxyPool(opts.Proxies), httpTransport)
	}
	rt = &ratelimit.Transport{
		Base:    rt,
		Limiter: ratelimit.NewHostLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
	}
	retrying := retry.NewTransport(rt, opts.Retry)
	retrying.OnRetry = opts.OnRetry
	retrying.AttemptTimeout = opts.Timeout

	headers := make(map[string]string, len(opts.Headers)+1)
	for k, v := range opts.Headers {
		headers[k] = v
	}
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}

	return &Session{
		client: &http.Client{
			Jar:       jar,
			Transport: retrying,
		},
		base:    base,
		headers: headers,
	}, nil
}

// BaseURL returns the site root the session was created for
func (s *Session) BaseURL() *url.URL {
	u := *s.base
	return &u
}

// Resolve turns a site-relative reference into an absolute URL
func (s *Session) Resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return s.base.ResolveReference(u).String()
}

// Do sends a request and reads the whole body
func (s *Session) Do(ctx context.Context, method, rawURL string, headers map[string]string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}

	log.Debug().
		Str("method", method).
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Request completed")

	return &Response{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// Get fetches rawURL
func (s *Session) Get(ctx context.Context, rawURL string) (*Response, error) {
	return s.Do(ctx, http.MethodGet, rawURL, nil, nil)
}

// GetDocument fetches rawURL and parses it as HTML
func (s *Session) GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := s.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return resp.Document()
}

// PostForm submits form url-encoded
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values, headers map[string]string) (*Response, error) {
	h := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for k, v := range headers {
		h[k] = v
	}
	return s.Do(ctx, http.MethodPost, rawURL, h, strings.NewReader(form.Encode()))
}

// Close releases idle connections
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}

// Document parses the body as HTML
func (r *Response) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", r.URL, err)
	}
	return doc, nil
}

// JSON decodes the body into v
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", r.URL, err)
	}
	return nil
}
