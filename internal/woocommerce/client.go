// Package woocommerce talks to the WooCommerce REST API (v3) of the target
// store and replaces its catalog with a scraped record set.
package woocommerce

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	apiPath = "/wp-json/wc/v3"
	perPage = 100

	// DefaultTimeout matches the store's slowest bulk endpoints
	DefaultTimeout = 60 * time.Second
)

// Config for a store connection
type Config struct {
	Site           string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration

	// Transport replaces the HTTP transport, mainly for tests
	Transport http.RoundTripper
}

// APIError is a non-2xx answer from the store
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("woocommerce %s %s: HTTP %d %s: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("woocommerce %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
}

// Category is a product category as stored remotely
type Category struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is the subset of a remote product the sync needs to read back
type Product struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

// Client is a thin typed wrapper over the REST endpoints
type Client struct {
	http *resty.Client
}

// NewClient validates cfg and prepares a client authenticated with the
// consumer key pair.
func NewClient(cfg Config) (*Client, error) {
	site := strings.TrimRight(strings.TrimSpace(cfg.Site), "/")
	if site == "" {
		return nil, fmt.Errorf("woocommerce site is required")
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, fmt.Errorf("woocommerce consumer key and secret are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetBaseURL(site + apiPath)
	client.SetBasicAuth(cfg.ConsumerKey, cfg.ConsumerSecret)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json")
	if cfg.Transport != nil {
		client.SetTransport(cfg.Transport)
	}

	return &Client{http: client}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, result any) (*resty.Response, error) {
	apiErr := &APIError{}
	req := c.http.R().
		SetContext(ctx).
		SetError(apiErr).
		SetQueryParams(query)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	start := time.Now()
	res, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("woocommerce %s %s: %w", method, path, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("WooCommerce request completed")

	if res.IsError() {
		apiErr.Method = method
		apiErr.Path = path
		apiErr.StatusCode = res.StatusCode()
		return res, apiErr
	}
	return res, nil
}

// listAll walks every page of a collection endpoint
func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		var batch []T
		res, err := c.do(ctx, http.MethodGet, path, map[string]string{
			"per_page": strconv.Itoa(perPage),
			"page":     strconv.Itoa(page),
		}, nil, &batch)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)

		if total, err := strconv.Atoi(res.Header().Get("X-WP-TotalPages")); err == nil {
			if page >= total {
				break
			}
			continue
		}
		if len(batch) < perPage {
			break
		}
	}
	return all, nil
}

// Ping checks that the credentials are accepted
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/products/categories", map[string]string{"per_page": "1"}, nil, nil)
	return err
}

// ListCategories returns every product category
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	return listAll[Category](ctx, c, "/products/categories")
}

// CreateCategory creates a category and returns it with its id
func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	created := &Category{}
	_, err := c.do(ctx, http.MethodPost, "/products/categories", nil,
		Category{Name: name, Description: "category description"}, created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteCategory removes a category permanently
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/categories/"+strconv.Itoa(id),
		map[string]string{"force": "true"}, nil, nil)
	return err
}

// ListProducts returns every product
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	return listAll[Product](ctx, c, "/products")
}

// CreateProduct creates a product and returns its id
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (int, error) {
	created := &Product{}
	if _, err := c.do(ctx, http.MethodPost, "/products", nil, input, created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// DeleteProduct removes a product permanently
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/"+strconv.Itoa(id),
		map[string]string{"force": "true"}, nil, nil)
	return err
}
