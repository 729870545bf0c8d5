// Package cms implements the content-source port against the headless CMS
// HTTP API.
package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/qudratrading/mawared/internal/domain"
)

const maxBody = 4 << 20

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	token   string
	doer    Doer
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		doer:    newHTTPClient(10 * time.Second),
	}
}

// NewWithDoer is used by tests to substitute the transport.
func NewWithDoer(baseURL, token string, doer Doer) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, doer: doer}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &http.Client{Transport: tr, Timeout: timeout}
}

type categoriesResp struct {
	Categories []domain.CategoryRecord `json:"categories"`
}

type productsResp struct {
	Products []domain.ProductRecord `json:"products"`
}

type productResp struct {
	Product *domain.ProductDetailRecord `json:"product"`
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.CategoryRecord, error) {
	var out categoriesResp
	if err := c.get(ctx, "/api/categories", &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	var out productsResp
	if err := c.get(ctx, "/api/products?status=active", &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*domain.ProductDetailRecord, error) {
	var out productResp
	if err := c.get(ctx, "/api/products/"+url.PathEscape(slug), &out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, domain.ErrNotFound
	}
	return out.Product, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("cms: base url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("cms: %s: %w", path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("cms: %s: read body: %w", path, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cms: %s: status=%d body=%s", path, resp.StatusCode, truncate(string(b), 512))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("cms: %s: decode: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
