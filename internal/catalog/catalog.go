// Package catalog resolves product summaries from the storefront
// catalog service. A summary is read exactly once, at placement time,
// to build the element's denormalized snapshot; there is no live
// subscription to later catalog changes.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrProductNotFound is returned when the catalog does not know the
// product id.
var ErrProductNotFound = errors.New("product not found")

// ProductSummary is the read-only product view consumed at placement
// time.
type ProductSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image string  `json:"image"`
	Price float64 `json:"price"`
}

// Resolver looks up a product summary by id.
type Resolver interface {
	Resolve(ctx context.Context, productID string) (*ProductSummary, error)
}

// Client resolves products against the storefront catalog HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a catalog client with the given base URL and
// request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// Resolve fetches one product summary.
func (c *Client) Resolve(ctx context.Context, productID string) (*ProductSummary, error) {
	endpoint := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var summary ProductSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	if summary.ID == "" {
		summary.ID = productID
	}
	return &summary, nil
}

// StaticResolver serves summaries from a fixed map. Used in tests and
// local development without a storefront.
type StaticResolver map[string]ProductSummary

func (r StaticResolver) Resolve(ctx context.Context, productID string) (*ProductSummary, error) {
	summary, ok := r[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &summary, nil
}
