package commerce

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/pkg/breaker"
	"github.com/angelmondragon/promocart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
	"github.com/angelmondragon/promocart-backend/pkg/restclient"
	"github.com/sony/gobreaker/v2"
)

const (
	cartBreakerName    = "commerce-cart"
	productBreakerName = "commerce-product"
)

// Client is the HTTP adapter for the commerce platform.
type Client struct {
	rest       *restclient.Client
	projectKey string
	carts      *gobreaker.CircuitBreaker[*cart.Snapshot]
	products   *gobreaker.CircuitBreaker[[]Product]
	logg       *logger.Logger
}

var _ Platform = (*Client)(nil)

// NewClient builds the commerce adapter. httpClient may be nil.
func NewClient(cfg config.CommerceConfig, breakerCfg config.BreakerConfig, httpClient *http.Client, logg *logger.Logger) (*Client, error) {
	projectKey := strings.TrimSpace(cfg.ProjectKey)
	if projectKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commerce project key is required")
	}
	opts := []restclient.Option{
		restclient.WithTimeout(cfg.Timeout),
		restclient.WithHTTPClient(httpClient),
	}
	if cfg.Token != "" {
		opts = append(opts, restclient.WithHeader("Authorization", "Bearer "+cfg.Token))
	}
	rest, err := restclient.New(cfg.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{
		rest:       rest,
		projectKey: projectKey,
		carts:      breaker.New[*cart.Snapshot](cartBreakerName, breakerCfg, logg),
		products:   breaker.New[[]Product](productBreakerName, breakerCfg, logg),
		logg:       logg,
	}, nil
}

func (c *Client) path(parts ...string) string {
	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, url.PathEscape(c.projectKey))
	for _, part := range parts {
		escaped = append(escaped, url.PathEscape(part))
	}
	return "/" + strings.Join(escaped, "/")
}

func (c *Client) GetCart(ctx context.Context, id string) (*cart.Snapshot, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	snapshot, err := c.carts.Execute(func() (*cart.Snapshot, error) {
		var out cart.Snapshot
		if err := c.rest.Do(ctx, http.MethodGet, c.path("carts", id), nil, nil, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, breaker.Translate(cartBreakerName, err)
	}
	return snapshot, nil
}

type updateCartRequest struct {
	Version int64               `json:"version"`
	Actions []cart.UpdateAction `json:"actions"`
}

func (c *Client) UpdateCart(ctx context.Context, id string, version int64, actions []cart.UpdateAction) (*cart.Snapshot, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	body := updateCartRequest{Version: version, Actions: actions}
	snapshot, err := c.carts.Execute(func() (*cart.Snapshot, error) {
		var out cart.Snapshot
		if err := c.rest.Do(ctx, http.MethodPost, c.path("carts", id), nil, body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeVersionConflict) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeVersionConflict, err, "cart version is stale").
				WithDetails(map[string]any{"cartId": id, "version": version})
		}
		return nil, breaker.Translate(cartBreakerName, err)
	}
	return snapshot, nil
}

func (c *Client) GetProductsBySkus(ctx context.Context, skus []string) ([]Product, error) {
	return c.queryProducts(ctx, "sku", skus)
}

func (c *Client) GetProductsByIDs(ctx context.Context, ids []string) ([]Product, error) {
	return c.queryProducts(ctx, "id", ids)
}

type productPage struct {
	Results []Product `json:"results"`
}

func (c *Client) queryProducts(ctx context.Context, field string, values []string) ([]Product, error) {
	values = uniqueNonEmpty(values)
	if len(values) == 0 {
		return nil, nil
	}
	query := url.Values{field: values}
	products, err := c.products.Execute(func() ([]Product, error) {
		var page productPage
		if err := c.rest.Do(ctx, http.MethodGet, c.path("products"), query, nil, &page); err != nil {
			return nil, err
		}
		return page.Results, nil
	})
	if err != nil {
		return nil, breaker.Translate(productBreakerName, err)
	}
	return products, nil
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
