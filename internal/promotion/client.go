package promotion

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/promocart-backend/pkg/breaker"
	"github.com/angelmondragon/promocart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
	"github.com/angelmondragon/promocart-backend/pkg/restclient"
	"github.com/sony/gobreaker/v2"
)

const engineBreakerName = "promotion-engine"

// EngineClient talks to the hosted promotion engine over HTTP.
type EngineClient struct {
	rest    *restclient.Client
	breaker *gobreaker.CircuitBreaker[*SessionResult]
	logg    *logger.Logger
}

// NewEngineClient builds the engine adapter. httpClient may be nil.
func NewEngineClient(cfg config.PromotionConfig, breakerCfg config.BreakerConfig, httpClient *http.Client, logg *logger.Logger) (*EngineClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion api key is required")
	}
	rest, err := restclient.New(cfg.BaseURL,
		restclient.WithTimeout(cfg.Timeout),
		restclient.WithHTTPClient(httpClient),
		restclient.WithHeader("Authorization", "ApiKey-v1 "+cfg.APIKey),
	)
	if err != nil {
		return nil, err
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &EngineClient{
		rest:    rest,
		breaker: breaker.New[*SessionResult](engineBreakerName, breakerCfg, logg),
		logg:    logg,
	}, nil
}

type sessionRequest struct {
	CustomerSession SessionPayload `json:"customerSession"`
	ResponseContent []string       `json:"responseContent"`
}

// UpdateCustomerSession evaluates (and unless dry, persists) the customer session.
func (c *EngineClient) UpdateCustomerSession(ctx context.Context, sessionID string, payload SessionPayload, opts SessionOptions) (*SessionResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	path := "/v2/customer_sessions/" + url.PathEscape(sessionID)
	query := url.Values{"dry": {strconv.FormatBool(opts.Dry)}}
	body := sessionRequest{
		CustomerSession: payload,
		ResponseContent: []string{"customerSession"},
	}

	result, err := c.breaker.Execute(func() (*SessionResult, error) {
		var out SessionResult
		if err := c.rest.Do(ctx, http.MethodPut, path, query, body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, breaker.Translate(engineBreakerName, err)
	}

	c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
		"session": sessionID,
		"dry":     opts.Dry,
		"effects": len(result.Effects),
	}), "customer session evaluated")
	return result, nil
}
