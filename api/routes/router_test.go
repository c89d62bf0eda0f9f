package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/internal/cartitems"
	"github.com/angelmondragon/promocart-backend/internal/inventory"
	"github.com/angelmondragon/promocart-backend/pkg/config"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
	"github.com/angelmondragon/promocart-backend/pkg/metrics"
	"github.com/angelmondragon/promocart-backend/pkg/types"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubCartItems struct {
	applyErr   error
	lastCartID string
	lastAction enums.CartAction
	lastChange []cart.ItemChange
}

func (s *stubCartItems) ResolveBenefits(ctx context.Context, snapshot cart.Snapshot) (*cartitems.EnrichedCart, error) {
	return &cartitems.EnrichedCart{Cart: snapshot, Fingerprint: "fp"}, nil
}

func (s *stubCartItems) ValidateChange(ctx context.Context, snapshot cart.Snapshot, changes []cart.ItemChange, action enums.CartAction) (*cartitems.Result, error) {
	s.lastAction = action
	return &cartitems.Result{IsValid: true}, nil
}

func (s *stubCartItems) ApplyChange(ctx context.Context, cartID string, changes []cart.ItemChange, action enums.CartAction) (*cartitems.EnrichedCart, error) {
	s.lastCartID = cartID
	s.lastAction = action
	s.lastChange = changes
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	return &cartitems.EnrichedCart{Cart: cart.Snapshot{ID: cartID, Version: 2}}, nil
}

func (s *stubCartItems) ResetProductGroups(ctx context.Context, cartID string) (*cart.Snapshot, error) {
	s.lastCartID = cartID
	return &cart.Snapshot{ID: cartID}, nil
}

type stubInventory struct {
	committed []cart.LineItem
}

func (s *stubInventory) States(ctx context.Context, skus []string) (map[string]inventory.State, error) {
	out := map[string]inventory.State{}
	for _, sku := range skus {
		if sku == "MISSING" {
			continue
		}
		out[sku] = inventory.State{SKU: sku, Available: 5}
	}
	return out, nil
}

func (s *stubInventory) CommitLineItemStockUsage(ctx context.Context, items []cart.LineItem) error {
	s.committed = items
	return nil
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "dev", Port: "8080"}}
}

func newTestRouter(cartItems cartitems.Service, inv InventoryService, reg *prometheus.Registry, db stubPinger) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(testConfig(), logg, db, nil, reg, cartItems, inv)
}

func decodeError(t *testing.T, body io.Reader) types.ErrorBody {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(&stubCartItems{}, &stubInventory{}, nil, stubPinger{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected live 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Promocart-Env") != "dev" {
		t.Fatalf("expected env header")
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected ready 200 got %d", resp.Code)
	}
}

func TestHealthReadyReportsDownDependency(t *testing.T) {
	router := newTestRouter(&stubCartItems{}, &stubInventory{}, nil, stubPinger{err: errors.New("down")})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != string(pkgerrors.CodeDependency) {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}
}

func TestApplyChangeRoute(t *testing.T) {
	svc := &stubCartItems{}
	router := newTestRouter(svc, &stubInventory{}, nil, stubPinger{})

	body := `{"action":"add_product","changes":[{"sku":"G1","quantity":1,"productType":"free_gift","freeGiftGroup":"fg1","productGroup":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/cart-1/items", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastCartID != "cart-1" {
		t.Fatalf("expected cart id from path, got %q", svc.lastCartID)
	}
	if svc.lastAction != enums.CartActionAddProduct {
		t.Fatalf("unexpected action %s", svc.lastAction)
	}
	if len(svc.lastChange) != 1 || svc.lastChange[0].FreeGiftGroup != "fg1" {
		t.Fatalf("unexpected changes %+v", svc.lastChange)
	}
}

func TestApplyChangeRejectsUnknownAction(t *testing.T) {
	router := newTestRouter(&stubCartItems{}, &stubInventory{}, nil, stubPinger{})

	body := `{"action":"explode","changes":[{"sku":"G1","quantity":1}]}`
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/carts/cart-1/items", strings.NewReader(body)))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestApplyChangeMapsConstraintViolation(t *testing.T) {
	svc := &stubCartItems{
		applyErr: pkgerrors.New(pkgerrors.CodeConstraintViolation, "maximum of 3 items reached").
			WithDetails(map[string]any{"group": "fg1"}),
	}
	router := newTestRouter(svc, &stubInventory{}, nil, stubPinger{})

	body := `{"action":"update_quantity","changes":[{"lineItemId":"li-1","sku":"G1","quantity":4}]}`
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/carts/cart-1/items", strings.NewReader(body)))

	if resp.Code != pkgerrors.MetadataFor(pkgerrors.CodeConstraintViolation).HTTPStatus {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	apiErr := decodeError(t, resp.Body)
	if apiErr.Code != string(pkgerrors.CodeConstraintViolation) || apiErr.Details == nil {
		t.Fatalf("unexpected error payload %+v", apiErr)
	}
}

func TestResolveAndValidateRoutes(t *testing.T) {
	svc := &stubCartItems{}
	router := newTestRouter(svc, &stubInventory{}, nil, stubPinger{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/carts/resolve", strings.NewReader(`{"cart":{"id":"c1","version":1,"currencyCode":"THB","lineItems":[]}}`)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected resolve 200 got %d: %s", resp.Code, resp.Body.String())
	}

	body := `{"cart":{"id":"c1","version":1,"lineItems":[]},"action":"remove_product","changes":[{"lineItemId":"li-1","sku":"M1","quantity":0}]}`
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/carts/validate", strings.NewReader(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected validate 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastAction != enums.CartActionRemoveProduct {
		t.Fatalf("unexpected action %s", svc.lastAction)
	}
}

func TestResetProductGroupsRoute(t *testing.T) {
	svc := &stubCartItems{}
	router := newTestRouter(svc, &stubInventory{}, nil, stubPinger{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/carts/c9/product-groups/reset", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastCartID != "c9" {
		t.Fatalf("unexpected cart id %q", svc.lastCartID)
	}
}

func TestInventoryRoutes(t *testing.T) {
	inv := &stubInventory{}
	router := newTestRouter(&stubCartItems{}, inv, nil, stubPinger{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/inventory?skus=A,MISSING,B", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data []inventory.State `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 2 || envelope.Data[0].SKU != "A" || envelope.Data[1].SKU != "B" {
		t.Fatalf("unexpected states %+v", envelope.Data)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/inventory/commit", strings.NewReader(`{"items":[{"sku":"A","quantity":2}]}`)))
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(inv.committed) != 1 || inv.committed[0].SKU != "A" || inv.committed[0].Quantity != 2 {
		t.Fatalf("unexpected committed items %+v", inv.committed)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/inventory/commit", strings.NewReader(`{"items":[{"sku":"A","quantity":0}]}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewBenefitMetrics(reg)
	m.AddEffects(metrics.StageReceived, 2)

	router := newTestRouter(&stubCartItems{}, &stubInventory{}, reg, stubPinger{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "promocart_effects_total") {
		t.Fatalf("expected benefit metrics in exposition")
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	router := newTestRouter(&stubCartItems{}, &stubInventory{}, nil, stubPinger{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}
