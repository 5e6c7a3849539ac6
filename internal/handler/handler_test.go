package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopack/cartengine/internal/domain/cart"
	"github.com/ecopack/cartengine/internal/domain/catalog"
	"github.com/ecopack/cartengine/internal/domain/money"
	"github.com/ecopack/cartengine/internal/domain/order"
	"github.com/ecopack/cartengine/internal/domain/product"
	"github.com/ecopack/cartengine/internal/domain/promotion"
)

var t0 = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// --- Fakes ---

type fakeProductRepo struct {
	byID map[string]product.Product
}

func (f *fakeProductRepo) List(_ context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

type fakeCartRepo struct {
	carts map[string][]byte
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string][]byte)}
}

func (f *fakeCartRepo) Get(_ context.Context, id string) (*cart.Cart, error) {
	raw, ok := f.carts[id]
	if !ok {
		return nil, cart.ErrNotFound
	}
	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (f *fakeCartRepo) Save(_ context.Context, c *cart.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	f.carts[c.ID] = raw
	return nil
}

func (f *fakeCartRepo) Delete(_ context.Context, id string) error {
	delete(f.carts, id)
	return nil
}

type fakeValidator struct {
	discounts map[string]promotion.Discount
}

func (f *fakeValidator) Validate(_ context.Context, code, currency string, _ int) (*promotion.Discount, error) {
	disc, ok := f.discounts[code]
	if !ok {
		return nil, promotion.ErrInvalidCode
	}
	if disc.Type == promotion.TypeFixed && disc.Amount.Currency != currency {
		return nil, promotion.ErrInvalidCode
	}
	return &disc, nil
}

func (f *fakeValidator) Consume(_ context.Context, _ string) error {
	return nil
}

type fakeOrderRepo struct {
	orders []*order.Order
}

func (f *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	f.orders = append(f.orders, o)
	return nil
}

// --- Fixture ---

func testProduct() product.Product {
	return product.Product{
		ID:          "box-kraft-small",
		Title:       "Kraft Shipping Box (Small)",
		Category:    "boxes",
		Price:       money.MustParse("1.00", "USD"),
		WeightGrams: d("120"),
		Status:      product.StatusPublished,
		Inventory:   product.Inventory{Available: 100},
		BulkPricing: []product.BulkPricingTier{
			{MinQuantity: 1, MaxQuantity: 9, Price: money.MustParse("1.00", "USD")},
			{MinQuantity: 10, MaxQuantity: 49, Price: money.MustParse("0.80", "USD"), DiscountPct: d("20")},
			{MinQuantity: 50, Price: money.MustParse("0.60", "USD"), DiscountPct: d("40")},
		},
		Sustainability: product.Sustainability{
			CarbonFootprint: product.CarbonFootprint{ComparisonToStandard: d("-30")},
			Recyclability:   product.Recyclability{Percentage: d("90")},
		},
		MinimumOrderQty: 1,
	}
}

type env struct {
	srv      *httptest.Server
	products *fakeProductRepo
	carts    *fakeCartRepo
	orders   *fakeOrderRepo
}

func newEnv(t *testing.T, ttl time.Duration, clock func() time.Time) *env {
	t.Helper()

	products := &fakeProductRepo{byID: map[string]product.Product{
		"box-kraft-small": testProduct(),
	}}
	carts := newFakeCartRepo()
	orders := &fakeOrderRepo{}
	promos := &fakeValidator{discounts: map[string]promotion.Discount{
		"ECO18": {Code: "ECO18", Type: promotion.TypePercentage, Rate: d("18")},
	}}

	cartSvc := cart.NewService(products, promos, carts, nil, nil, ttl).WithClock(clock)
	orderSvc := order.NewService(carts, orders, nil).WithClock(clock)
	catalogSvc := catalog.NewService(products)

	h := New(cartSvc, orderSvc, catalogSvc)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	return &env{srv: srv, products: products, carts: carts, orders: orders}
}

func (e *env) do(t *testing.T, method, path string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func decodeData[T any](t *testing.T, envelope map[string]json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(envelope["data"], &v))
	return v
}

func decodeError(t *testing.T, envelope map[string]json.RawMessage) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(envelope["error"], &body))
	return body
}

// --- Tests ---

func TestCartLifecycle(t *testing.T) {
	e := newEnv(t, 0, func() time.Time { return t0 })

	resp, envelope := e.do(t, http.MethodPost, "/api/carts", map[string]string{"currency": "USD"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeData[cart.Cart](t, envelope)
	require.NotEmpty(t, created.ID)

	resp, envelope = e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/items", map[string]any{
		"productId": "box-kraft-small",
		"quantity":  10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c := decodeData[cart.Cart](t, envelope)

	// Quantity 10 lands in the second tier.
	require.Len(t, c.Items, 1)
	assert.Equal(t, "0.8", c.Items[0].UnitPrice.Amount.String())
	assert.Equal(t, "8", c.Subtotal.Amount.String())

	resp, envelope = e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/discount", map[string]string{"code": "ECO18"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c = decodeData[cart.Cart](t, envelope)
	require.NotNil(t, c.Discount)
	assert.Equal(t, "1.44", c.Discount.Amount.Amount.String())
	assert.Equal(t, "6.56", c.Total.Amount.String())

	resp, envelope = e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/checkout", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	o := decodeData[order.Order](t, envelope)
	assert.Contains(t, o.OrderNumber, "ECO-20260315-")
	assert.Equal(t, "6.56", o.Total.Amount.String())
	// 120g * 10 * 30% = 360g.
	assert.Equal(t, "360", o.Report.TotalCO2Saved.String())
	require.Len(t, e.orders.orders, 1)

	// The cart is consumed by checkout.
	resp, _ = e.do(t, http.MethodGet, "/api/carts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddItemUnknownProduct(t *testing.T) {
	e := newEnv(t, 0, func() time.Time { return t0 })

	_, envelope := e.do(t, http.MethodPost, "/api/carts", map[string]string{"currency": "USD"})
	created := decodeData[cart.Cart](t, envelope)

	resp, envelope := e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/items", map[string]any{
		"productId": "nope",
		"quantity":  1,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeError(t, envelope).Code)
}

func TestAddItemValidation(t *testing.T) {
	e := newEnv(t, 0, func() time.Time { return t0 })

	_, envelope := e.do(t, http.MethodPost, "/api/carts", map[string]string{"currency": "USD"})
	created := decodeData[cart.Cart](t, envelope)

	resp, envelope := e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/items", map[string]any{
		"productId": "box-kraft-small",
		"quantity":  0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, envelope).Code)
}

func TestApplyInvalidDiscount(t *testing.T) {
	e := newEnv(t, 0, func() time.Time { return t0 })

	_, envelope := e.do(t, http.MethodPost, "/api/carts", map[string]string{"currency": "USD"})
	created := decodeData[cart.Cart](t, envelope)

	resp, envelope := e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/discount", map[string]string{"code": "BOGUS"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_PROMO_CODE", decodeError(t, envelope).Code)
}

func TestSecondDiscountConflicts(t *testing.T) {
	e := newEnv(t, 0, func() time.Time { return t0 })

	_, envelope := e.do(t, http.MethodPost, "/api/carts", map[string]string{"currency": "USD"})
	created := decodeData[cart.Cart](t, envelope)
	e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/items", map[string]any{
		"productId": "box-kraft-small", "quantity": 5,
	})
	e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/discount", map[string]string{"code": "ECO18"})

	resp, envelope := e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/discount", map[string]string{"code": "ECO18"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DISCOUNT_ALREADY_APPLIED", decodeError(t, envelope).Code)
}

func TestExpiredCartMutationConflicts(t *testing.T) {
	clock := t0
	e := newEnv(t, time.Hour, func() time.Time { return clock })

	_, envelope := e.do(t, http.MethodPost, "/api/carts", map[string]string{"currency": "USD"})
	created := decodeData[cart.Cart](t, envelope)

	clock = t0.Add(2 * time.Hour)
	resp, envelope := e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/items", map[string]any{
		"productId": "box-kraft-small", "quantity": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CART_EXPIRED", decodeError(t, envelope).Code)

	// Reads stay allowed.
	resp, _ = e.do(t, http.MethodGet, "/api/carts/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetTaxAndShipping(t *testing.T) {
	e := newEnv(t, 0, func() time.Time { return t0 })

	_, envelope := e.do(t, http.MethodPost, "/api/carts", map[string]string{"currency": "USD"})
	created := decodeData[cart.Cart](t, envelope)
	e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/items", map[string]any{
		"productId": "box-kraft-small", "quantity": 10,
	})

	resp, envelope := e.do(t, http.MethodPut, "/api/carts/"+created.ID+"/tax", map[string]any{"rate": "10"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c := decodeData[cart.Cart](t, envelope)
	require.NotNil(t, c.Tax)
	assert.Equal(t, "0.8", c.Tax.Amount.String())

	resp, envelope = e.do(t, http.MethodPut, "/api/carts/"+created.ID+"/shipping", map[string]any{
		"id": "std", "name": "Standard Ground", "price": "3.00", "carbonNeutral": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c = decodeData[cart.Cart](t, envelope)
	assert.Equal(t, "11.8", c.Total.Amount.String())

	resp, envelope = e.do(t, http.MethodPut, "/api/carts/"+created.ID+"/tax", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, envelope).Code)
}

func TestListProductsFilters(t *testing.T) {
	e := newEnv(t, 0, func() time.Time { return t0 })

	resp, envelope := e.do(t, http.MethodGet, "/api/products?category=boxes&minRecyclability=80", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	products := decodeData[[]product.Product](t, envelope)
	require.Len(t, products, 1)
	assert.Equal(t, "box-kraft-small", products[0].ID)

	resp, envelope = e.do(t, http.MethodGet, "/api/products?category=mailers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	products = decodeData[[]product.Product](t, envelope)
	assert.Empty(t, products)

	resp, envelope = e.do(t, http.MethodGet, "/api/products?priceMin=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_FILTER", decodeError(t, envelope).Code)
}

func TestGetProductNotFound(t *testing.T) {
	e := newEnv(t, 0, func() time.Time { return t0 })

	resp, envelope := e.do(t, http.MethodGet, "/api/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeError(t, envelope).Code)
}

func TestCheckoutEmptyCart(t *testing.T) {
	e := newEnv(t, 0, func() time.Time { return t0 })

	_, envelope := e.do(t, http.MethodPost, "/api/carts", map[string]string{"currency": "USD"})
	created := decodeData[cart.Cart](t, envelope)

	resp, envelope := e.do(t, http.MethodPost, "/api/carts/"+created.ID+"/checkout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "EMPTY_CART", decodeError(t, envelope).Code)
}
