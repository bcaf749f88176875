package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/infrastructure/export"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// ── app de prueba sobre el almacén en memoria ──

type apiFixture struct {
	app   *fiber.App
	token string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	store := memory.NewStore()
	dispatcher := events.NewDispatcher(log)
	ledger := inventory.NewLedger(store.Products())

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	created, err := authUC.EnsureAdmin(context.Background(), "admin", "admin-secret")
	require.NoError(t, err)
	require.True(t, created)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:           authUC,
		ProductUC:        usecase.NewProductUseCase(store.Products(), store.Categories(), store, ledger, dispatcher),
		CategoryUC:       usecase.NewCategoryUseCase(store.Categories(), store.Products()),
		UserUC:           usecase.NewUserUseCase(store.Users()),
		RegisterMovement: inventory.NewRegisterMovementUseCase(store, ledger, store.Movements(), dispatcher),
		CreateSale:       sales.NewCreateSaleUseCase(store, ledger, dispatcher, sales.Policy{ValidateCashier: true}),
		SalesQuery: sales.NewSalesQueryUseCase(store.Sales(), store.Products(), store.Users(),
			pdf.NewReceiptGenerator(), export.NewSalesXMLExporter(), "Tienda de prueba"),
		JWTSecret: testJWTSecret,
		Log:       log,
	})

	f := &apiFixture{app: app}
	var login dto.LoginResponse
	resp := f.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "admin", Password: "admin-secret"}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, login.Token)
	f.token = login.Token
	return f
}

// do envía body como JSON y decodifica la respuesta en out (si no es nil).
func (f *apiFixture) do(t *testing.T, method, path string, body, out any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (f *apiFixture) createProduct(t *testing.T, sku string, price float64, stock int64) dto.ProductResponse {
	t.Helper()
	var p dto.ProductResponse
	resp := f.do(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Producto " + sku, "sku": sku, "price": price, "cost": price / 2,
		"initial_stock": stock, "min_stock": 2,
	}, &p)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return p
}

// ── tests ──

func TestAPI_RutasProtegidasSinToken(t *testing.T) {
	f := newAPI(t)
	f.token = ""
	resp := f.do(t, http.MethodGet, "/api/products", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_LoginInvalido(t *testing.T) {
	f := newAPI(t)
	f.token = ""
	var e dto.ErrorResponse
	resp := f.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "admin", Password: "mala"}, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", e.Code)

	resp = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", e.Code)
}

func TestAPI_ProductoConStockInicial(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "ARROZ-1", 3.5, 10)
	assert.Equal(t, int64(10), p.CurrentStock)

	var stock dto.StockResponse
	resp := f.do(t, http.MethodGet, "/api/inventory/products/"+p.ID+"/stock", nil, &stock)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(10), stock.CurrentStock)

	var movs []dto.MovementResponse
	f.do(t, http.MethodGet, "/api/inventory/movements?product_id="+p.ID, nil, &movs)
	require.Len(t, movs, 1)
	assert.Equal(t, "in", movs[0].Type)
	assert.Equal(t, "Stock inicial", movs[0].Note)
	assert.NotEmpty(t, movs[0].ActorID)

	var e dto.ErrorResponse
	resp = f.do(t, http.MethodPost, "/api/products", map[string]any{"name": "Otro", "sku": "ARROZ-1", "price": 1}, &e)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", e.Code)
}

func TestAPI_VentaCompleta(t *testing.T) {
	f := newAPI(t)
	a := f.createProduct(t, "A", 10, 100)
	b := f.createProduct(t, "B", 2.5, 5)

	var sale dto.SaleResponse
	resp := f.do(t, http.MethodPost, "/api/sales", map[string]any{
		"payment_method":  "cash",
		"amount_received": 50,
		"items": []map[string]any{
			{"product_id": a.ID, "quantity": 3, "unit_price": 10},
			{"product_id": b.ID, "quantity": 2, "unit_price": 2.5},
		},
	}, &sale)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "35", sale.TotalAmount.String())
	assert.Equal(t, "15", sale.ChangeGiven.String())
	assert.Len(t, sale.Items, 2)
	assert.Regexp(t, `^TXN-\d{14}-[0-9A-F]{8}$`, sale.TransactionID)

	var stock dto.StockResponse
	f.do(t, http.MethodGet, "/api/inventory/products/"+a.ID+"/stock", nil, &stock)
	assert.Equal(t, int64(97), stock.CurrentStock)

	var got dto.SaleResponse
	resp = f.do(t, http.MethodGet, "/api/sales/"+sale.ID, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sale.TransactionID, got.TransactionID)

	var list dto.SaleListResponse
	f.do(t, http.MethodGet, "/api/sales?from=2000-01-01", nil, &list)
	assert.Len(t, list.Items, 1)

	resp = f.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/receipt", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = f.do(t, http.MethodGet, "/api/sales/export?from=2000-01-01", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get(apphttp.HeaderExportDigest), 64)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), sale.TransactionID)
}

func TestAPI_VentaErrores(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "POCO", 4, 2)

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{
			name: "stock insuficiente",
			body: map[string]any{"payment_method": "cash", "amount_received": 100,
				"items": []map[string]any{{"product_id": p.ID, "quantity": 3, "unit_price": 4}}},
			status: http.StatusConflict, code: "INSUFFICIENT_STOCK",
		},
		{
			name: "producto inexistente",
			body: map[string]any{"payment_method": "cash", "amount_received": 100,
				"items": []map[string]any{{"product_id": "no-existe", "quantity": 1, "unit_price": 4}}},
			status: http.StatusNotFound, code: "NOT_FOUND",
		},
		{
			name: "pago insuficiente",
			body: map[string]any{"payment_method": "card", "amount_received": 1,
				"items": []map[string]any{{"product_id": p.ID, "quantity": 1, "unit_price": 4}}},
			status: http.StatusBadRequest, code: "INSUFFICIENT_PAYMENT",
		},
		{
			name:   "carrito vacío",
			body:   map[string]any{"payment_method": "cash", "amount_received": 10, "items": []map[string]any{}},
			status: http.StatusBadRequest, code: "VALIDATION",
		},
		{
			name: "método de pago desconocido",
			body: map[string]any{"payment_method": "cheque", "amount_received": 10,
				"items": []map[string]any{{"product_id": p.ID, "quantity": 1, "unit_price": 4}}},
			status: http.StatusBadRequest, code: "VALIDATION",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var e dto.ErrorResponse
			resp := f.do(t, http.MethodPost, "/api/sales", tc.body, &e)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, e.Code)
		})
	}

	// ninguna venta fallida tocó el stock
	var stock dto.StockResponse
	f.do(t, http.MethodGet, "/api/inventory/products/"+p.ID+"/stock", nil, &stock)
	assert.Equal(t, int64(2), stock.CurrentStock)
}

func TestAPI_ProductoInactivoNoSeVende(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "OFF", 4, 10)

	resp := f.do(t, http.MethodPatch, "/api/products/"+p.ID+"/status", map[string]any{"active": false}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var e dto.ErrorResponse
	resp = f.do(t, http.MethodPost, "/api/sales", map[string]any{"payment_method": "cash", "amount_received": 10,
		"items": []map[string]any{{"product_id": p.ID, "quantity": 1, "unit_price": 4}}}, &e)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "PRODUCT_INACTIVE", e.Code)
}

func TestAPI_Movimientos(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "MOV", 1, 5)

	var m dto.MovementResponse
	resp := f.do(t, http.MethodPost, "/api/inventory/movements",
		map[string]any{"product_id": p.ID, "type": "adjustment", "quantity": 12, "note": "conteo"}, &m)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(7), m.Quantity)
	assert.Equal(t, int64(5), m.StockBefore)
	assert.Equal(t, int64(12), m.StockAfter)

	var e dto.ErrorResponse
	resp = f.do(t, http.MethodPost, "/api/inventory/movements",
		map[string]any{"product_id": p.ID, "type": "out", "quantity": 13}, &e)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/inventory/movements",
		map[string]any{"product_id": p.ID, "type": "transfer", "quantity": 1}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CategoriaEnUsoNoSeBorra(t *testing.T) {
	f := newAPI(t)
	var cat dto.CategoryResponse
	resp := f.do(t, http.MethodPost, "/api/categories", dto.CategoryRequest{Name: "Bebidas"}, &cat)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Gaseosa", "sku": "GAS-1", "price": 2, "category_id": cat.ID,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var e dto.ErrorResponse
	resp = f.do(t, http.MethodDelete, "/api/categories/"+cat.ID, nil, &e)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", e.Code)
}

func TestAPI_BusquedaYStockBajo(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Café Molido", "sku": "CAFE-1", "price": 9, "initial_stock": 1, "min_stock": 3,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	f.createProduct(t, "TE-1", 2, 50)

	var found []dto.ProductResponse
	f.do(t, http.MethodGet, "/api/products/search?q=CAFE", nil, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "CAFE-1", found[0].SKU)

	var low dto.ProductListResponse
	f.do(t, http.MethodGet, "/api/products/low-stock", nil, &low)
	require.Len(t, low.Items, 1)
	assert.True(t, low.Items[0].LowStock)
}

func TestAPI_FechasInvalidas(t *testing.T) {
	f := newAPI(t)
	var e dto.ErrorResponse
	resp := f.do(t, http.MethodGet, "/api/sales?from=ayer", nil, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/sales?from=2024-02-01&to=2024-01-01", nil, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
