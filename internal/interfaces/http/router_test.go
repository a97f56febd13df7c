package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consignacion-api/internal/application/analytics"
	"github.com/jhoicas/Consignacion-api/internal/application/consignment"
	"github.com/jhoicas/Consignacion-api/internal/application/dto"
	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/application/sales"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Consignacion-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Consignacion-api/pkg/jwt"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
)

// apiFixture API completa sobre el almacenamiento en memoria.
type apiFixture struct {
	app   *fiber.App
	store *memory.Store
	owner string
	cat   string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	owner := &entity.Owner{Name: "Taller Luna"}
	require.NoError(t, store.Catalog().CreateOwner(ctx, owner))
	cat := &entity.Category{Name: "Velas"}
	require.NoError(t, store.Catalog().CreateCategory(ctx, cat))

	ledger := inventory.NewRegisterMovementUseCase(store, store.Variants(), store.Movements(), logger.Nop())
	reports := analytics.NewFinancialReportUseCase(store.Reports(), nil, 0, nil, logger.Nop())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:      ledger,
		Sales:       sales.NewSaleUseCase(store, ledger, store.Sales(), reports, logger.Nop()),
		Consignment: consignment.NewBalanceUseCase(store, store.Owners(), store.Sales(), store.Adjustments(), store.Settlements(), logger.Nop()),
		Reports:     reports,
		JWTSecret:   testJWTSecret,
		ServiceName: "consignacion-test",
	})
	return &apiFixture{app: app, store: store, owner: owner.ID, cat: cat.ID}
}

// variant crea una variante UNIT con costo 50 y precio 80, sin stock.
func (f *apiFixture) variant(t *testing.T, sku string) string {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{OwnerID: f.owner, CategoryID: f.cat, Name: sku, UnitOfMeasure: entity.UnitOfMeasureUnit}
	require.NoError(t, f.store.Catalog().CreateProduct(ctx, p))
	v := &entity.ProductVariant{
		ProductID: p.ID, Name: sku, SKU: sku,
		CostPrice: decimal.NewFromInt(50), SalePrice: decimal.NewFromInt(80),
	}
	require.NoError(t, f.store.Catalog().CreateVariant(ctx, v))
	return v.ID
}

func (f *apiFixture) call(t *testing.T, method, path, role, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth_SinToken(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodGet, "/health", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_SinToken_Retorna401(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodGet, "/api/reports/inventory-valuation", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMovements_EntradaYAjusteSinStock(t *testing.T) {
	f := newAPI(t)
	v := f.variant(t, "VELA-01")

	resp := f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleCashier,
		`{"variant_id":"`+v+`","type":"ENTRY","quantity":10}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mov := decode[dto.MovementDTO](t, resp)
	assert.Equal(t, int64(10), mov.Quantity)
	assert.Equal(t, testUserID, mov.UserID)

	resp = f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleCashier,
		`{"variant_id":"`+v+`","type":"ADJUSTMENT","quantity":50,"reason":"merma"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, "No hay stock disponible", errBody.Message)

	resp = f.call(t, http.MethodGet, "/api/inventory/variants/"+v+"/replay", pkgjwt.RoleCashier, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	replay := decode[dto.LedgerReplayDTO](t, resp)
	assert.Equal(t, int64(10), replay.CurrentStock)
	assert.True(t, replay.Consistent)
	assert.Len(t, replay.Entries, 1)
}

func TestMovements_Validacion(t *testing.T) {
	f := newAPI(t)
	v := f.variant(t, "VELA-02")

	resp := f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleCashier, `{"type":"ENTRY","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	fields := make([]string, 0, len(body.Details))
	for _, d := range body.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"variant_id", "quantity"}, fields)

	resp = f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleCashier, `{no es json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, resp).Code)

	resp = f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleCashier,
		`{"variant_id":"`+v+`","type":"SALE","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleCashier,
		`{"variant_id":"no-existe","type":"ENTRY","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.call(t, http.MethodGet, "/api/inventory/variants/"+v+"/movements?from=2024-13-01", pkgjwt.RoleCashier, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMovements_ListaPaginada(t *testing.T) {
	f := newAPI(t)
	v := f.variant(t, "VELA-03")
	for i := 0; i < 3; i++ {
		resp := f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleCashier,
			`{"variant_id":"`+v+`","type":"ENTRY","quantity":2}`)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := f.call(t, http.MethodGet, "/api/inventory/variants/"+v+"/movements?limit=2", pkgjwt.RoleCashier, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.MovementListResponse](t, resp)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Page.Limit)
}

func TestAudit_SoloAdmin(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodGet, "/api/inventory/audit", pkgjwt.RoleCashier, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.call(t, http.MethodGet, "/api/inventory/audit", pkgjwt.RoleAdmin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.LedgerAuditDTO](t, resp).Consistent)
}

func TestVentaLiquidacion_FlujoCompleto(t *testing.T) {
	f := newAPI(t)
	v := f.variant(t, "VELA-04")
	resp := f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleAdmin,
		`{"variant_id":"`+v+`","type":"ENTRY","quantity":10}`)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.call(t, http.MethodPost, "/api/sales", pkgjwt.RoleCashier,
		`{"payment_status":"PAID","lines":[{"variant_id":"`+v+`","quantity":4}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleDTO](t, resp)
	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(320)), "4 × 80")

	// El cajero no ve saldos de dueños.
	resp = f.call(t, http.MethodGet, "/api/owners/"+f.owner+"/balance", pkgjwt.RoleCashier, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.call(t, http.MethodGet, "/api/owners/"+f.owner+"/balance", pkgjwt.RoleAdmin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balance := decode[dto.OwnerBalanceDTO](t, resp)
	assert.True(t, balance.DebtFromSales.Equal(decimal.NewFromInt(200)), "4 × 50")

	resp = f.call(t, http.MethodPost, "/api/owners/"+f.owner+"/adjustments", pkgjwt.RoleAdmin,
		`{"amount":"-20","description":"envío"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	adj := decode[dto.AdjustmentDTO](t, resp)

	settleBody := `{"lines":[{"sale_item_id":"` + sale.Items[0].ID + `","quantity":4}],"adjustment_ids":["` + adj.ID + `"]}`
	resp = f.call(t, http.MethodPost, "/api/owners/"+f.owner+"/settlements", pkgjwt.RoleAdmin, settleBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	settlement := decode[dto.SettlementDTO](t, resp)
	assert.True(t, settlement.TotalAmount.Equal(decimal.NewFromInt(180)))

	resp = f.call(t, http.MethodPost, "/api/owners/"+f.owner+"/settlements", pkgjwt.RoleAdmin, settleBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "ALREADY_SETTLED", errBody.Code)
	assert.Equal(t, "Ya fue liquidado por otro proceso", errBody.Message)

	resp = f.call(t, http.MethodGet, "/api/settlements/"+settlement.ID, pkgjwt.RoleAdmin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.SettlementDTO](t, resp)
	assert.Len(t, got.Items, 1)
	assert.Len(t, got.Adjustments, 1)

	resp = f.call(t, http.MethodGet, "/api/owners/"+f.owner+"/settlements", pkgjwt.RoleAdmin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.SettlementListResponse](t, resp).Items, 1)

	// Una venta con líneas liquidadas ya no se puede anular.
	resp = f.call(t, http.MethodPost, "/api/sales/"+sale.ID+"/cancel", pkgjwt.RoleCashier, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestVentas_PendienteYCobro(t *testing.T) {
	f := newAPI(t)
	v := f.variant(t, "VELA-05")
	resp := f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleCashier,
		`{"variant_id":"`+v+`","type":"ENTRY","quantity":1}`)
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/sales", pkgjwt.RoleCashier,
		`{"payment_status":"FIADO","lines":[{"variant_id":"`+v+`","quantity":1}]}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.call(t, http.MethodPost, "/api/sales", pkgjwt.RoleCashier,
		`{"payment_status":"PENDING","lines":[{"variant_id":"`+v+`","quantity":2}]}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "sin stock suficiente no se vende nada")

	resp = f.call(t, http.MethodPost, "/api/sales", pkgjwt.RoleCashier,
		`{"payment_status":"PENDING","lines":[{"variant_id":"`+v+`","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleDTO](t, resp)
	assert.Equal(t, entity.PaymentStatusPending, sale.PaymentStatus)

	resp = f.call(t, http.MethodPost, "/api/sales/"+sale.ID+"/pay", pkgjwt.RoleCashier, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.PaymentStatusPaid, decode[dto.SaleDTO](t, resp).PaymentStatus)

	resp = f.call(t, http.MethodPost, "/api/sales/"+sale.ID+"/cancel", pkgjwt.RoleCashier, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.SaleStatusCancelled, decode[dto.SaleDTO](t, resp).Status)

	resp = f.call(t, http.MethodPost, "/api/sales/no-existe/pay", pkgjwt.RoleCashier, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportes(t *testing.T) {
	f := newAPI(t)
	v := f.variant(t, "VELA-06")
	resp := f.call(t, http.MethodPost, "/api/inventory/movements", pkgjwt.RoleAdmin,
		`{"variant_id":"`+v+`","type":"ENTRY","quantity":3}`)
	resp.Body.Close()

	resp = f.call(t, http.MethodGet, "/api/reports/inventory-valuation", pkgjwt.RoleCashier, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.call(t, http.MethodGet, "/api/reports/inventory-valuation", pkgjwt.RoleAdmin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	val := decode[dto.InventoryValuationDTO](t, resp)
	assert.True(t, val.TotalCostValue.Equal(decimal.NewFromInt(150)))
	assert.True(t, val.TotalRetailValue.Equal(decimal.NewFromInt(240)))

	resp = f.call(t, http.MethodGet, "/api/reports/monthly", pkgjwt.RoleAdmin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	monthly := decode[dto.MonthlyReportDTO](t, resp)
	assert.NotZero(t, monthly.Year)

	resp = f.call(t, http.MethodGet, "/api/reports/sales-by-category?year=2024&month=13", pkgjwt.RoleAdmin, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.call(t, http.MethodGet, "/api/reports/sales-by-category?year=2024&month=3", pkgjwt.RoleAdmin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dto.SalesByCategoryDTO](t, resp).Categories)
}
