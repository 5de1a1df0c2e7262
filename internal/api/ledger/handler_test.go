package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockledger/internal/api/ledger"
	"stockledger/internal/domain"
	apperror "stockledger/internal/errors"
	"stockledger/internal/pkg/logger"
)

const productID = "3c95b8c8-5b2e-4d8a-9f43-2a1f0d6c7e11"

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateLedger(ctx context.Context, req domain.CreateLedgerRequest) (domain.LedgerView, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.LedgerView), args.Error(1)
}

func (m *MockLedgerService) GetLedger(ctx context.Context, id string) (domain.LedgerView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.LedgerView), args.Error(1)
}

func (m *MockLedgerService) UpdateLedger(ctx context.Context, id string, req domain.UpdateLedgerRequest) (domain.LedgerView, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(domain.LedgerView), args.Error(1)
}

func (m *MockLedgerService) DeleteLedger(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLedgerService) Reserve(ctx context.Context, id string, req domain.AdjustmentRequest) (domain.LedgerView, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(domain.LedgerView), args.Error(1)
}

func (m *MockLedgerService) Release(ctx context.Context, id string, req domain.AdjustmentRequest) (domain.LedgerView, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(domain.LedgerView), args.Error(1)
}

func (m *MockLedgerService) Increase(ctx context.Context, id string, req domain.AdjustmentRequest) (domain.LedgerView, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(domain.LedgerView), args.Error(1)
}

func (m *MockLedgerService) Decrease(ctx context.Context, id string, req domain.AdjustmentRequest) (domain.LedgerView, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(domain.LedgerView), args.Error(1)
}

func (m *MockLedgerService) CheckAvailability(ctx context.Context, id string, amount int) (domain.AvailabilityResult, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(domain.AvailabilityResult), args.Error(1)
}

func (m *MockLedgerService) ListLowStock(ctx context.Context) ([]domain.LedgerView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.LedgerView), args.Error(1)
}

func (m *MockLedgerService) ListAdjustments(ctx context.Context, id string, limit int) ([]domain.Adjustment, error) {
	args := m.Called(ctx, id, limit)
	return args.Get(0).([]domain.Adjustment), args.Error(1)
}

func setup() (*MockLedgerService, http.Handler) {
	svc := new(MockLedgerService)
	h := ledger.NewHandler(svc, logger.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/inventory", h.CreateLedgerHandler)
	mux.HandleFunc("GET /v1/inventory/low-stock", h.ListLowStockHandler)
	mux.HandleFunc("GET /v1/inventory/{productID}", h.GetLedgerHandler)
	mux.HandleFunc("PATCH /v1/inventory/{productID}", h.UpdateLedgerHandler)
	mux.HandleFunc("DELETE /v1/inventory/{productID}", h.DeleteLedgerHandler)
	mux.HandleFunc("POST /v1/inventory/{productID}/reserve", h.ReserveHandler)
	mux.HandleFunc("POST /v1/inventory/{productID}/release", h.ReleaseHandler)
	mux.HandleFunc("GET /v1/inventory/{productID}/check", h.CheckAvailabilityHandler)
	mux.HandleFunc("GET /v1/inventory/{productID}/adjustments", h.ListAdjustmentsHandler)
	return svc, mux
}

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var resp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateLedgerHandler_Created(t *testing.T) {
	svc, handler := setup()
	qty := 100
	svc.On("CreateLedger", mock.Anything, domain.CreateLedgerRequest{ProductID: productID, Quantity: &qty}).
		Return(domain.LedgerView{ProductID: productID, Quantity: 100, AvailableQuantity: 100, Status: domain.StatusInStock}, nil)

	rec := do(t, handler, http.MethodPost, "/v1/inventory", `{"product_id":"`+productID+`","quantity":100}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var view domain.LedgerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 100, view.AvailableQuantity)
	svc.AssertExpectations(t)
}

func TestCreateLedgerHandler_Fail_MalformedJSON(t *testing.T) {
	svc, handler := setup()

	rec := do(t, handler, http.MethodPost, "/v1/inventory", `{"product_id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CategoryValidation, decodeError(t, rec).Category)
	svc.AssertNotCalled(t, "CreateLedger", mock.Anything, mock.Anything)
}

func TestCreateLedgerHandler_Fail_Conflict(t *testing.T) {
	svc, handler := setup()
	svc.On("CreateLedger", mock.Anything, mock.Anything).
		Return(domain.LedgerView{}, apperror.NewConflictError("ledger já existe"))

	rec := do(t, handler, http.MethodPost, "/v1/inventory", `{"product_id":"`+productID+`"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReserveHandler_Success(t *testing.T) {
	svc, handler := setup()
	svc.On("Reserve", mock.Anything, productID, domain.AdjustmentRequest{Quantity: 30, Reason: "Pedido #1"}).
		Return(domain.LedgerView{ProductID: productID, Quantity: 100, ReservedQuantity: 30, AvailableQuantity: 70}, nil)

	rec := do(t, handler, http.MethodPost, "/v1/inventory/"+productID+"/reserve", `{"quantity":30,"reason":"Pedido #1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var view domain.LedgerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 30, view.ReservedQuantity)
	assert.Equal(t, 70, view.AvailableQuantity)
}

func TestReserveHandler_Fail_InsufficientStockCarriesDetails(t *testing.T) {
	svc, handler := setup()
	svc.On("Reserve", mock.Anything, productID, domain.AdjustmentRequest{Quantity: 15}).
		Return(domain.LedgerView{}, apperror.NewInsufficientStockError(15, 10, 10, 0))

	rec := do(t, handler, http.MethodPost, "/v1/inventory/"+productID+"/reserve", `{"quantity":15}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperror.CategoryInsufficientStock, resp.Category)
	assert.Equal(t, "Estoque insuficiente. Disponível: 10, Solicitado: 15", resp.Message)
	assert.EqualValues(t, 10, resp.Details["available_quantity"])
	assert.EqualValues(t, 15, resp.Details["requested_quantity"])
}

func TestReleaseHandler_Fail_InvalidOperation(t *testing.T) {
	svc, handler := setup()
	svc.On("Release", mock.Anything, productID, domain.AdjustmentRequest{Quantity: 25}).
		Return(domain.LedgerView{}, apperror.NewInvalidOperationError(25, 20))

	rec := do(t, handler, http.MethodPost, "/v1/inventory/"+productID+"/release", `{"quantity":25}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CategoryInvalidOperation, decodeError(t, rec).Category)
}

func TestReserveHandler_Fail_TransientSetsRetryAfter(t *testing.T) {
	svc, handler := setup()
	svc.On("Reserve", mock.Anything, productID, mock.Anything).
		Return(domain.LedgerView{}, apperror.NewTransientError("lock timeout", context.DeadlineExceeded))

	rec := do(t, handler, http.MethodPost, "/v1/inventory/"+productID+"/reserve", `{"quantity":1}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, apperror.CategoryTransient, decodeError(t, rec).Category)
}

func TestGetLedgerHandler_Fail_NotFound(t *testing.T) {
	svc, handler := setup()
	svc.On("GetLedger", mock.Anything, productID).
		Return(domain.LedgerView{}, apperror.NewNotFoundError("ledger"))

	rec := do(t, handler, http.MethodGet, "/v1/inventory/"+productID, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateLedgerHandler_PartialBody(t *testing.T) {
	svc, handler := setup()
	min := 5
	svc.On("UpdateLedger", mock.Anything, productID, domain.UpdateLedgerRequest{MinStockLevel: &min}).
		Return(domain.LedgerView{ProductID: productID, MinStockLevel: 5}, nil)

	rec := do(t, handler, http.MethodPatch, "/v1/inventory/"+productID, `{"min_stock_level":5}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDeleteLedgerHandler_NoContent(t *testing.T) {
	svc, handler := setup()
	svc.On("DeleteLedger", mock.Anything, productID).Return(nil)

	rec := do(t, handler, http.MethodDelete, "/v1/inventory/"+productID, "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCheckAvailabilityHandler(t *testing.T) {
	svc, handler := setup()
	svc.On("CheckAvailability", mock.Anything, productID, 70).
		Return(domain.AvailabilityResult{Available: true, RequestedQuantity: 70, AvailableQuantity: 70, Quantity: 100, ReservedQuantity: 30}, nil)

	rec := do(t, handler, http.MethodGet, "/v1/inventory/"+productID+"/check?quantity=70", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var result domain.AvailabilityResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Available)
}

func TestCheckAvailabilityHandler_Fail_NonNumericQuantity(t *testing.T) {
	svc, handler := setup()

	rec := do(t, handler, http.MethodGet, "/v1/inventory/"+productID+"/check?quantity=abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CheckAvailability", mock.Anything, mock.Anything, mock.Anything)
}

func TestListLowStockHandler_RouteNotShadowedByProductID(t *testing.T) {
	svc, handler := setup()
	svc.On("ListLowStock", mock.Anything).
		Return([]domain.LedgerView{{ProductID: productID, Quantity: 3}}, nil)

	rec := do(t, handler, http.MethodGet, "/v1/inventory/low-stock", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var views []domain.LedgerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Len(t, views, 1)
	svc.AssertNotCalled(t, "GetLedger", mock.Anything, mock.Anything)
}

func TestListAdjustmentsHandler_Limit(t *testing.T) {
	svc, handler := setup()
	svc.On("ListAdjustments", mock.Anything, productID, 5).Return([]domain.Adjustment{}, nil)
	svc.On("ListAdjustments", mock.Anything, productID, 0).Return([]domain.Adjustment{}, nil)

	assert.Equal(t, http.StatusOK, do(t, handler, http.MethodGet, "/v1/inventory/"+productID+"/adjustments?limit=5", "").Code)
	assert.Equal(t, http.StatusOK, do(t, handler, http.MethodGet, "/v1/inventory/"+productID+"/adjustments", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, handler, http.MethodGet, "/v1/inventory/"+productID+"/adjustments?limit=x", "").Code)
	svc.AssertExpectations(t)
}

func TestHandler_Fail_UntypedErrorIsUnknown(t *testing.T) {
	svc, handler := setup()
	svc.On("GetLedger", mock.Anything, productID).Return(domain.LedgerView{}, assert.AnError)

	rec := do(t, handler, http.MethodGet, "/v1/inventory/"+productID, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "UNKNOWN_ERROR", decodeError(t, rec).Category)
}
