package product_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockledger/internal/api/product"
	"stockledger/internal/domain"
	apperror "stockledger/internal/errors"
	"stockledger/internal/pkg/logger"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreateProductHandler_Created(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())
	svc.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		return p.SKU == "SKU-1" && p.Price == 10.5
	})).Return(domain.Product{ID: "p-1", SKU: "SKU-1"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(`{"sku":"SKU-1","name":"Mouse","price":10.5,"category_id":"c"}`))
	rec := httptest.NewRecorder()
	h.CreateProductHandler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"p-1"`)
}

func TestCreateProductHandler_Fail_DuplicateSKU(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())
	svc.On("CreateProduct", mock.Anything, mock.Anything).
		Return(domain.Product{}, apperror.NewConflictError("SKU já cadastrado"))

	req := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(`{"sku":"SKU-1"}`))
	rec := httptest.NewRecorder()
	h.CreateProductHandler(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetProductByIDHandler_Fail_NotFound(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/products/{id}", h.GetProductByIDHandler)
	svc.On("GetProductByID", mock.Anything, "p-404").Return(domain.Product{}, apperror.NewNotFoundError("produto"))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/p-404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProductHandler_UsesPathID(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1/products/{id}", h.UpdateProductHandler)
	svc.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		return p.ID == "p-1" && p.Name == "Mouse"
	})).Return(domain.Product{ID: "p-1", Name: "Mouse"}, nil)

	req := httptest.NewRequest(http.MethodPut, "/v1/products/p-1", strings.NewReader(`{"id":"outro","name":"Mouse"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetAllProductsHandler(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())
	svc.On("GetAllProducts", mock.Anything).Return([]domain.Product{{ID: "a"}}, nil)

	rec := httptest.NewRecorder()
	h.GetAllProductsHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"a"`)
}
