package productservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockledger/internal/domain"
	apperror "stockledger/internal/errors"
	"stockledger/internal/pkg/logger"
	"stockledger/internal/service/productservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func validProduct() domain.Product {
	return domain.Product{CategoryID: uuid.New().String(), SKU: " SKU-001 ", Name: "Teclado", Price: 249.9}
}

func TestCreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		_, err := uuid.Parse(p.ID)
		return err == nil && p.IsActive && p.SKU == "SKU-001" && !p.CreatedAt.IsZero()
	})).Return(domain.Product{ID: "x", SKU: "SKU-001"}, nil)

	result, err := svc.CreateProduct(context.Background(), validProduct())

	assert.NoError(t, err)
	assert.Equal(t, "SKU-001", result.SKU)
	mockRepo.AssertExpectations(t)
}

func TestCreateProduct_Fail_Validation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())

	noSKU := validProduct()
	noSKU.SKU = "  "
	freeProduct := validProduct()
	freeProduct.Price = 0
	badCategory := validProduct()
	badCategory.CategoryID = "eletronicos"

	for _, p := range []domain.Product{noSKU, freeProduct, badCategory} {
		_, err := svc.CreateProduct(context.Background(), p)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateProduct_Fail_DuplicateSKU(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())
	mockRepo.On("Save", mock.Anything, mock.Anything).Return(domain.Product{}, apperror.NewConflictError("SKU"))

	_, err := svc.CreateProduct(context.Background(), validProduct())

	assert.IsType(t, &apperror.ConflictError{}, err)
}

func TestGetProductByID_Fail_InvalidID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())

	_, err := svc.GetProductByID(context.Background(), "invalid-uuid")

	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetProductByID_Fail_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())
	id := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, id).Return(domain.Product{}, apperror.NewNotFoundError("x"))

	_, err := svc.GetProductByID(context.Background(), id)

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestDeleteProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())
	id := uuid.New().String()
	mockRepo.On("Delete", mock.Anything, id).Return(nil)

	assert.NoError(t, svc.DeleteProduct(context.Background(), id))
	mockRepo.AssertExpectations(t)
}

func TestUpdateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())
	p := validProduct()
	p.ID = uuid.New().String()
	p.IsActive = false

	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(got domain.Product) bool {
		return got.ID == p.ID && got.SKU == "SKU-001" && !got.IsActive && !got.UpdatedAt.IsZero()
	})).Return(domain.Product{ID: p.ID, SKU: "SKU-001"}, nil)

	result, err := svc.UpdateProduct(context.Background(), p)

	assert.NoError(t, err)
	assert.Equal(t, p.ID, result.ID)
	mockRepo.AssertExpectations(t)
}

func TestUpdateProduct_Fail_Validation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())

	invalidID := validProduct()
	invalidID.ID = "abc"
	_, err := svc.UpdateProduct(context.Background(), invalidID)
	assert.IsType(t, &apperror.ValidationError{}, err)

	noPrice := validProduct()
	noPrice.ID = uuid.New().String()
	noPrice.Price = 0
	_, err = svc.UpdateProduct(context.Background(), noPrice)
	assert.IsType(t, &apperror.ValidationError{}, err)

	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProduct_Fail_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())
	p := validProduct()
	p.ID = uuid.New().String()
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(domain.Product{}, apperror.NewNotFoundError("produto"))

	_, err := svc.UpdateProduct(context.Background(), p)

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestGetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNop())
	mockRepo.On("FindAll", mock.Anything).Return([]domain.Product{{ID: "a"}, {ID: "b"}}, nil)

	products, err := svc.GetAllProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 2)
}
