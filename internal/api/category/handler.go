package category

import (
	"context"
	"net/http"

	"stockledger/internal/api/response"
	"stockledger/internal/domain"
	"stockledger/internal/pkg/logger"
)

// CategoryService define o contrato que o Handler espera da camada de Serviço.
type CategoryService interface {
	CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// Handler agrupa os métodos de Handler de categorias.
type Handler struct {
	Service CategoryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc CategoryService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateCategoryHandler lida com a requisição POST /v1/categories.
// @Summary Cria uma categoria
// @Tags categories
// @Accept json
// @Produce json
// @Param category body domain.Category true "Dados da categoria"
// @Success 201 {object} domain.Category
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /categories [post]
func (h *Handler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if err := response.DecodeJSON(r, &c); err != nil {
		response.Write(w, r, h.Logger, nil, err, 0)
		return
	}

	created, err := h.Service.CreateCategory(r.Context(), c)
	response.Write(w, r, h.Logger, created, err, http.StatusCreated)
}

// GetCategoryByIDHandler lida com a requisição GET /v1/categories/{id}.
// @Summary Obtém uma categoria
// @Tags categories
// @Produce json
// @Param id path string true "ID da Categoria"
// @Success 200 {object} domain.Category
// @Failure 404 {object} domain.ErrorResponse
// @Router /categories/{id} [get]
func (h *Handler) GetCategoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetCategoryByID(r.Context(), r.PathValue("id"))
	response.Write(w, r, h.Logger, c, err, http.StatusOK)
}

// GetAllCategoriesHandler lida com a requisição GET /v1/categories.
// @Summary Lista as categorias
// @Tags categories
// @Produce json
// @Success 200 {array} domain.Category
// @Router /categories [get]
func (h *Handler) GetAllCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetAllCategories(r.Context())
	response.Write(w, r, h.Logger, categories, err, http.StatusOK)
}

// UpdateCategoryHandler lida com a requisição PUT /v1/categories/{id}.
// @Summary Atualiza uma categoria
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "ID da Categoria"
// @Param category body domain.Category true "Dados da categoria"
// @Success 200 {object} domain.Category
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /categories/{id} [put]
func (h *Handler) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if err := response.DecodeJSON(r, &c); err != nil {
		response.Write(w, r, h.Logger, nil, err, 0)
		return
	}
	// O ID da URL prevalece sobre o do corpo.
	c.ID = r.PathValue("id")

	updated, err := h.Service.UpdateCategory(r.Context(), c)
	response.Write(w, r, h.Logger, updated, err, http.StatusOK)
}

// DeleteCategoryHandler lida com a requisição DELETE /v1/categories/{id}.
// @Summary Remove uma categoria (e, em cascata, seus produtos e ledgers)
// @Tags categories
// @Param id path string true "ID da Categoria"
// @Success 204 "Removida"
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /categories/{id} [delete]
func (h *Handler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteCategory(r.Context(), r.PathValue("id"))
	response.Write(w, r, h.Logger, nil, err, http.StatusNoContent)
}
