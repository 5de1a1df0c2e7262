package ledger

import (
	"context"
	"net/http"
	"strconv"

	"stockledger/internal/api/response"
	"stockledger/internal/domain"
	apperror "stockledger/internal/errors"
	"stockledger/internal/pkg/logger"
)

// LedgerService define o contrato que o Handler espera da camada de Serviço.
type LedgerService interface {
	CreateLedger(ctx context.Context, req domain.CreateLedgerRequest) (domain.LedgerView, error)
	GetLedger(ctx context.Context, productID string) (domain.LedgerView, error)
	UpdateLedger(ctx context.Context, productID string, req domain.UpdateLedgerRequest) (domain.LedgerView, error)
	DeleteLedger(ctx context.Context, productID string) error
	Reserve(ctx context.Context, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error)
	Release(ctx context.Context, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error)
	Increase(ctx context.Context, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error)
	Decrease(ctx context.Context, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error)
	CheckAvailability(ctx context.Context, productID string, amount int) (domain.AvailabilityResult, error)
	ListLowStock(ctx context.Context) ([]domain.LedgerView, error)
	ListAdjustments(ctx context.Context, productID string, limit int) ([]domain.Adjustment, error)
}

// Handler agrupa os handlers HTTP do ledger de estoque.
type Handler struct {
	Service LedgerService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc LedgerService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, data interface{}, err error, status int) {
	response.Write(w, r, h.Logger, data, err, status)
}

// CreateLedgerHandler lida com a requisição POST /v1/inventory.
// @Summary Cria o ledger de estoque de um produto
// @Tags inventory
// @Accept json
// @Produce json
// @Param ledger body domain.CreateLedgerRequest true "Produto e valores iniciais (padrões: 0/10/1000)"
// @Success 201 {object} domain.LedgerView
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Ledger já existe"
// @Security ApiKeyAuth
// @Router /inventory [post]
func (h *Handler) CreateLedgerHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLedgerRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		h.respond(w, r, nil, err, 0)
		return
	}

	view, err := h.Service.CreateLedger(r.Context(), req)
	h.respond(w, r, view, err, http.StatusCreated)
}

// GetLedgerHandler lida com a requisição GET /v1/inventory/{productID}.
// @Summary Obtém o ledger de um produto
// @Tags inventory
// @Produce json
// @Param productID path string true "ID do Produto"
// @Success 200 {object} domain.LedgerView
// @Failure 404 {object} domain.ErrorResponse
// @Router /inventory/{productID} [get]
func (h *Handler) GetLedgerHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.GetLedger(r.Context(), r.PathValue("productID"))
	h.respond(w, r, view, err, http.StatusOK)
}

// UpdateLedgerHandler lida com a requisição PATCH /v1/inventory/{productID}.
// @Summary Atualiza parcialmente o ledger
// @Tags inventory
// @Accept json
// @Produce json
// @Param productID path string true "ID do Produto"
// @Param ledger body domain.UpdateLedgerRequest true "Campos a atualizar"
// @Success 200 {object} domain.LedgerView
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /inventory/{productID} [patch]
func (h *Handler) UpdateLedgerHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateLedgerRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		h.respond(w, r, nil, err, 0)
		return
	}

	view, err := h.Service.UpdateLedger(r.Context(), r.PathValue("productID"), req)
	h.respond(w, r, view, err, http.StatusOK)
}

// DeleteLedgerHandler lida com a requisição DELETE /v1/inventory/{productID}.
// @Summary Remove o ledger de um produto
// @Tags inventory
// @Param productID path string true "ID do Produto"
// @Success 204 "Removido"
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /inventory/{productID} [delete]
func (h *Handler) DeleteLedgerHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteLedger(r.Context(), r.PathValue("productID"))
	h.respond(w, r, nil, err, http.StatusNoContent)
}

type adjustFunc func(ctx context.Context, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error)

func (h *Handler) adjust(fn adjustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.AdjustmentRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			h.respond(w, r, nil, err, 0)
			return
		}

		view, err := fn(r.Context(), r.PathValue("productID"), req)
		h.respond(w, r, view, err, http.StatusOK)
	}
}

// ReserveHandler lida com a requisição POST /v1/inventory/{productID}/reserve.
// @Summary Reserva estoque para um pedido
// @Tags inventory
// @Accept json
// @Produce json
// @Param productID path string true "ID do Produto"
// @Param adjustment body domain.AdjustmentRequest true "Quantidade e motivo"
// @Success 200 {object} domain.LedgerView
// @Failure 400 {object} domain.ErrorResponse "INSUFFICIENT_STOCK ou VALIDATION_ERROR"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 503 {object} domain.ErrorResponse "Ledger ocupado; repetir"
// @Security ApiKeyAuth
// @Router /inventory/{productID}/reserve [post]
func (h *Handler) ReserveHandler(w http.ResponseWriter, r *http.Request) {
	h.adjust(h.Service.Reserve)(w, r)
}

// ReleaseHandler lida com a requisição POST /v1/inventory/{productID}/release.
// @Summary Libera estoque reservado
// @Tags inventory
// @Accept json
// @Produce json
// @Param productID path string true "ID do Produto"
// @Param adjustment body domain.AdjustmentRequest true "Quantidade e motivo"
// @Success 200 {object} domain.LedgerView
// @Failure 400 {object} domain.ErrorResponse "INVALID_OPERATION ou VALIDATION_ERROR"
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /inventory/{productID}/release [post]
func (h *Handler) ReleaseHandler(w http.ResponseWriter, r *http.Request) {
	h.adjust(h.Service.Release)(w, r)
}

// IncreaseHandler lida com a requisição POST /v1/inventory/{productID}/increase.
// @Summary Adiciona estoque
// @Tags inventory
// @Accept json
// @Produce json
// @Param productID path string true "ID do Produto"
// @Param adjustment body domain.AdjustmentRequest true "Quantidade e motivo"
// @Success 200 {object} domain.LedgerView
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /inventory/{productID}/increase [post]
func (h *Handler) IncreaseHandler(w http.ResponseWriter, r *http.Request) {
	h.adjust(h.Service.Increase)(w, r)
}

// DecreaseHandler lida com a requisição POST /v1/inventory/{productID}/decrease.
// @Summary Remove estoque disponível
// @Tags inventory
// @Accept json
// @Produce json
// @Param productID path string true "ID do Produto"
// @Param adjustment body domain.AdjustmentRequest true "Quantidade e motivo"
// @Success 200 {object} domain.LedgerView
// @Failure 400 {object} domain.ErrorResponse "INSUFFICIENT_STOCK ou VALIDATION_ERROR"
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /inventory/{productID}/decrease [post]
func (h *Handler) DecreaseHandler(w http.ResponseWriter, r *http.Request) {
	h.adjust(h.Service.Decrease)(w, r)
}

// CheckAvailabilityHandler lida com a requisição GET /v1/inventory/{productID}/check?quantity=N.
// @Summary Verifica disponibilidade
// @Tags inventory
// @Produce json
// @Param productID path string true "ID do Produto"
// @Param quantity query int true "Quantidade desejada"
// @Success 200 {object} domain.AvailabilityResult
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /inventory/{productID}/check [get]
func (h *Handler) CheckAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		h.respond(w, r, nil, apperror.NewValidationError("O parâmetro quantity deve ser um inteiro positivo."), 0)
		return
	}

	result, err := h.Service.CheckAvailability(r.Context(), r.PathValue("productID"), amount)
	h.respond(w, r, result, err, http.StatusOK)
}

// ListLowStockHandler lida com a requisição GET /v1/inventory/low-stock.
// @Summary Lista produtos com estoque baixo
// @Tags inventory
// @Produce json
// @Success 200 {array} domain.LedgerView
// @Router /inventory/low-stock [get]
func (h *Handler) ListLowStockHandler(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.ListLowStock(r.Context())
	h.respond(w, r, views, err, http.StatusOK)
}

// ListAdjustmentsHandler lida com a requisição GET /v1/inventory/{productID}/adjustments.
// @Summary Histórico de ajustes do produto
// @Tags inventory
// @Produce json
// @Param productID path string true "ID do Produto"
// @Param limit query int false "Máximo de registros (padrão 50, máximo 500)"
// @Success 200 {array} domain.Adjustment
// @Failure 404 {object} domain.ErrorResponse
// @Router /inventory/{productID}/adjustments [get]
func (h *Handler) ListAdjustmentsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respond(w, r, nil, apperror.NewValidationError("O parâmetro limit deve ser um inteiro."), 0)
			return
		}
		limit = parsed
	}

	adjustments, err := h.Service.ListAdjustments(r.Context(), r.PathValue("productID"), limit)
	h.respond(w, r, adjustments, err, http.StatusOK)
}
