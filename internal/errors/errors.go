package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do serviço.
// Ela permite que o código externo (Handler) acesse a Categoria, a Mensagem e os detalhes do erro.
type AppError interface {
	Error() string                   // Implementa a interface error padrão do Go
	Category() string                // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND", "INSUFFICIENT_STOCK")
	HTTPStatus() int                 // Código HTTP sugerido para o Handler
	Details() map[string]interface{} // Contadores atuais do ledger, quando relevantes
	Unwrap() error                   // Permite encapsular erros subjacentes (original error)
}

// Categorias expostas ao cliente.
const (
	CategoryValidation        = "VALIDATION_ERROR"
	CategoryNotFound          = "NOT_FOUND"
	CategoryConflict          = "CONFLICT"
	CategoryInsufficientStock = "INSUFFICIENT_STOCK"
	CategoryInvalidOperation  = "INVALID_OPERATION"
	CategoryTransient         = "TRANSIENT_ERROR"
	CategoryUnauthorized      = "UNAUTHORIZED"
	CategoryInternal          = "INTERNAL_ERROR"
)

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa argumentos inválidos (quantidade não positiva, ID malformado, limites incoerentes).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string                   { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string                { return CategoryValidation }
func (e *ValidationError) HTTPStatus() int                 { return http.StatusBadRequest } // 400
func (e *ValidationError) Details() map[string]interface{} { return nil }
func (e *ValidationError) Unwrap() error                   { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado (ledger ou produto).
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string                   { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string                { return CategoryNotFound }
func (e *NotFoundError) HTTPStatus() int                 { return http.StatusNotFound } // 404
func (e *NotFoundError) Details() map[string]interface{} { return nil }
func (e *NotFoundError) Unwrap() error                   { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um recurso duplicado (ledger já existente, SKU repetido).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string                   { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string                { return CategoryConflict }
func (e *ConflictError) HTTPStatus() int                 { return http.StatusConflict } // 409
func (e *ConflictError) Details() map[string]interface{} { return nil }
func (e *ConflictError) Unwrap() error                   { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// InsufficientStockError é retornado quando reserve/decrease excederia a quantidade disponível.
type InsufficientStockError struct {
	Requested int
	Available int
	Quantity  int
	Reserved  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente. Disponível: %d, Solicitado: %d", e.Available, e.Requested)
}
func (e *InsufficientStockError) Category() string { return CategoryInsufficientStock }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *InsufficientStockError) Details() map[string]interface{} {
	return map[string]interface{}{
		"requested_quantity": e.Requested,
		"available_quantity": e.Available,
		"quantity":           e.Quantity,
		"reserved_quantity":  e.Reserved,
	}
}
func (e *InsufficientStockError) Unwrap() error { return nil }

// NewInsufficientStockError cria um erro de estoque insuficiente com os contadores atuais.
func NewInsufficientStockError(requested, available, quantity, reserved int) AppError {
	return &InsufficientStockError{Requested: requested, Available: available, Quantity: quantity, Reserved: reserved}
}

// InvalidOperationError é retornado quando release excede a quantidade reservada.
type InvalidOperationError struct {
	Requested int
	Reserved  int
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("Não é possível liberar mais do que o reservado. Reservado: %d, Solicitado: %d", e.Reserved, e.Requested)
}
func (e *InvalidOperationError) Category() string { return CategoryInvalidOperation }
func (e *InvalidOperationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *InvalidOperationError) Details() map[string]interface{} {
	return map[string]interface{}{
		"requested_quantity": e.Requested,
		"reserved_quantity":  e.Reserved,
	}
}
func (e *InvalidOperationError) Unwrap() error { return nil }

// NewInvalidOperationError cria um erro de operação inválida.
func NewInvalidOperationError(requested, reserved int) AppError {
	return &InvalidOperationError{Requested: requested, Reserved: reserved}
}

// UnauthorizedError representa ausência ou invalidade da identidade do chamador.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string                   { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string                { return CategoryUnauthorized }
func (e *UnauthorizedError) HTTPStatus() int                 { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Details() map[string]interface{} { return nil }
func (e *UnauthorizedError) Unwrap() error                   { return nil }

// NewUnauthorizedError cria um novo erro de autorização.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// TransientError representa falhas passageiras de armazenamento (lock timeout, conexão perdida).
// O serviço não tenta novamente; o chamador pode repetir a requisição.
type TransientError struct {
	Msg string
	Err error
}

func (e *TransientError) Error() string                   { return fmt.Sprintf("Falha temporária: %s", e.Msg) }
func (e *TransientError) Category() string                { return CategoryTransient }
func (e *TransientError) HTTPStatus() int                 { return http.StatusServiceUnavailable } // 503
func (e *TransientError) Details() map[string]interface{} { return nil }
func (e *TransientError) Unwrap() error                   { return e.Err }

// NewTransientError cria um erro temporário (repetível).
func NewTransientError(msg string, err error) AppError {
	return &TransientError{Msg: msg, Err: err}
}

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string                   { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string                { return CategoryInternal }
func (e *InternalError) HTTPStatus() int                 { return http.StatusInternalServerError } // 500
func (e *InternalError) Details() map[string]interface{} { return nil }
func (e *InternalError) Unwrap() error                   { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}

// DetailsOf retorna os detalhes estruturados de um AppError, ou nil.
func DetailsOf(err error) map[string]interface{} {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.Details()
	}
	return nil
}
