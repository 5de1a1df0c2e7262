package domain

import (
	"fmt"
	"math"
	"time"

	apperror "stockledger/internal/errors"
)

// Valores padrão aplicados na criação de um ledger quando o campo é omitido.
const (
	DefaultMinStockLevel = 10
	DefaultMaxStockLevel = 1000
)

// MaxQuantity é o maior valor aceito para quantidades, limites e ajustes (coluna INTEGER).
const MaxQuantity = math.MaxInt32

// StockStatus é o estado derivado do estoque de um produto.
type StockStatus string

const (
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StatusLowStock   StockStatus = "LOW_STOCK"
	StatusOverstock  StockStatus = "OVERSTOCK"
	StatusInStock    StockStatus = "IN_STOCK"
)

// StockLedger é o registro de estoque de um produto (um por produto).
// Invariante: 0 <= ReservedQuantity <= Quantity.
type StockLedger struct {
	ProductID         string    `json:"product_id"`
	Quantity          int       `json:"quantity"`
	ReservedQuantity  int       `json:"reserved_quantity"`
	MinStockLevel     int       `json:"min_stock_level"`
	MaxStockLevel     int       `json:"max_stock_level"`
	WarehouseLocation string    `json:"warehouse_location"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AvailableQuantity é a quantidade não reservada, nunca negativa.
func (l StockLedger) AvailableQuantity() int {
	available := l.Quantity - l.ReservedQuantity
	if available < 0 {
		return 0
	}
	return available
}

// Status deriva o estado do estoque. A ordem das verificações importa:
// OUT_OF_STOCK e LOW_STOCK têm prioridade sobre OVERSTOCK.
func (l StockLedger) Status() StockStatus {
	available := l.AvailableQuantity()
	switch {
	case available <= 0:
		return StatusOutOfStock
	case available <= l.MinStockLevel:
		return StatusLowStock
	case l.Quantity >= l.MaxStockLevel:
		return StatusOverstock
	default:
		return StatusInStock
	}
}

// IsLowStock reproduz o filtro do scanner de estoque baixo, que usa a quantidade bruta
// (e não a disponível). Pode divergir de Status() quando há muitas reservas.
func (l StockLedger) IsLowStock() bool {
	return l.Quantity <= l.MinStockLevel && l.Quantity > 0
}

// View monta a visão completa do ledger, incluindo os campos derivados.
func (l StockLedger) View() LedgerView {
	return LedgerView{
		ProductID:         l.ProductID,
		Quantity:          l.Quantity,
		ReservedQuantity:  l.ReservedQuantity,
		AvailableQuantity: l.AvailableQuantity(),
		MinStockLevel:     l.MinStockLevel,
		MaxStockLevel:     l.MaxStockLevel,
		WarehouseLocation: l.WarehouseLocation,
		Status:            l.Status(),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// LedgerView é a representação devolvida ao cliente após qualquer operação.
// @Description Ledger de estoque com campos derivados.
type LedgerView struct {
	ProductID         string      `json:"product_id" example:"3c95b8c8-5b2e-4d8a-9f43-2a1f0d6c7e11"`
	Quantity          int         `json:"quantity" example:"100"`
	ReservedQuantity  int         `json:"reserved_quantity" example:"30"`
	AvailableQuantity int         `json:"available_quantity" example:"70"`
	MinStockLevel     int         `json:"min_stock_level" example:"10"`
	MaxStockLevel     int         `json:"max_stock_level" example:"1000"`
	WarehouseLocation string      `json:"warehouse_location" example:"A-12-03"`
	Status            StockStatus `json:"status" example:"IN_STOCK"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Apply executa uma das quatro operações de ajuste sobre o ledger.
// Em caso de erro o ledger não é alterado. Em caso de sucesso devolve o registro de auditoria.
func (l *StockLedger) Apply(op AdjustmentOperation, amount int, reason string, now time.Time) (Adjustment, error) {
	if err := ValidateAmount(amount); err != nil {
		return Adjustment{}, err
	}

	before := *l
	switch op {
	case OperationIncrease:
		if l.Quantity > MaxQuantity-amount {
			return Adjustment{}, apperror.NewValidationError(fmt.Sprintf("A quantidade resultante excederia o máximo de %d.", MaxQuantity))
		}
		l.Quantity += amount
	case OperationDecrease:
		if available := l.AvailableQuantity(); available < amount {
			return Adjustment{}, apperror.NewInsufficientStockError(amount, available, l.Quantity, l.ReservedQuantity)
		}
		l.Quantity -= amount
	case OperationReserve:
		if available := l.AvailableQuantity(); available < amount {
			return Adjustment{}, apperror.NewInsufficientStockError(amount, available, l.Quantity, l.ReservedQuantity)
		}
		l.ReservedQuantity += amount
	case OperationRelease:
		if l.ReservedQuantity < amount {
			return Adjustment{}, apperror.NewInvalidOperationError(amount, l.ReservedQuantity)
		}
		l.ReservedQuantity -= amount
	default:
		return Adjustment{}, apperror.NewValidationError("Operação de ajuste desconhecida: " + string(op))
	}
	l.UpdatedAt = now

	return newAdjustment(op, amount, reason, before, *l, now), nil
}

// ApplyUpdate aplica uma atualização parcial validando as invariantes do ledger.
// Devolve um registro de auditoria SET quando a quantidade muda.
func (l *StockLedger) ApplyUpdate(req UpdateLedgerRequest, now time.Time) (*Adjustment, error) {
	next := *l
	if req.Quantity != nil {
		next.Quantity = *req.Quantity
	}
	if req.MinStockLevel != nil {
		next.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		next.MaxStockLevel = *req.MaxStockLevel
	}
	if req.WarehouseLocation != nil {
		next.WarehouseLocation = *req.WarehouseLocation
	}

	if err := ValidateLevels(next.Quantity, next.MinStockLevel, next.MaxStockLevel); err != nil {
		return nil, err
	}
	if next.Quantity < next.ReservedQuantity {
		return nil, apperror.NewValidationError("A quantidade não pode ser menor que a quantidade reservada.")
	}

	next.UpdatedAt = now
	before := *l
	*l = next

	if before.Quantity == next.Quantity {
		return nil, nil
	}
	delta := next.Quantity - before.Quantity
	if delta < 0 {
		delta = -delta
	}
	adj := newAdjustment(OperationSet, delta, "atualização manual", before, next, now)
	return &adj, nil
}

// ValidateAmount verifica a quantidade de um ajuste: inteiro positivo até MaxQuantity.
func ValidateAmount(amount int) error {
	if amount <= 0 {
		return apperror.NewValidationError("A quantidade deve ser um inteiro positivo.")
	}
	if amount > MaxQuantity {
		return apperror.NewValidationError(fmt.Sprintf("A quantidade não pode exceder %d.", MaxQuantity))
	}
	return nil
}

// ValidateLevels verifica quantidade e limites configurados pelo operador.
func ValidateLevels(quantity, minLevel, maxLevel int) error {
	if quantity < 0 {
		return apperror.NewValidationError("A quantidade não pode ser negativa.")
	}
	if minLevel < 0 || maxLevel < 0 {
		return apperror.NewValidationError("Os níveis mínimo e máximo não podem ser negativos.")
	}
	if quantity > MaxQuantity || minLevel > MaxQuantity || maxLevel > MaxQuantity {
		return apperror.NewValidationError(fmt.Sprintf("Quantidade e níveis não podem exceder %d.", MaxQuantity))
	}
	if maxLevel < minLevel {
		return apperror.NewValidationError("O nível máximo deve ser maior ou igual ao nível mínimo.")
	}
	return nil
}

// CreateLedgerRequest é o payload de criação. Campos nil recebem os valores padrão.
type CreateLedgerRequest struct {
	ProductID         string  `json:"product_id"`
	Quantity          *int    `json:"quantity,omitempty"`
	MinStockLevel     *int    `json:"min_stock_level,omitempty"`
	MaxStockLevel     *int    `json:"max_stock_level,omitempty"`
	WarehouseLocation *string `json:"warehouse_location,omitempty"`
}

// NewLedger monta um ledger novo aplicando os padrões e validando os limites.
func NewLedger(req CreateLedgerRequest, now time.Time) (StockLedger, error) {
	ledger := StockLedger{
		ProductID:     req.ProductID,
		MinStockLevel: DefaultMinStockLevel,
		MaxStockLevel: DefaultMaxStockLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Quantity != nil {
		ledger.Quantity = *req.Quantity
	}
	if req.MinStockLevel != nil {
		ledger.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		ledger.MaxStockLevel = *req.MaxStockLevel
	}
	if req.WarehouseLocation != nil {
		ledger.WarehouseLocation = *req.WarehouseLocation
	}

	if err := ValidateLevels(ledger.Quantity, ledger.MinStockLevel, ledger.MaxStockLevel); err != nil {
		return StockLedger{}, err
	}
	return ledger, nil
}

// UpdateLedgerRequest é o payload de atualização parcial.
type UpdateLedgerRequest struct {
	Quantity          *int    `json:"quantity,omitempty"`
	MinStockLevel     *int    `json:"min_stock_level,omitempty"`
	MaxStockLevel     *int    `json:"max_stock_level,omitempty"`
	WarehouseLocation *string `json:"warehouse_location,omitempty"`
}

// AvailabilityResult é o retrato pontual devolvido pela consulta de disponibilidade.
type AvailabilityResult struct {
	Available         bool `json:"available"`
	RequestedQuantity int  `json:"requested_quantity"`
	AvailableQuantity int  `json:"available_quantity"`
	Quantity          int  `json:"quantity"`
	ReservedQuantity  int  `json:"reserved_quantity"`
}

// CheckAvailability compara a quantidade pedida com a disponível. Não altera o ledger.
func (l StockLedger) CheckAvailability(amount int) AvailabilityResult {
	available := l.AvailableQuantity()
	return AvailabilityResult{
		Available:         available >= amount,
		RequestedQuantity: amount,
		AvailableQuantity: available,
		Quantity:          l.Quantity,
		ReservedQuantity:  l.ReservedQuantity,
	}
}
