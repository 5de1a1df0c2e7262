package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdjustmentOperation enumera as mutações possíveis de um ledger.
type AdjustmentOperation string

const (
	OperationIncrease AdjustmentOperation = "INCREASE"
	OperationDecrease AdjustmentOperation = "DECREASE"
	OperationReserve  AdjustmentOperation = "RESERVE"
	OperationRelease  AdjustmentOperation = "RELEASE"
	OperationSet      AdjustmentOperation = "SET" // atualização manual da quantidade
)

// AdjustmentRequest é o payload aceito por reserve/release/increase/decrease.
// Reason serve apenas para auditoria e não participa da validação.
type AdjustmentRequest struct {
	Quantity int    `json:"quantity" example:"5"`
	Reason   string `json:"reason,omitempty" example:"Pedido #123"`
}

// Adjustment é uma entrada do log de auditoria (somente inserção).
type Adjustment struct {
	ID             string              `json:"id"`
	ProductID      string              `json:"product_id"`
	Operation      AdjustmentOperation `json:"operation"`
	Amount         int                 `json:"amount"`
	QuantityBefore int                 `json:"quantity_before"`
	QuantityAfter  int                 `json:"quantity_after"`
	ReservedBefore int                 `json:"reserved_before"`
	ReservedAfter  int                 `json:"reserved_after"`
	Reason         string              `json:"reason,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

func newAdjustment(op AdjustmentOperation, amount int, reason string, before, after StockLedger, now time.Time) Adjustment {
	return Adjustment{
		ID:             uuid.NewString(),
		ProductID:      after.ProductID,
		Operation:      op,
		Amount:         amount,
		QuantityBefore: before.Quantity,
		QuantityAfter:  after.Quantity,
		ReservedBefore: before.ReservedQuantity,
		ReservedAfter:  after.ReservedQuantity,
		Reason:         reason,
		CreatedAt:      now,
	}
}

// MutationFunc é executada pelo repositório com o ledger bloqueado.
// Se retornar erro, nada é persistido. O Adjustment devolvido (se houver) é gravado
// na mesma transação da mutação.
type MutationFunc func(ledger *StockLedger) (*Adjustment, error)

// StockAdjustedEvent é publicado após cada mutação confirmada.
type StockAdjustedEvent struct {
	AdjustmentID string              `json:"adjustment_id"`
	ProductID    string              `json:"product_id"`
	Operation    AdjustmentOperation `json:"operation"`
	Amount       int                 `json:"amount"`
	Reason       string              `json:"reason,omitempty"`
	Ledger       LedgerView          `json:"ledger"`
	OccurredAt   time.Time           `json:"occurred_at"`
}

// NewStockAdjustedEvent monta o evento a partir do registro de auditoria e do estado confirmado.
func NewStockAdjustedEvent(adj Adjustment, ledger StockLedger) StockAdjustedEvent {
	return StockAdjustedEvent{
		AdjustmentID: adj.ID,
		ProductID:    adj.ProductID,
		Operation:    adj.Operation,
		Amount:       adj.Amount,
		Reason:       adj.Reason,
		Ledger:       ledger.View(),
		OccurredAt:   adj.CreatedAt,
	}
}
