package ledgerrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stockledger/internal/domain"
	"stockledger/internal/errors"
)

// MemoryRepository guarda ledgers em memória. Cada produto tem seu próprio lock exclusivo,
// então mutações de produtos diferentes não se bloqueiam.
type MemoryRepository struct {
	mu          sync.RWMutex
	ledgers     map[string]*memoryEntry
	adjustments map[string][]domain.Adjustment
}

type memoryEntry struct {
	// sem tem capacidade 1: enviar adquire, receber libera. Permite desistir pelo ctx.
	sem    chan struct{}
	ledger domain.StockLedger
	gone   bool
}

// NewMemoryRepository cria um repositório vazio.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		ledgers:     make(map[string]*memoryEntry),
		adjustments: make(map[string][]domain.Adjustment),
	}
}

func notFound(productID string) error {
	return errors.NewNotFoundError(fmt.Sprintf("Ledger de estoque para o produto %s não encontrado.", productID))
}

func (r *MemoryRepository) entry(productID string) (*memoryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.ledgers[productID]
	return e, ok
}

// lock adquire o lock do produto ou desiste quando o contexto expira.
func (e *memoryEntry) lock(ctx context.Context) error {
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.NewTransientError("Tempo esgotado aguardando o lock do ledger", ctx.Err())
	}
}

func (e *memoryEntry) unlock() {
	<-e.sem
}

func (r *MemoryRepository) Create(_ context.Context, ledger domain.StockLedger) (domain.StockLedger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ledgers[ledger.ProductID]; exists {
		return domain.StockLedger{}, errors.NewConflictError(fmt.Sprintf("Já existe um ledger para o produto %s.", ledger.ProductID))
	}
	r.ledgers[ledger.ProductID] = &memoryEntry{sem: make(chan struct{}, 1), ledger: ledger}
	return ledger, nil
}

// FindByProductID devolve uma cópia consistente do ledger.
func (r *MemoryRepository) FindByProductID(ctx context.Context, productID string) (domain.StockLedger, error) {
	e, ok := r.entry(productID)
	if !ok {
		return domain.StockLedger{}, notFound(productID)
	}
	if err := e.lock(ctx); err != nil {
		return domain.StockLedger{}, err
	}
	defer e.unlock()
	if e.gone {
		return domain.StockLedger{}, notFound(productID)
	}
	return e.ledger, nil
}

func (r *MemoryRepository) Mutate(ctx context.Context, productID string, apply domain.MutationFunc) (domain.StockLedger, error) {
	e, ok := r.entry(productID)
	if !ok {
		return domain.StockLedger{}, notFound(productID)
	}
	if err := e.lock(ctx); err != nil {
		return domain.StockLedger{}, err
	}
	defer e.unlock()
	if e.gone {
		return domain.StockLedger{}, notFound(productID)
	}

	working := e.ledger
	adj, err := apply(&working)
	if err != nil {
		return domain.StockLedger{}, err
	}
	e.ledger = working

	if adj != nil {
		r.mu.Lock()
		r.adjustments[productID] = append(r.adjustments[productID], *adj)
		r.mu.Unlock()
	}
	return working, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, productID string) error {
	e, ok := r.entry(productID)
	if !ok {
		return notFound(productID)
	}
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()
	if e.gone {
		return notFound(productID)
	}
	e.gone = true

	r.mu.Lock()
	delete(r.ledgers, productID)
	delete(r.adjustments, productID)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) ListLowStock(ctx context.Context) ([]domain.StockLedger, error) {
	r.mu.RLock()
	entries := make([]*memoryEntry, 0, len(r.ledgers))
	for _, e := range r.ledgers {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	result := []domain.StockLedger{}
	for _, e := range entries {
		if err := e.lock(ctx); err != nil {
			return nil, err
		}
		l, gone := e.ledger, e.gone
		e.unlock()
		if !gone && l.IsLowStock() {
			result = append(result, l)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Quantity != result[j].Quantity {
			return result[i].Quantity < result[j].Quantity
		}
		return result[i].ProductID < result[j].ProductID
	})
	return result, nil
}

func (r *MemoryRepository) ListAdjustments(_ context.Context, productID string, limit int) ([]domain.Adjustment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.adjustments[productID]
	result := make([]domain.Adjustment, 0, min(limit, len(history)))
	for i := len(history) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, history[i])
	}
	return result, nil
}
