package ledgerservice

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"stockledger/internal/domain"
	apperror "stockledger/internal/errors"
	"stockledger/internal/pkg/events"
	"stockledger/internal/pkg/logger"
	"stockledger/internal/pkg/metrics"
)

// Limites da listagem de auditoria.
const (
	DefaultAdjustmentsLimit = 50
	MaxAdjustmentsLimit     = 500
)

// LedgerRepository define o contrato que o serviço espera da camada de persistência.
// Mutate deve serializar chamadas para o mesmo productID e aplicar a MutationFunc
// de forma atômica junto com a gravação da auditoria.
type LedgerRepository interface {
	Create(ctx context.Context, ledger domain.StockLedger) (domain.StockLedger, error)
	FindByProductID(ctx context.Context, productID string) (domain.StockLedger, error)
	Mutate(ctx context.Context, productID string, apply domain.MutationFunc) (domain.StockLedger, error)
	Delete(ctx context.Context, productID string) error
	ListLowStock(ctx context.Context) ([]domain.StockLedger, error)
	ListAdjustments(ctx context.Context, productID string, limit int) ([]domain.Adjustment, error)
}

// CatalogGateway responde se um produto existe no catálogo. O serviço nunca altera o catálogo.
type CatalogGateway interface {
	ProductExists(ctx context.Context, productID string) (bool, error)
}

// Service implementa o motor de ajustes, a consulta de disponibilidade e o scanner de estoque baixo.
type Service struct {
	repo      LedgerRepository
	catalog   CatalogGateway
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    logger.Logger
	now       func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Ledger.
func NewService(repo LedgerRepository, catalog CatalogGateway, publisher events.Publisher, m *metrics.Metrics, logger logger.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock substitui o relógio do serviço. Usado em testes.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func validateProductID(productID string) error {
	if _, err := uuid.Parse(productID); err != nil {
		return apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	return nil
}

// CreateLedger cria o ledger de um produto existente. Falha com NotFound se o produto
// não existir e com Conflict se já houver um ledger para ele.
func (s *Service) CreateLedger(ctx context.Context, req domain.CreateLedgerRequest) (domain.LedgerView, error) {
	s.logger.Debug("Iniciando criação de ledger no serviço.", map[string]interface{}{"product_id": req.ProductID})

	if err := validateProductID(req.ProductID); err != nil {
		return domain.LedgerView{}, err
	}
	ledger, err := domain.NewLedger(req, s.now())
	if err != nil {
		s.logger.Warn("Falha na validação do ledger.", map[string]interface{}{"product_id": req.ProductID, "error": err.Error()})
		return domain.LedgerView{}, err
	}

	exists, err := s.catalog.ProductExists(ctx, req.ProductID)
	if err != nil {
		s.logger.Error("Falha ao consultar o catálogo.", err)
		return domain.LedgerView{}, err
	}
	if !exists {
		return domain.LedgerView{}, apperror.NewNotFoundError("Produto " + req.ProductID + " não existe no catálogo.")
	}

	// Verificação explícita para devolver um conflito de domínio; a constraint do banco cobre a corrida.
	_, err = s.repo.FindByProductID(ctx, req.ProductID)
	if err == nil {
		s.logger.Warn("Ledger já existe para o produto.", map[string]interface{}{"product_id": req.ProductID})
		return domain.LedgerView{}, apperror.NewConflictError("Já existe um ledger de estoque para o produto " + req.ProductID + ".")
	}
	var notFound *apperror.NotFoundError
	if !stderrors.As(err, &notFound) {
		s.logger.Error("Falha ao verificar ledger existente.", err)
		return domain.LedgerView{}, err
	}

	created, err := s.repo.Create(ctx, ledger)
	if err != nil {
		s.logger.Error("Falha ao criar ledger no repositório.", err)
		return domain.LedgerView{}, err
	}

	s.logger.Info("Ledger criado com sucesso.", map[string]interface{}{"product_id": created.ProductID, "quantity": created.Quantity})
	return created.View(), nil
}

// GetLedger devolve a visão atual do ledger, sempre lida da linha persistida.
func (s *Service) GetLedger(ctx context.Context, productID string) (domain.LedgerView, error) {
	if err := validateProductID(productID); err != nil {
		return domain.LedgerView{}, err
	}
	ledger, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return domain.LedgerView{}, err
	}
	return ledger.View(), nil
}

// UpdateLedger aplica uma atualização parcial sob o mesmo lock exclusivo dos ajustes.
func (s *Service) UpdateLedger(ctx context.Context, productID string, req domain.UpdateLedgerRequest) (domain.LedgerView, error) {
	s.logger.Debug("Iniciando atualização de ledger no serviço.", map[string]interface{}{"product_id": productID})

	if err := validateProductID(productID); err != nil {
		return domain.LedgerView{}, err
	}

	var recorded *domain.Adjustment
	ledger, err := s.repo.Mutate(ctx, productID, func(l *domain.StockLedger) (*domain.Adjustment, error) {
		adj, err := l.ApplyUpdate(req, s.now())
		recorded = adj
		return adj, err
	})
	if err != nil {
		s.logErr("Falha ao atualizar ledger.", productID, err)
		return domain.LedgerView{}, err
	}

	if recorded != nil {
		s.publish(ctx, domain.NewStockAdjustedEvent(*recorded, ledger))
	}
	s.logger.Info("Ledger atualizado com sucesso.", map[string]interface{}{"product_id": productID, "quantity": ledger.Quantity})
	return ledger.View(), nil
}

// DeleteLedger remove o ledger do produto.
func (s *Service) DeleteLedger(ctx context.Context, productID string) error {
	if err := validateProductID(productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		s.logErr("Falha ao deletar ledger.", productID, err)
		return err
	}
	s.logger.Info("Ledger deletado com sucesso.", map[string]interface{}{"product_id": productID})
	return nil
}

// Reserve cria uma reserva contra a quantidade disponível.
func (s *Service) Reserve(ctx context.Context, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error) {
	return s.adjust(ctx, domain.OperationReserve, productID, req)
}

// Release devolve uma reserva à quantidade disponível.
func (s *Service) Release(ctx context.Context, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error) {
	return s.adjust(ctx, domain.OperationRelease, productID, req)
}

// Increase adiciona estoque físico. Não há limite superior.
func (s *Service) Increase(ctx context.Context, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error) {
	return s.adjust(ctx, domain.OperationIncrease, productID, req)
}

// Decrease remove estoque físico, limitado à quantidade disponível.
func (s *Service) Decrease(ctx context.Context, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error) {
	return s.adjust(ctx, domain.OperationDecrease, productID, req)
}

func (s *Service) adjust(ctx context.Context, op domain.AdjustmentOperation, productID string, req domain.AdjustmentRequest) (domain.LedgerView, error) {
	fields := map[string]interface{}{
		"product_id": productID,
		"operation":  string(op),
		"amount":     req.Quantity,
		"reason":     req.Reason,
	}
	s.logger.Debug("Iniciando ajuste de estoque.", fields)

	if err := validateProductID(productID); err != nil {
		return domain.LedgerView{}, err
	}
	if err := domain.ValidateAmount(req.Quantity); err != nil {
		return domain.LedgerView{}, err
	}

	start := time.Now()
	var recorded domain.Adjustment
	ledger, err := s.repo.Mutate(ctx, productID, func(l *domain.StockLedger) (*domain.Adjustment, error) {
		adj, err := l.Apply(op, req.Quantity, req.Reason, s.now())
		if err != nil {
			return nil, err
		}
		recorded = adj
		return &adj, nil
	})
	s.metrics.ObserveAdjustment(string(op), err, time.Since(start))
	if err != nil {
		s.logErr("Ajuste de estoque rejeitado.", productID, err)
		return domain.LedgerView{}, err
	}

	s.publish(ctx, domain.NewStockAdjustedEvent(recorded, ledger))

	fields["quantity"] = ledger.Quantity
	fields["reserved_quantity"] = ledger.ReservedQuantity
	s.logger.Info("Ajuste de estoque aplicado.", fields)
	return ledger.View(), nil
}

// CheckAvailability devolve um retrato pontual; não reserva nada.
func (s *Service) CheckAvailability(ctx context.Context, productID string, amount int) (domain.AvailabilityResult, error) {
	if err := validateProductID(productID); err != nil {
		return domain.AvailabilityResult{}, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return domain.AvailabilityResult{}, err
	}

	ledger, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return domain.AvailabilityResult{}, err
	}
	return ledger.CheckAvailability(amount), nil
}

// ListLowStock lista ledgers com 0 < quantity <= min_stock_level, em ordem crescente de quantidade.
// O filtro usa a quantidade bruta, não a disponível.
func (s *Service) ListLowStock(ctx context.Context) ([]domain.LedgerView, error) {
	ledgers, err := s.repo.ListLowStock(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar estoque baixo.", err)
		return nil, err
	}

	views := make([]domain.LedgerView, 0, len(ledgers))
	for _, l := range ledgers {
		views = append(views, l.View())
	}
	s.metrics.SetLowStock(len(views))
	s.logger.Info("Varredura de estoque baixo concluída.", map[string]interface{}{"count": len(views)})
	return views, nil
}

// ListAdjustments devolve o histórico de ajustes do produto, do mais recente para o mais antigo.
func (s *Service) ListAdjustments(ctx context.Context, productID string, limit int) ([]domain.Adjustment, error) {
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultAdjustmentsLimit
	case limit > MaxAdjustmentsLimit:
		limit = MaxAdjustmentsLimit
	}

	if _, err := s.repo.FindByProductID(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ListAdjustments(ctx, productID, limit)
}

// publish roda após o commit; falhas de publicação não desfazem o ajuste.
func (s *Service) publish(ctx context.Context, event domain.StockAdjustedEvent) {
	if err := s.publisher.PublishStockAdjusted(ctx, event); err != nil {
		s.logger.Error("Falha ao publicar evento de estoque.", err)
	}
}

// logErr registra erros de negócio como aviso e o resto como erro.
func (s *Service) logErr(msg, productID string, err error) {
	var appErr apperror.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Category() {
		case apperror.CategoryTransient, apperror.CategoryInternal:
		default:
			s.logger.Warn(msg, map[string]interface{}{"product_id": productID, "category": appErr.Category(), "error": err.Error()})
			return
		}
	}
	s.logger.Error(msg, err)
}
