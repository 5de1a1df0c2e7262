package ledgerrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stockledger/internal/domain"
	"stockledger/internal/errors"
	"stockledger/internal/pkg/database"
	"stockledger/internal/pkg/logger"
)

const ledgerColumns = `product_id, quantity, reserved_quantity, min_stock_level, max_stock_level, warehouse_location, created_at, updated_at`

// PostgresRepository persiste os ledgers em stock_ledgers e o log de auditoria em stock_adjustments.
// Toda mutação roda em uma transação com SELECT ... FOR UPDATE na linha do produto.
type PostgresRepository struct {
	DB          *sql.DB
	DBTimeout   time.Duration
	LockTimeout time.Duration
	logger      logger.Logger
}

// NewPostgresRepository cria e retorna uma nova instância do Repositório de Ledgers.
func NewPostgresRepository(db *sql.DB, dbTimeout, lockTimeout time.Duration, logger logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		DB:          db,
		DBTimeout:   dbTimeout,
		LockTimeout: lockTimeout,
		logger:      logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLedger(row rowScanner) (domain.StockLedger, error) {
	var l domain.StockLedger
	err := row.Scan(
		&l.ProductID, &l.Quantity, &l.ReservedQuantity, &l.MinStockLevel, &l.MaxStockLevel,
		&l.WarehouseLocation, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// Create insere um novo ledger. Ledger duplicado vira ConflictError; produto inexistente vira NotFoundError.
func (r *PostgresRepository) Create(ctx context.Context, ledger domain.StockLedger) (domain.StockLedger, error) {
	r.logger.Debug("Iniciando Create de ledger no repositório.", map[string]interface{}{"product_id": ledger.ProductID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO stock_ledgers (` + ledgerColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + ledgerColumns

	created, err := scanLedger(r.DB.QueryRowContext(ctxTimeout, query,
		ledger.ProductID, ledger.Quantity, ledger.ReservedQuantity, ledger.MinStockLevel, ledger.MaxStockLevel,
		ledger.WarehouseLocation, ledger.CreatedAt, ledger.UpdatedAt,
	))
	if err != nil {
		r.logger.Error("Falha ao inserir ledger no DB.", err)
		return domain.StockLedger{}, database.TranslateError(fmt.Sprintf("Ledger do produto %s não pôde ser criado", ledger.ProductID), err)
	}

	r.logger.Info("Ledger criado com sucesso.", map[string]interface{}{"product_id": created.ProductID, "quantity": created.Quantity})
	return created, nil
}

// FindByProductID lê a linha atual do ledger (sem cache).
func (r *PostgresRepository) FindByProductID(ctx context.Context, productID string) (domain.StockLedger, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + ledgerColumns + ` FROM stock_ledgers WHERE product_id = $1`

	ledger, err := scanLedger(r.DB.QueryRowContext(ctxTimeout, query, productID))
	if err == sql.ErrNoRows {
		return domain.StockLedger{}, errors.NewNotFoundError(fmt.Sprintf("Ledger de estoque para o produto %s não encontrado.", productID))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar ledger no DB.", err)
		return domain.StockLedger{}, database.TranslateError("Falha ao buscar ledger", err)
	}
	return ledger, nil
}

// Mutate executa apply com a linha do ledger bloqueada e grava o resultado e a auditoria
// na mesma transação. Se apply falhar, a transação é desfeita e nada muda.
func (r *PostgresRepository) Mutate(ctx context.Context, productID string, apply domain.MutationFunc) (domain.StockLedger, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação para mutação de ledger.", err)
		return domain.StockLedger{}, database.TranslateError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	// SET não aceita parâmetros; o valor vem da configuração e é inteiro.
	if r.LockTimeout > 0 {
		if _, err = tx.ExecContext(ctxTimeout, fmt.Sprintf("SET LOCAL lock_timeout = %d", r.LockTimeout.Milliseconds())); err != nil {
			return domain.StockLedger{}, database.TranslateError("Falha ao configurar lock_timeout", err)
		}
	}

	query := `SELECT ` + ledgerColumns + ` FROM stock_ledgers WHERE product_id = $1 FOR UPDATE`
	ledger, err := scanLedger(tx.QueryRowContext(ctxTimeout, query, productID))
	if err == sql.ErrNoRows {
		return domain.StockLedger{}, errors.NewNotFoundError(fmt.Sprintf("Ledger de estoque para o produto %s não encontrado.", productID))
	}
	if err != nil {
		r.logger.Error("Falha ao bloquear ledger para mutação.", err)
		return domain.StockLedger{}, database.TranslateError("Ledger ocupado ou indisponível", err)
	}

	adj, err := apply(&ledger)
	if err != nil {
		return domain.StockLedger{}, err
	}

	update := `
        UPDATE stock_ledgers
        SET quantity = $1, reserved_quantity = $2, min_stock_level = $3, max_stock_level = $4,
            warehouse_location = $5, updated_at = $6
        WHERE product_id = $7`
	if _, err = tx.ExecContext(ctxTimeout, update,
		ledger.Quantity, ledger.ReservedQuantity, ledger.MinStockLevel, ledger.MaxStockLevel,
		ledger.WarehouseLocation, ledger.UpdatedAt, productID,
	); err != nil {
		r.logger.Error("Falha ao atualizar ledger.", err)
		return domain.StockLedger{}, database.TranslateError("Falha ao atualizar ledger", err)
	}

	if adj != nil {
		if err = insertAdjustment(ctxTimeout, tx, *adj); err != nil {
			r.logger.Error("Falha ao gravar auditoria do ajuste.", err)
			return domain.StockLedger{}, database.TranslateError("Falha ao gravar auditoria do ajuste", err)
		}
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar mutação de ledger.", err)
		return domain.StockLedger{}, database.TranslateError("Falha ao commitar transação", err)
	}

	return ledger, nil
}

func insertAdjustment(ctx context.Context, tx *sql.Tx, adj domain.Adjustment) error {
	query := `
        INSERT INTO stock_adjustments
            (id, product_id, operation, amount, quantity_before, quantity_after, reserved_before, reserved_after, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := tx.ExecContext(ctx, query,
		adj.ID, adj.ProductID, string(adj.Operation), adj.Amount,
		adj.QuantityBefore, adj.QuantityAfter, adj.ReservedBefore, adj.ReservedAfter,
		adj.Reason, adj.CreatedAt,
	)
	return err
}

// Delete remove o ledger (e, por cascata, sua auditoria).
func (r *PostgresRepository) Delete(ctx context.Context, productID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM stock_ledgers WHERE product_id = $1`, productID)
	if err != nil {
		r.logger.Error("Falha ao deletar ledger do DB.", err)
		return database.TranslateError("Falha ao deletar ledger", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Ledger de estoque para o produto %s não encontrado.", productID))
	}

	r.logger.Info("Ledger deletado com sucesso.", map[string]interface{}{"product_id": productID})
	return nil
}

// ListLowStock devolve os ledgers com 0 < quantity <= min_stock_level, do menor para o maior.
func (r *PostgresRepository) ListLowStock(ctx context.Context) ([]domain.StockLedger, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + ledgerColumns + `
        FROM stock_ledgers
        WHERE quantity <= min_stock_level AND quantity > 0
        ORDER BY quantity ASC, product_id ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar ListLowStock query.", err)
		return nil, database.TranslateError("Falha ao listar estoque baixo", err)
	}
	defer rows.Close()

	ledgers := []domain.StockLedger{}
	for rows.Next() {
		ledger, err := scanLedger(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear ledgers do DB", err)
		}
		ledgers = append(ledgers, ledger)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError("Erro após iteração de ledgers", err)
	}
	return ledgers, nil
}

// seq é atribuído no INSERT, dentro da transação que segura o lock do ledger,
// então segue a ordem de aplicação mesmo quando created_at empata.
const listAdjustmentsQuery = `
        SELECT id, product_id, operation, amount, quantity_before, quantity_after, reserved_before, reserved_after, reason, created_at
        FROM stock_adjustments
        WHERE product_id = $1
        ORDER BY seq DESC
        LIMIT $2`

// ListAdjustments devolve o histórico do produto, do mais recente para o mais antigo.
func (r *PostgresRepository) ListAdjustments(ctx context.Context, productID string, limit int) ([]domain.Adjustment, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, listAdjustmentsQuery, productID, limit)
	if err != nil {
		r.logger.Error("Falha ao executar ListAdjustments query.", err)
		return nil, database.TranslateError("Falha ao listar ajustes", err)
	}
	defer rows.Close()

	adjustments := []domain.Adjustment{}
	for rows.Next() {
		var a domain.Adjustment
		var op string
		if err := rows.Scan(&a.ID, &a.ProductID, &op, &a.Amount, &a.QuantityBefore, &a.QuantityAfter,
			&a.ReservedBefore, &a.ReservedAfter, &a.Reason, &a.CreatedAt); err != nil {
			return nil, errors.NewDBError("Falha ao mapear ajustes do DB", err)
		}
		a.Operation = domain.AdjustmentOperation(op)
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError("Erro após iteração de ajustes", err)
	}
	return adjustments, nil
}
