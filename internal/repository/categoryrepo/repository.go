package categoryrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockledger/internal/domain"
	"stockledger/internal/errors"
	"stockledger/internal/pkg/database"
	"stockledger/internal/pkg/logger"
)

// CategoryRepository implementa as operações CRUD de categorias do catálogo.
type CategoryRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCategoryRepository cria e retorna uma nova instância do Repositório de Categorias.
func NewCategoryRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// CreateCategory insere uma nova categoria. Nome repetido vira ConflictError.
func (r *CategoryRepository) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	r.logger.Debug("Iniciando CreateCategory no repositório.", map[string]interface{}{"name": category.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `
        INSERT INTO categories (id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, name, description, created_at, updated_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		category.ID, category.Name, category.Description, category.CreatedAt, category.UpdatedAt,
	).Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir categoria no DB.", err)
		return domain.Category{}, database.TranslateError(fmt.Sprintf("Categoria %q não pôde ser criada", category.Name), err)
	}

	r.logger.Info("Categoria criada com sucesso.", map[string]interface{}{"id": category.ID, "name": category.Name})
	return category, nil
}

// GetCategoryByID busca uma categoria pelo ID.
func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, description, created_at, updated_at
        FROM categories
        WHERE id = $1`

	var category domain.Category
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		r.logger.Info("Categoria não encontrada.", map[string]interface{}{"id": id})
		return domain.Category{}, errors.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar categoria no DB.", err)
		return domain.Category{}, database.TranslateError("Falha ao buscar categoria", err)
	}
	return category, nil
}

// GetAllCategories busca todas as categorias, ordenadas por nome.
func (r *CategoryRepository) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, description, created_at, updated_at
        FROM categories
        ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar GetAllCategories query.", err)
		return nil, database.TranslateError("Falha ao buscar todas as categorias", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt); err != nil {
			r.logger.Error("Falha ao mapear categoria na iteração de GetAllCategories.", err)
			return nil, errors.NewDBError("Falha ao mapear categorias do DB", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError("Erro após iteração de categorias", err)
	}

	r.logger.Debug("GetAllCategories concluído.", map[string]interface{}{"total_categories": len(categories)})
	return categories, nil
}

// UpdateCategory atualiza nome e descrição.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	category.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE categories
        SET name = $1, description = $2, updated_at = $3
        WHERE id = $4
        RETURNING id, name, description, created_at, updated_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		category.Name, category.Description, category.UpdatedAt, category.ID,
	).Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.Category{}, errors.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada para atualização.", category.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar categoria no DB.", err)
		return domain.Category{}, database.TranslateError("Falha ao atualizar categoria", err)
	}

	r.logger.Info("Categoria atualizada com sucesso.", map[string]interface{}{"id": category.ID, "name": category.Name})
	return category, nil
}

// DeleteCategory remove a categoria. Produtos (e seus ledgers) são removidos por cascata.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar categoria do DB.", err)
		return database.TranslateError("Falha ao deletar categoria", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada para exclusão.", id))
	}

	r.logger.Info("Categoria deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}
