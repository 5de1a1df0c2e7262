package categoryservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"stockledger/internal/domain"
	apperror "stockledger/internal/errors"
	"stockledger/internal/pkg/logger"
)

// CategoryRepository define o contrato que o Serviço de Categorias espera da camada de Persistência.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// Service implementa as regras de negócio de categorias.
type Service struct {
	repo   CategoryRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Categorias.
func NewService(repo CategoryRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateCategory cria uma nova categoria após validações de negócio.
func (s *Service) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	s.logger.Debug("Iniciando criação de categoria no serviço.", map[string]interface{}{"name": category.Name})

	category.Name = strings.TrimSpace(category.Name)
	if err := s.validateCategoryName(category.Name); err != nil {
		s.logger.Warn("Falha na validação do nome da categoria.", map[string]interface{}{"name": category.Name, "error": err.Error()})
		return domain.Category{}, err
	}

	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		s.logger.Error("Falha ao criar categoria no repositório.", err)
		return domain.Category{}, err
	}

	s.logger.Info("Categoria criada com sucesso.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// GetCategoryByID busca uma categoria pelo ID após validações de formato.
func (s *Service) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		s.logger.Warn("ID de categoria inválido fornecido.", map[string]interface{}{"id": id, "error": err.Error()})
		return domain.Category{}, apperror.NewValidationError("O ID da categoria deve ser um UUID válido.")
	}

	return s.repo.GetCategoryByID(ctx, id)
}

// GetAllCategories busca todas as categorias.
func (s *Service) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.GetAllCategories(ctx)
	if err != nil {
		s.logger.Error("Falha ao buscar todas as categorias no repositório.", err)
		return nil, err
	}
	return categories, nil
}

// UpdateCategory atualiza uma categoria existente.
func (s *Service) UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	if _, err := uuid.Parse(category.ID); err != nil {
		return domain.Category{}, apperror.NewValidationError("O ID da categoria deve ser um UUID válido.")
	}
	category.Name = strings.TrimSpace(category.Name)
	if err := s.validateCategoryName(category.Name); err != nil {
		return domain.Category{}, err
	}

	updated, err := s.repo.UpdateCategory(ctx, category)
	if err != nil {
		s.logger.Error("Falha ao atualizar categoria no repositório.", err)
		return domain.Category{}, err
	}

	s.logger.Info("Categoria atualizada com sucesso.", map[string]interface{}{"id": updated.ID, "name": updated.Name})
	return updated, nil
}

// DeleteCategory remove uma categoria (e, em cascata, seus produtos e ledgers).
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da categoria deve ser um UUID válido.")
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		s.logger.Error("Falha ao deletar categoria no repositório.", err)
		return err
	}

	s.logger.Info("Categoria deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}

func (s *Service) validateCategoryName(name string) error {
	if name == "" {
		return apperror.NewValidationError("O nome da categoria não pode ser vazio.")
	}
	if len(name) > 100 {
		return apperror.NewValidationError("O nome da categoria deve ter no máximo 100 caracteres.")
	}
	return nil
}
