package domain

import (
	"time"
)

// Category agrupa produtos do catálogo. Remover uma categoria remove seus produtos.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" example:"Eletrônicos"`
	Description string    `json:"description" example:"Dispositivos e acessórios"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product representa o item principal do catálogo.
// O ledger de estoque referencia Product.ID e é removido junto com o produto.
type Product struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	SKU         string    `json:"sku" example:"SKU-0001"` // Stock Keeping Unit (código único de produto)
	Name        string    `json:"name" example:"Teclado mecânico"`
	Description string    `json:"description"`
	Price       float64   `json:"price" example:"249.90"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
