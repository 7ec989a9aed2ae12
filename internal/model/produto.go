package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto is a catalog item. Codigo is the internal code typed at the
// register; CodigoBarras is the scanned barcode (defaults to Codigo when the
// product has no printed barcode).
type Produto struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome          string           `gorm:"not null"`
	Codigo        string           `gorm:"uniqueIndex;not null"`
	CodigoBarras  string           `gorm:"index"`
	Categoria     string           `gorm:"not null"`
	Preco         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Custo         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estoque       int              `gorm:"not null;default:0"`
	EstoqueMinimo int              `gorm:"not null;default:5"`
	Imagem        *string
	Ativo         bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MovimentoEstoque is an immutable entry in the stock ledger, written on every
// stock mutation. Entries are never updated or deleted.
type MovimentoEstoque struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantidade      int       `gorm:"not null"` // positive = entrada, negative = saída
	EstoqueAnterior int       `gorm:"not null"`
	EstoqueNovo     int       `gorm:"not null"`
	Motivo          string
	CreatedAt       time.Time
}

// TableName overrides GORM's default pluralization.
func (MovimentoEstoque) TableName() string { return "movimentos_estoque" }
