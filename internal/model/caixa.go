package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caixa status values.
const (
	CaixaAberto  = "aberto"
	CaixaFechado = "fechado"
)

// Caixa is one operator's cash-drawer working period, bounded by an open and
// a close event. At most one row per usuario may be "aberto" at any instant —
// the invariant is enforced by a partial unique index on (usuario_id) WHERE
// status = 'aberto' (see infra schema patches), not by application reads.
// A closed caixa is terminal: reopening means creating a new row.
type Caixa struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ValorInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// SaldoFinal is declared by the operator at close; nil while open.
	SaldoFinal     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status         string           `gorm:"type:varchar(10);not null;default:'aberto'"`
	DataAbertura   time.Time        `gorm:"not null"`
	DataFechamento *time.Time
}
