package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit action identifiers.
const (
	AcaoCaixaLimparAbertos = "caixa.limpar_abertos"
)

// RegistroAuditoria records who invoked an administrative/recovery operation
// and when. Written in the same transaction as the operation it audits.
type RegistroAuditoria struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;index"`
	Acao      string    `gorm:"not null"`
	Detalhe   string
	CreatedAt time.Time
}

// TableName overrides GORM's default pluralization.
func (RegistroAuditoria) TableName() string { return "registros_auditoria" }
