package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caixapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CaixaRepository is the data-access contract for register sessions. The
// storage layer — not application reads — arbitrates the one-open-caixa
// invariant: Create loses a concurrent duplicate race with
// gorm.ErrDuplicatedKey (partial unique index), and FecharAberto locks the
// open row so a close cannot miss a session created microseconds earlier.
type CaixaRepository interface {
	Create(ctx context.Context, c *model.Caixa) error
	// FindAbertoPorUsuario returns (nil, nil) when the operator has no open caixa.
	FindAbertoPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Caixa, error)
	// FecharAberto closes the operator's open caixa inside a transaction with a
	// row lock. Returns gorm.ErrRecordNotFound when none is open.
	FecharAberto(ctx context.Context, usuarioID uuid.UUID, saldoFinal decimal.Decimal, quando time.Time) (*model.Caixa, error)
	// FecharTodosAbertos closes every open caixa for the operator with
	// saldoFinal 0 and writes the audit record in the same transaction.
	FecharTodosAbertos(ctx context.Context, usuarioID uuid.UUID, quando time.Time) (int64, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) Create(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *caixaRepo) FindAbertoPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND status = ?", usuarioID, model.CaixaAberto).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caixaRepo) FecharAberto(ctx context.Context, usuarioID uuid.UUID, saldoFinal decimal.Decimal, quando time.Time) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SELECT … FOR UPDATE serializes against a concurrent open or close
		// for the same operator.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("usuario_id = ? AND status = ?", usuarioID, model.CaixaAberto).
			First(&c).Error; err != nil {
			return err
		}
		c.Status = model.CaixaFechado
		c.SaldoFinal = &saldoFinal
		c.DataFechamento = &quando
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caixaRepo) FecharTodosAbertos(ctx context.Context, usuarioID uuid.UUID, quando time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Caixa{}).
			Where("usuario_id = ? AND status = ?", usuarioID, model.CaixaAberto).
			Updates(map[string]interface{}{
				"status":          model.CaixaFechado,
				"saldo_final":     decimal.Zero,
				"data_fechamento": quando,
			})
		if res.Error != nil {
			return res.Error
		}
		count = res.RowsAffected

		// Audit row lives or dies with the bulk close.
		reg := &model.RegistroAuditoria{
			UsuarioID: usuarioID,
			Acao:      model.AcaoCaixaLimparAbertos,
			Detalhe:   fmt.Sprintf("%d caixa(s) fechado(s)", count),
		}
		return tx.Create(reg).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
