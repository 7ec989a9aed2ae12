package repository

import (
	"context"
	"errors"

	"caixapos/internal/dto"
	"caixapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProdutoRepository defines the data access contract for products. Services
// depend on this interface, not on the concrete GORM implementation.
type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	// FindByCodigo matches either the internal code or the barcode, active only.
	FindByCodigo(ctx context.Context, codigo string) (*model.Produto, error)
	List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error)
	Update(ctx context.Context, p *model.Produto) error
	Desativar(ctx context.Context, id uuid.UUID) error
	EstoqueBaixo(ctx context.Context) ([]model.Produto, error)
	// AjustarEstoque applies a signed delta under a row lock and appends the
	// immutable stock-ledger entry in the same transaction.
	AjustarEstoque(ctx context.Context, id uuid.UUID, delta int, motivo string) (*model.Produto, error)
}

// ErrEstoqueNegativo is returned by AjustarEstoque when the delta would take
// the stock below zero. A distinct sentinel so an unrelated check-constraint
// violation in the same transaction is not misread as a stock rejection.
var ErrEstoqueNegativo = errors.New("ajuste levaria o estoque abaixo de zero")

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).
		Where("(codigo = ? OR codigo_barras = ?) AND ativo = true", codigo, codigo).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var produtos []model.Produto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Produto{})

	switch filter.Ativo {
	case "false":
		q = q.Where("ativo = false")
	case "all":
		// no filter
	default:
		q = q.Where("ativo = true")
	}
	if filter.Busca != "" {
		like := "%" + filter.Busca + "%"
		q = q.Where("nome ILIKE ? OR codigo LIKE ? OR codigo_barras LIKE ?", like, like, like)
	}
	if filter.Categoria != "" && filter.Categoria != "todas" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Pagina - 1) * filter.Limite
	err := q.Order("nome ASC").Limit(filter.Limite).Offset(offset).Find(&produtos).Error
	return produtos, total, err
}

func (r *produtoRepo) Update(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *produtoRepo) Desativar(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Produto{}).
		Where("id = ?", id).Update("ativo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *produtoRepo) EstoqueBaixo(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).
		Where("estoque <= estoque_minimo AND ativo = true").
		Order("estoque ASC").
		Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) AjustarEstoque(ctx context.Context, id uuid.UUID, delta int, motivo string) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, id).Error; err != nil {
			return err
		}
		novo := p.Estoque + delta
		if novo < 0 {
			return ErrEstoqueNegativo
		}
		mov := &model.MovimentoEstoque{
			ProdutoID:       p.ID,
			Quantidade:      delta,
			EstoqueAnterior: p.Estoque,
			EstoqueNovo:     novo,
			Motivo:          motivo,
		}
		if err := tx.Create(mov).Error; err != nil {
			return err
		}
		p.Estoque = novo
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
