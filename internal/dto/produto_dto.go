package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarProdutoRequest struct {
	Nome          string           `json:"nome"          validate:"required,min=2,max=150"`
	Codigo        string           `json:"codigo"        validate:"omitempty,max=50"`
	CodigoBarras  string           `json:"codigoBarras"  validate:"omitempty,max=50"`
	Categoria     string           `json:"categoria"     validate:"required,max=80"`
	Preco         decimal.Decimal  `json:"preco"         validate:"min=0"`
	Custo         *decimal.Decimal `json:"custo"`
	Estoque       int              `json:"estoque"       validate:"min=0"`
	EstoqueMinimo *int             `json:"estoqueMinimo" validate:"omitempty,min=0"`
	Imagem        *string          `json:"imagem"`
}

type AtualizarProdutoRequest struct {
	Nome          *string          `json:"nome"          validate:"omitempty,min=2,max=150"`
	Categoria     *string          `json:"categoria"     validate:"omitempty,max=80"`
	Preco         *decimal.Decimal `json:"preco"`
	Custo         *decimal.Decimal `json:"custo"`
	Estoque       *int             `json:"estoque"       validate:"omitempty,min=0"`
	EstoqueMinimo *int             `json:"estoqueMinimo" validate:"omitempty,min=0"`
	Imagem        *string          `json:"imagem"`
	Ativo         *bool            `json:"ativo"`
}

type AjustarEstoqueRequest struct {
	Quantidade int    `json:"quantidade" validate:"required"`
	Motivo     string `json:"motivo"     validate:"required,min=3"`
}

// ProdutoFilter carries query-string filters for listing.
type ProdutoFilter struct {
	Pagina    int
	Limite    int
	Busca     string
	Categoria string
	Ativo     string // "true" (default) | "false" | "all"
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoResponse struct {
	ID            string           `json:"id"`
	Nome          string           `json:"nome"`
	Codigo        string           `json:"codigo"`
	CodigoBarras  string           `json:"codigoBarras"`
	Categoria     string           `json:"categoria"`
	Preco         decimal.Decimal  `json:"preco"`
	Custo         *decimal.Decimal `json:"custo"`
	Estoque       int              `json:"estoque"`
	EstoqueMinimo int              `json:"estoqueMinimo"`
	Imagem        *string          `json:"imagem"`
	Ativo         bool             `json:"ativo"`
}

// ProdutoEnvelope wraps single-product responses; Message is set on writes.
type ProdutoEnvelope struct {
	Message string           `json:"message,omitempty"`
	Produto *ProdutoResponse `json:"produto"`
}

type Paginacao struct {
	Pagina       int   `json:"pagina"`
	Limite       int   `json:"limite"`
	Total        int64 `json:"total"`
	TotalPaginas int   `json:"totalPaginas"`
}

type ProdutoListResponse struct {
	Produtos  []ProdutoResponse `json:"produtos"`
	Paginacao Paginacao         `json:"paginacao"`
}
