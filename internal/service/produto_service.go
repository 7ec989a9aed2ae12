package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/repository"
	"caixapos/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	codigoCacheTTL    = 60 * time.Second
	codigoCachePrefix = "produto:codigo:"
)

// ProdutoDispatcher is the slice of the worker dispatcher the product service
// uses. Satisfied by *worker.Dispatcher; nil disables job dispatch (tests).
type ProdutoDispatcher interface {
	EnqueueAlertaEstoque(ctx context.Context, payload worker.AlertaEstoqueJob) error
}

type ProdutoService interface {
	Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
	BuscarPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	// BuscarPorCodigo is the hot path at the register; reads go through a
	// short-TTL Redis cache.
	BuscarPorCodigo(ctx context.Context, codigo string) (*dto.ProdutoResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
	EstoqueBaixo(ctx context.Context) ([]dto.ProdutoResponse, error)
	AjustarEstoque(ctx context.Context, id uuid.UUID, req dto.AjustarEstoqueRequest) (*dto.ProdutoResponse, error)
}

type produtoService struct {
	repo repository.ProdutoRepository
	rdb  *redis.Client
	disp ProdutoDispatcher
}

func NewProdutoService(repo repository.ProdutoRepository, rdb *redis.Client, disp ProdutoDispatcher) ProdutoService {
	return &produtoService{repo: repo, rdb: rdb, disp: disp}
}

func (s *produtoService) Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	if req.Preco.IsNegative() {
		return nil, apierror.Validacao("Preço deve ser positivo")
	}

	codigo := req.Codigo
	if codigo == "" {
		codigo = fmt.Sprintf("PROD%d", time.Now().UnixMilli())
	}
	codigoBarras := req.CodigoBarras
	if codigoBarras == "" {
		codigoBarras = codigo
	}
	estoqueMinimo := 5
	if req.EstoqueMinimo != nil {
		estoqueMinimo = *req.EstoqueMinimo
	}

	p := &model.Produto{
		Nome:          req.Nome,
		Codigo:        codigo,
		CodigoBarras:  codigoBarras,
		Categoria:     req.Categoria,
		Preco:         req.Preco,
		Custo:         req.Custo,
		Estoque:       req.Estoque,
		EstoqueMinimo: estoqueMinimo,
		Imagem:        req.Imagem,
		Ativo:         true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.CodigoJaCadastrado()
		}
		log.Error().Err(err).Msg("create produto failed")
		return nil, apierror.Interno()
	}

	return produtoToResponse(p), nil
}

func (s *produtoService) Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	if filter.Pagina < 1 {
		filter.Pagina = 1
	}
	if filter.Limite < 1 || filter.Limite > 100 {
		filter.Limite = 10
	}

	produtos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("list produtos failed")
		return nil, apierror.Interno()
	}

	resp := &dto.ProdutoListResponse{
		Produtos: make([]dto.ProdutoResponse, len(produtos)),
		Paginacao: dto.Paginacao{
			Pagina:       filter.Pagina,
			Limite:       filter.Limite,
			Total:        total,
			TotalPaginas: int(math.Ceil(float64(total) / float64(filter.Limite))),
		},
	}
	for i := range produtos {
		resp.Produtos[i] = *produtoToResponse(&produtos[i])
	}
	return resp, nil
}

func (s *produtoService) BuscarPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NaoEncontrado("Produto não encontrado")
		}
		log.Error().Err(err).Msg("find produto failed")
		return nil, apierror.Interno()
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) BuscarPorCodigo(ctx context.Context, codigo string) (*dto.ProdutoResponse, error) {
	if cached := s.cacheGet(ctx, codigo); cached != nil {
		return cached, nil
	}

	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NaoEncontrado("Produto não encontrado")
		}
		log.Error().Err(err).Msg("find produto by codigo failed")
		return nil, apierror.Interno()
	}

	resp := produtoToResponse(p)
	s.cacheSet(ctx, codigo, resp)
	return resp, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NaoEncontrado("Produto não encontrado")
		}
		log.Error().Err(err).Msg("find produto failed")
		return nil, apierror.Interno()
	}

	if req.Nome != nil {
		p.Nome = *req.Nome
	}
	if req.Categoria != nil {
		p.Categoria = *req.Categoria
	}
	if req.Preco != nil {
		if req.Preco.IsNegative() {
			return nil, apierror.Validacao("Preço deve ser positivo")
		}
		p.Preco = *req.Preco
	}
	if req.Custo != nil {
		p.Custo = req.Custo
	}
	if req.Estoque != nil {
		p.Estoque = *req.Estoque
	}
	if req.EstoqueMinimo != nil {
		p.EstoqueMinimo = *req.EstoqueMinimo
	}
	if req.Imagem != nil {
		p.Imagem = req.Imagem
	}
	if req.Ativo != nil {
		p.Ativo = *req.Ativo
	}

	if err := s.repo.Update(ctx, p); err != nil {
		log.Error().Err(err).Msg("update produto failed")
		return nil, apierror.Interno()
	}

	s.cacheInvalidate(ctx, p)
	return produtoToResponse(p), nil
}

func (s *produtoService) Desativar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NaoEncontrado("Produto não encontrado")
		}
		log.Error().Err(err).Msg("find produto failed")
		return apierror.Interno()
	}
	if err := s.repo.Desativar(ctx, id); err != nil {
		log.Error().Err(err).Msg("deactivate produto failed")
		return apierror.Interno()
	}
	s.cacheInvalidate(ctx, p)
	return nil
}

func (s *produtoService) EstoqueBaixo(ctx context.Context) ([]dto.ProdutoResponse, error) {
	produtos, err := s.repo.EstoqueBaixo(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list low-stock produtos failed")
		return nil, apierror.Interno()
	}
	resp := make([]dto.ProdutoResponse, len(produtos))
	for i := range produtos {
		resp[i] = *produtoToResponse(&produtos[i])
	}
	return resp, nil
}

// AjustarEstoque applies a signed stock delta (plain decrement/increment, no
// reservations). Crossing below the minimum dispatches a low-stock alert.
func (s *produtoService) AjustarEstoque(ctx context.Context, id uuid.UUID, req dto.AjustarEstoqueRequest) (*dto.ProdutoResponse, error) {
	p, err := s.repo.AjustarEstoque(ctx, id, req.Quantidade, req.Motivo)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apierror.NaoEncontrado("Produto não encontrado")
		case errors.Is(err, repository.ErrEstoqueNegativo):
			return nil, apierror.EstoqueInsuficiente()
		}
		log.Error().Err(err).Msg("adjust estoque failed")
		return nil, apierror.Interno()
	}

	s.cacheInvalidate(ctx, p)

	anterior := p.Estoque - req.Quantidade
	if p.Estoque < p.EstoqueMinimo && anterior >= p.EstoqueMinimo {
		s.enqueueAlerta(ctx, p)
	}

	return produtoToResponse(p), nil
}

func (s *produtoService) enqueueAlerta(ctx context.Context, p *model.Produto) {
	if s.disp == nil {
		return
	}
	job := worker.AlertaEstoqueJob{
		ProdutoID:     p.ID.String(),
		Nome:          p.Nome,
		Codigo:        p.Codigo,
		Estoque:       p.Estoque,
		EstoqueMinimo: p.EstoqueMinimo,
	}
	if err := s.disp.EnqueueAlertaEstoque(ctx, job); err != nil {
		log.Error().Err(err).Str("produto_id", p.ID.String()).Msg("enqueue low-stock alert failed")
	}
}

// ── Barcode cache ────────────────────────────────────────────────────────────
// Best-effort: cache failures fall through to the database and are only logged.

func (s *produtoService) cacheGet(ctx context.Context, codigo string) *dto.ProdutoResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, codigoCachePrefix+codigo).Result()
	if err != nil {
		return nil
	}
	var resp dto.ProdutoResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *produtoService) cacheSet(ctx context.Context, codigo string, resp *dto.ProdutoResponse) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, codigoCachePrefix+codigo, data, codigoCacheTTL).Err(); err != nil {
		log.Debug().Err(err).Str("codigo", codigo).Msg("produto cache set failed")
	}
}

func (s *produtoService) cacheInvalidate(ctx context.Context, p *model.Produto) {
	if s.rdb == nil {
		return
	}
	keys := []string{codigoCachePrefix + p.Codigo}
	if p.CodigoBarras != "" && p.CodigoBarras != p.Codigo {
		keys = append(keys, codigoCachePrefix+p.CodigoBarras)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Debug().Err(err).Str("codigo", p.Codigo).Msg("produto cache invalidate failed")
	}
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	return &dto.ProdutoResponse{
		ID:            p.ID.String(),
		Nome:          p.Nome,
		Codigo:        p.Codigo,
		CodigoBarras:  p.CodigoBarras,
		Categoria:     p.Categoria,
		Preco:         p.Preco,
		Custo:         p.Custo,
		Estoque:       p.Estoque,
		EstoqueMinimo: p.EstoqueMinimo,
		Imagem:        p.Imagem,
		Ativo:         p.Ativo,
	}
}
