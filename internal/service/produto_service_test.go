package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/repository"
	"caixapos/internal/service"
	"caixapos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory ProdutoRepository ──────────────────────────────────────────────

type fakeProdutoRepo struct {
	mu         sync.Mutex
	produtos   map[uuid.UUID]*model.Produto
	movimentos []model.MovimentoEstoque
	ajusteErr  error // when set, AjustarEstoque fails with this error
}

func newFakeProdutoRepo() *fakeProdutoRepo {
	return &fakeProdutoRepo{produtos: make(map[uuid.UUID]*model.Produto)}
}

func (r *fakeProdutoRepo) Create(_ context.Context, p *model.Produto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.produtos {
		if existing.Codigo == p.Codigo {
			return gorm.ErrDuplicatedKey
		}
	}
	p.ID = uuid.New()
	cp := *p
	r.produtos[p.ID] = &cp
	return nil
}

func (r *fakeProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProdutoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.produtos {
		if (p.Codigo == codigo || p.CodigoBarras == codigo) && p.Ativo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProdutoRepo) List(_ context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []model.Produto
	for _, p := range r.produtos {
		switch filter.Ativo {
		case "false":
			if p.Ativo {
				continue
			}
		case "all":
		default:
			if !p.Ativo {
				continue
			}
		}
		if filter.Busca != "" {
			b := strings.ToLower(filter.Busca)
			if !strings.Contains(strings.ToLower(p.Nome), b) &&
				!strings.Contains(p.Codigo, filter.Busca) &&
				!strings.Contains(p.CodigoBarras, filter.Busca) {
				continue
			}
		}
		if filter.Categoria != "" && filter.Categoria != "todas" && p.Categoria != filter.Categoria {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Nome < matched[j].Nome })

	total := int64(len(matched))
	start := (filter.Pagina - 1) * filter.Limite
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limite
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeProdutoRepo) Update(_ context.Context, p *model.Produto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.produtos[p.ID] = &cp
	return nil
}

func (r *fakeProdutoRepo) Desativar(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Ativo = false
	return nil
}

func (r *fakeProdutoRepo) EstoqueBaixo(_ context.Context) ([]model.Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Produto
	for _, p := range r.produtos {
		if p.Ativo && p.Estoque <= p.EstoqueMinimo {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakeProdutoRepo) AjustarEstoque(_ context.Context, id uuid.UUID, delta int, motivo string) (*model.Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ajusteErr != nil {
		return nil, r.ajusteErr
	}
	p, ok := r.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	novo := p.Estoque + delta
	if novo < 0 {
		return nil, repository.ErrEstoqueNegativo
	}
	r.movimentos = append(r.movimentos, model.MovimentoEstoque{
		ProdutoID:       p.ID,
		Quantidade:      delta,
		EstoqueAnterior: p.Estoque,
		EstoqueNovo:     novo,
		Motivo:          motivo,
	})
	p.Estoque = novo
	cp := *p
	return &cp, nil
}

type fakeAlertaDispatcher struct {
	mu   sync.Mutex
	jobs []worker.AlertaEstoqueJob
}

func (d *fakeAlertaDispatcher) EnqueueAlertaEstoque(_ context.Context, payload worker.AlertaEstoqueJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, payload)
	return nil
}

func criarProduto(t *testing.T, svc service.ProdutoService, nome, codigo string, estoque, minimo int) *dto.ProdutoResponse {
	t.Helper()
	min := minimo
	resp, err := svc.Criar(context.Background(), dto.CriarProdutoRequest{
		Nome:          nome,
		Codigo:        codigo,
		Categoria:     "bebidas",
		Preco:         decimal.NewFromFloat(9.90),
		Estoque:       estoque,
		EstoqueMinimo: &min,
	})
	require.NoError(t, err)
	return resp
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCriarProdutoComCodigoAutomatico(t *testing.T) {
	svc := service.NewProdutoService(newFakeProdutoRepo(), nil, nil)

	resp, err := svc.Criar(context.Background(), dto.CriarProdutoRequest{
		Nome:      "Café em grão",
		Categoria: "mercearia",
		Preco:     decimal.NewFromFloat(32.50),
		Estoque:   10,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Codigo, "PROD"), "generated code: %s", resp.Codigo)
	// Barcode defaults to the internal code when not supplied.
	assert.Equal(t, resp.Codigo, resp.CodigoBarras)
	assert.Equal(t, 5, resp.EstoqueMinimo)
	assert.True(t, resp.Ativo)
}

func TestCriarProdutoCodigoDuplicado(t *testing.T) {
	svc := service.NewProdutoService(newFakeProdutoRepo(), nil, nil)

	criarProduto(t, svc, "Água", "AGUA500", 10, 5)

	_, err := svc.Criar(context.Background(), dto.CriarProdutoRequest{
		Nome:      "Água com gás",
		Codigo:    "AGUA500",
		Categoria: "bebidas",
		Preco:     decimal.NewFromFloat(3.50),
	})
	require.Error(t, err)
	apiErr := err.(*apierror.Error)
	assert.Equal(t, apierror.CodeCodigoJaCadastrado, apiErr.Code)
	assert.Equal(t, 409, apiErr.Status)
}

func TestBuscarPorCodigoIncluiCodigoBarras(t *testing.T) {
	repo := newFakeProdutoRepo()
	svc := service.NewProdutoService(repo, nil, nil)

	_, err := svc.Criar(context.Background(), dto.CriarProdutoRequest{
		Nome:         "Refrigerante",
		Codigo:       "REFRI2L",
		CodigoBarras: "7891234567890",
		Categoria:    "bebidas",
		Preco:        decimal.NewFromFloat(8.99),
	})
	require.NoError(t, err)

	porCodigo, err := svc.BuscarPorCodigo(context.Background(), "REFRI2L")
	require.NoError(t, err)
	porBarras, err := svc.BuscarPorCodigo(context.Background(), "7891234567890")
	require.NoError(t, err)
	assert.Equal(t, porCodigo.ID, porBarras.ID)
}

func TestBuscarPorCodigoInexistente(t *testing.T) {
	svc := service.NewProdutoService(newFakeProdutoRepo(), nil, nil)

	_, err := svc.BuscarPorCodigo(context.Background(), "NAOEXISTE")
	require.Error(t, err)
	assert.Equal(t, apierror.CodeNaoEncontrado, err.(*apierror.Error).Code)
}

func TestListarComPaginacao(t *testing.T) {
	svc := service.NewProdutoService(newFakeProdutoRepo(), nil, nil)

	criarProduto(t, svc, "Arroz", "ARROZ", 10, 5)
	criarProduto(t, svc, "Feijão", "FEIJAO", 10, 5)
	criarProduto(t, svc, "Macarrão", "MACARRAO", 10, 5)

	resp, err := svc.Listar(context.Background(), dto.ProdutoFilter{Pagina: 1, Limite: 2, Ativo: "true"})
	require.NoError(t, err)
	assert.Len(t, resp.Produtos, 2)
	assert.Equal(t, int64(3), resp.Paginacao.Total)
	assert.Equal(t, 2, resp.Paginacao.TotalPaginas)

	resp, err = svc.Listar(context.Background(), dto.ProdutoFilter{Pagina: 2, Limite: 2, Ativo: "true"})
	require.NoError(t, err)
	assert.Len(t, resp.Produtos, 1)
}

func TestDesativarSomeDaListagemPadrao(t *testing.T) {
	svc := service.NewProdutoService(newFakeProdutoRepo(), nil, nil)

	p := criarProduto(t, svc, "Descontinuado", "DESC1", 10, 5)
	id, err := uuid.Parse(p.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Desativar(context.Background(), id))

	resp, err := svc.Listar(context.Background(), dto.ProdutoFilter{Pagina: 1, Limite: 10, Ativo: "true"})
	require.NoError(t, err)
	assert.Empty(t, resp.Produtos)

	// Still visible when asked for everything.
	resp, err = svc.Listar(context.Background(), dto.ProdutoFilter{Pagina: 1, Limite: 10, Ativo: "all"})
	require.NoError(t, err)
	assert.Len(t, resp.Produtos, 1)

	// And no longer resolvable at the scanner.
	_, err = svc.BuscarPorCodigo(context.Background(), "DESC1")
	require.Error(t, err)
}

func TestAjustarEstoque(t *testing.T) {
	repo := newFakeProdutoRepo()
	svc := service.NewProdutoService(repo, nil, nil)

	p := criarProduto(t, svc, "Leite", "LEITE1L", 20, 5)
	id, _ := uuid.Parse(p.ID)

	resp, err := svc.AjustarEstoque(context.Background(), id, dto.AjustarEstoqueRequest{
		Quantidade: -8,
		Motivo:     "venda balcão",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Estoque)

	// The ledger entry records before/after and the reason.
	require.Len(t, repo.movimentos, 1)
	mov := repo.movimentos[0]
	assert.Equal(t, -8, mov.Quantidade)
	assert.Equal(t, 20, mov.EstoqueAnterior)
	assert.Equal(t, 12, mov.EstoqueNovo)
	assert.Equal(t, "venda balcão", mov.Motivo)
}

func TestAjustarEstoqueAbaixoDeZero(t *testing.T) {
	repo := newFakeProdutoRepo()
	svc := service.NewProdutoService(repo, nil, nil)

	p := criarProduto(t, svc, "Leite", "LEITE1L", 3, 5)
	id, _ := uuid.Parse(p.ID)

	_, err := svc.AjustarEstoque(context.Background(), id, dto.AjustarEstoqueRequest{
		Quantidade: -10,
		Motivo:     "venda balcão",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.CodeEstoqueInsuficiente, err.(*apierror.Error).Code)
	// Rejected adjustments leave no ledger entry.
	assert.Empty(t, repo.movimentos)
}

// A database constraint failure during the adjustment must surface as an
// internal error, not be mistaken for a stock rejection.
func TestAjustarEstoqueErroDeConstraintNaoVazaComoEstoque(t *testing.T) {
	repo := newFakeProdutoRepo()
	svc := service.NewProdutoService(repo, nil, nil)

	p := criarProduto(t, svc, "Leite", "LEITE1L", 20, 5)
	id, _ := uuid.Parse(p.ID)
	repo.ajusteErr = gorm.ErrCheckConstraintViolated

	_, err := svc.AjustarEstoque(context.Background(), id, dto.AjustarEstoqueRequest{
		Quantidade: -1,
		Motivo:     "venda balcão",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.CodeErroInterno, err.(*apierror.Error).Code)
	assert.False(t, errors.Is(repository.ErrEstoqueNegativo, gorm.ErrCheckConstraintViolated))
}

// Crossing below the minimum fires exactly one alert; adjustments that stay
// below it do not re-alert.
func TestAjustarEstoqueDisparaAlerta(t *testing.T) {
	disp := &fakeAlertaDispatcher{}
	svc := service.NewProdutoService(newFakeProdutoRepo(), nil, disp)

	p := criarProduto(t, svc, "Açúcar", "ACUCAR", 10, 5)
	id, _ := uuid.Parse(p.ID)

	_, err := svc.AjustarEstoque(context.Background(), id, dto.AjustarEstoqueRequest{Quantidade: -6, Motivo: "venda"})
	require.NoError(t, err)
	require.Len(t, disp.jobs, 1)
	assert.Equal(t, "ACUCAR", disp.jobs[0].Codigo)
	assert.Equal(t, 4, disp.jobs[0].Estoque)

	_, err = svc.AjustarEstoque(context.Background(), id, dto.AjustarEstoqueRequest{Quantidade: -1, Motivo: "venda"})
	require.NoError(t, err)
	assert.Len(t, disp.jobs, 1)

	// Restock and drop again — a fresh crossing alerts again.
	_, err = svc.AjustarEstoque(context.Background(), id, dto.AjustarEstoqueRequest{Quantidade: 10, Motivo: "reposição"})
	require.NoError(t, err)
	_, err = svc.AjustarEstoque(context.Background(), id, dto.AjustarEstoqueRequest{Quantidade: -9, Motivo: "venda"})
	require.NoError(t, err)
	assert.Len(t, disp.jobs, 2)
}

func TestAtualizarParcial(t *testing.T) {
	svc := service.NewProdutoService(newFakeProdutoRepo(), nil, nil)

	p := criarProduto(t, svc, "Biscoito", "BISC1", 10, 5)
	id, _ := uuid.Parse(p.ID)

	novoPreco := decimal.NewFromFloat(4.20)
	resp, err := svc.Atualizar(context.Background(), id, dto.AtualizarProdutoRequest{
		Preco: &novoPreco,
	})
	require.NoError(t, err)
	assert.True(t, resp.Preco.Equal(novoPreco))
	// Untouched fields survive.
	assert.Equal(t, "Biscoito", resp.Nome)
	assert.Equal(t, 10, resp.Estoque)
}

func TestEstoqueBaixo(t *testing.T) {
	svc := service.NewProdutoService(newFakeProdutoRepo(), nil, nil)

	criarProduto(t, svc, "Cheio", "CHEIO", 50, 5)
	criarProduto(t, svc, "Baixo", "BAIXO", 3, 5)
	criarProduto(t, svc, "No limite", "LIMITE", 5, 5)

	resp, err := svc.EstoqueBaixo(context.Background())
	require.NoError(t, err)
	require.Len(t, resp, 2)
	codigos := []string{resp[0].Codigo, resp[1].Codigo}
	assert.ElementsMatch(t, []string{"BAIXO", "LIMITE"}, codigos)
}
