package handler

import (
	"net/http"
	"strconv"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProdutoHandler struct{ svc service.ProdutoService }

func NewProdutoHandler(svc service.ProdutoService) *ProdutoHandler {
	return &ProdutoHandler{svc: svc}
}

// Criar godoc
// @Summary Cadastra um novo produto
// @Tags produtos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CriarProdutoRequest true "Dados do produto"
// @Success 201 {object} dto.ProdutoResponse
// @Failure 409 {object} apierror.Error
// @Router /produtos [post]
func (h *ProdutoHandler) Criar(c *gin.Context) {
	var req dto.CriarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ProdutoEnvelope{
		Message: "Produto criado com sucesso",
		Produto: resp,
	})
}

// Listar godoc
// @Summary Lista produtos com paginação e filtros
// @Tags produtos
// @Produce json
// @Security BearerAuth
// @Param pagina query int false "Página (padrão 1)"
// @Param limite query int false "Itens por página (padrão 10, máx 100)"
// @Param busca query string false "Busca por nome, código ou código de barras"
// @Param categoria query string false "Filtra por categoria"
// @Param ativo query string false "true (padrão) | false | all"
// @Success 200 {object} dto.ProdutoListResponse
// @Router /produtos [get]
func (h *ProdutoHandler) Listar(c *gin.Context) {
	pagina, _ := strconv.Atoi(c.DefaultQuery("pagina", "1"))
	limite, _ := strconv.Atoi(c.DefaultQuery("limite", "10"))
	filter := dto.ProdutoFilter{
		Pagina:    pagina,
		Limite:    limite,
		Busca:     c.Query("busca"),
		Categoria: c.Query("categoria"),
		Ativo:     c.DefaultQuery("ativo", "true"),
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutoHandler) BuscarPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.BuscarPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProdutoEnvelope{Produto: resp})
}

// BuscarPorCodigo resolves a product by internal code or barcode. This is the
// scanner path at the register.
func (h *ProdutoHandler) BuscarPorCodigo(c *gin.Context) {
	codigo := c.Param("codigo")
	if codigo == "" {
		respondError(c, apierror.Validacao("Código não informado"))
		return
	}
	resp, err := h.svc.BuscarPorCodigo(c.Request.Context(), codigo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProdutoEnvelope{Produto: resp})
}

func (h *ProdutoHandler) Atualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AtualizarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProdutoEnvelope{
		Message: "Produto atualizado com sucesso",
		Produto: resp,
	})
}

// Desativar soft-deletes: the product stops appearing in default listings but
// stays referenced by past stock movements.
func (h *ProdutoHandler) Desativar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produto desativado com sucesso"})
}

func (h *ProdutoHandler) EstoqueBaixo(c *gin.Context) {
	resp, err := h.svc.EstoqueBaixo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"produtos": resp})
}

// AjustarEstoque godoc
// @Summary Ajusta o estoque de um produto (delta com sinal)
// @Tags produtos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do produto"
// @Param body body dto.AjustarEstoqueRequest true "Quantidade e motivo"
// @Success 200 {object} dto.ProdutoResponse
// @Failure 400 {object} apierror.Error
// @Router /produtos/{id}/estoque [patch]
func (h *ProdutoHandler) AjustarEstoque(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AjustarEstoqueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarEstoque(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProdutoEnvelope{
		Message: "Estoque ajustado com sucesso",
		Produto: resp,
	})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierror.Validacao("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}
