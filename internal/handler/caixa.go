package handler

import (
	"fmt"
	"net/http"

	"caixapos/internal/dto"
	"caixapos/internal/middleware"
	"caixapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre uma sessão de caixa para o operador autenticado
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Valor inicial"
// @Success 201 {object} dto.CaixaEnvelope
// @Failure 400 {object} apierror.Error
// @Router /caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID := operatorID(c)
	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CaixaEnvelope{
		Message: "Caixa aberto com sucesso",
		Caixa:   resp,
	})
}

// Fechar godoc
// @Summary Fecha a sessão de caixa aberta do operador autenticado
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharCaixaRequest true "Saldo final contado"
// @Success 200 {object} dto.CaixaEnvelope
// @Failure 404 {object} apierror.Error
// @Router /caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID := operatorID(c)
	resp, err := h.svc.Fechar(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CaixaEnvelope{
		Message: "Caixa fechado com sucesso",
		Caixa:   resp,
	})
}

// Aberto returns the operator's open caixa; the caixa field is null when
// none is open. Always 200 — absence is data here, not an error.
func (h *CaixaHandler) Aberto(c *gin.Context) {
	usuarioID := operatorID(c)
	resp, err := h.svc.Aberta(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CaixaEnvelope{Caixa: resp})
}

// Status is the polling endpoint the register UI hits on focus. Always 200;
// "no open caixa" is a normal answer here, not an error.
func (h *CaixaHandler) Status(c *gin.Context) {
	usuarioID := operatorID(c)
	resp, err := h.svc.Status(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Limpar force-closes every open caixa of the operator. Recovery endpoint for
// stranded sessions; the closure is audited.
func (h *CaixaHandler) Limpar(c *gin.Context) {
	usuarioID := operatorID(c)
	fechados, err := h.svc.LimparAbertos(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LimparCaixasResponse{
		Message:        fmt.Sprintf("%d caixa(s) fechado(s) com sucesso", fechados),
		CaixasFechados: fechados,
	})
}

// operatorID extracts the authenticated operator's id. The auth middleware has
// already uuid-validated the claim, so the parse cannot fail here.
func operatorID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id
}
