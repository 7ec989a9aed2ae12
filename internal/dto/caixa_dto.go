package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	ValorInicial decimal.Decimal `json:"valorInicial" validate:"min=0"`
}

type FecharCaixaRequest struct {
	SaldoFinal decimal.Decimal `json:"saldoFinal" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CaixaResponse struct {
	ID             string           `json:"id"`
	UsuarioID      string           `json:"usuarioId"`
	ValorInicial   decimal.Decimal  `json:"valorInicial"`
	SaldoFinal     *decimal.Decimal `json:"saldoFinal"`
	Status         string           `json:"status"`
	DataAbertura   string           `json:"dataAbertura"`
	DataFechamento *string          `json:"dataFechamento"`
}

type CaixaEnvelope struct {
	Message string         `json:"message,omitempty"`
	Caixa   *CaixaResponse `json:"caixa"`
}

// CaixaStatusResponse is the reconciliation read for clients: any locally
// cached "is a register open" flag is advisory and must defer to this.
type CaixaStatusResponse struct {
	TemCaixaAberto bool           `json:"temCaixaAberto"`
	Caixa          *CaixaResponse `json:"caixa"`
}

type LimparCaixasResponse struct {
	Message        string `json:"message"`
	CaixasFechados int64  `json:"caixasFechados"`
}
