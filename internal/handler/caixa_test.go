package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/handler"
	"caixapos/internal/middleware"
	"caixapos/internal/model"
	"caixapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubCaixaService scripts the service layer so the tests exercise only the
// HTTP surface: binding, status codes and envelopes.
type stubCaixaService struct {
	abrir       func(usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.CaixaResponse, error)
	fechar      func(usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.CaixaResponse, error)
	aberta      func(usuarioID uuid.UUID) (*dto.CaixaResponse, error)
	limparFecha int64
	limparErr   error
}

var _ service.CaixaService = (*stubCaixaService)(nil)

func (s *stubCaixaService) Abrir(_ context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.CaixaResponse, error) {
	return s.abrir(usuarioID, req)
}

func (s *stubCaixaService) Fechar(_ context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.CaixaResponse, error) {
	return s.fechar(usuarioID, req)
}

func (s *stubCaixaService) Aberta(_ context.Context, usuarioID uuid.UUID) (*dto.CaixaResponse, error) {
	return s.aberta(usuarioID)
}

func (s *stubCaixaService) Status(_ context.Context, usuarioID uuid.UUID) (*dto.CaixaStatusResponse, error) {
	caixa, err := s.aberta(usuarioID)
	if err != nil {
		return nil, err
	}
	return &dto.CaixaStatusResponse{TemCaixaAberto: caixa != nil, Caixa: caixa}, nil
}

func (s *stubCaixaService) LimparAbertos(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.limparFecha, s.limparErr
}

func caixaResponse(usuarioID uuid.UUID) *dto.CaixaResponse {
	return &dto.CaixaResponse{
		ID:           uuid.NewString(),
		UsuarioID:    usuarioID.String(),
		ValorInicial: decimal.NewFromInt(100),
		Status:       model.CaixaAberto,
		DataAbertura: time.Now().UTC().Format(time.RFC3339),
	}
}

// caixaRouter mounts the handler behind a fake auth layer that injects claims
// for a fixed operator.
func caixaRouter(svc service.CaixaService, usuarioID uuid.UUID) *gin.Engine {
	r := gin.New()
	h := handler.NewCaixaHandler(svc)

	injectClaims := func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.Claims{
			UserID: usuarioID.String(),
			Email:  "alice@loja.com",
			Role:   model.RoleCaixa,
		})
		c.Next()
	}

	caixa := r.Group("/api/caixa", injectClaims)
	{
		caixa.POST("/abrir", h.Abrir)
		caixa.POST("/fechar", h.Fechar)
		caixa.GET("/aberto", h.Aberto)
		caixa.GET("/status", h.Status)
		caixa.POST("/caixa/limpar", h.Limpar)
	}
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAbrirCaixaHTTP(t *testing.T) {
	operador := uuid.New()
	svc := &stubCaixaService{
		abrir: func(usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.CaixaResponse, error) {
			assert.Equal(t, operador, usuarioID)
			assert.True(t, req.ValorInicial.Equal(decimal.NewFromInt(100)))
			return caixaResponse(usuarioID), nil
		},
	}
	r := caixaRouter(svc, operador)

	w := do(r, http.MethodPost, "/api/caixa/abrir", `{"valorInicial": 100}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	var env dto.CaixaEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Caixa aberto com sucesso", env.Message)
	require.NotNil(t, env.Caixa)
	assert.Equal(t, model.CaixaAberto, env.Caixa.Status)
}

func TestAbrirCaixaHTTPJaAberto(t *testing.T) {
	svc := &stubCaixaService{
		abrir: func(_ uuid.UUID, _ dto.AbrirCaixaRequest) (*dto.CaixaResponse, error) {
			return nil, apierror.CaixaJaAberto()
		},
	}
	r := caixaRouter(svc, uuid.New())

	w := do(r, http.MethodPost, "/api/caixa/abrir", `{"valorInicial": 100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), apierror.CodeCaixaJaAberto)
}

func TestAbrirCaixaHTTPJSONInvalido(t *testing.T) {
	svc := &stubCaixaService{
		abrir: func(_ uuid.UUID, _ dto.AbrirCaixaRequest) (*dto.CaixaResponse, error) {
			t.Fatal("service must not be reached on malformed JSON")
			return nil, nil
		},
	}
	r := caixaRouter(svc, uuid.New())

	w := do(r, http.MethodPost, "/api/caixa/abrir", `{"valorInicial": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), apierror.CodeValidacao)
}

func TestFecharCaixaHTTP(t *testing.T) {
	operador := uuid.New()
	svc := &stubCaixaService{
		fechar: func(usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.CaixaResponse, error) {
			resp := caixaResponse(usuarioID)
			resp.Status = model.CaixaFechado
			saldo := req.SaldoFinal
			resp.SaldoFinal = &saldo
			return resp, nil
		},
	}
	r := caixaRouter(svc, operador)

	w := do(r, http.MethodPost, "/api/caixa/fechar", `{"saldoFinal": 237.5}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var env dto.CaixaEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Caixa fechado com sucesso", env.Message)
	assert.Equal(t, model.CaixaFechado, env.Caixa.Status)
}

func TestFecharCaixaHTTPSemAberto(t *testing.T) {
	svc := &stubCaixaService{
		fechar: func(_ uuid.UUID, _ dto.FecharCaixaRequest) (*dto.CaixaResponse, error) {
			return nil, apierror.CaixaNaoEncontrado()
		},
	}
	r := caixaRouter(svc, uuid.New())

	w := do(r, http.MethodPost, "/api/caixa/fechar", `{"saldoFinal": 100}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), apierror.CodeCaixaNaoEncontrado)
}

// Absence is data on this endpoint: no open caixa is 200 with caixa null.
func TestAbertoHTTPSemCaixa(t *testing.T) {
	svc := &stubCaixaService{
		aberta: func(_ uuid.UUID) (*dto.CaixaResponse, error) { return nil, nil },
	}
	r := caixaRouter(svc, uuid.New())

	w := do(r, http.MethodGet, "/api/caixa/aberto", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var env dto.CaixaEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Nil(t, env.Caixa)
}

// Status is a polling endpoint: "nothing open" is 200, not 404.
func TestStatusHTTPSemCaixa(t *testing.T) {
	svc := &stubCaixaService{
		aberta: func(_ uuid.UUID) (*dto.CaixaResponse, error) { return nil, nil },
	}
	r := caixaRouter(svc, uuid.New())

	w := do(r, http.MethodGet, "/api/caixa/status", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var status dto.CaixaStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.TemCaixaAberto)
	assert.Nil(t, status.Caixa)
}

func TestLimparHTTP(t *testing.T) {
	svc := &stubCaixaService{limparFecha: 2}
	r := caixaRouter(svc, uuid.New())

	w := do(r, http.MethodPost, "/api/caixa/caixa/limpar", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.LimparCaixasResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.CaixasFechados)
	assert.Equal(t, "2 caixa(s) fechado(s) com sucesso", resp.Message)
}
