package service

import (
	"context"
	"errors"
	"time"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/repository"
	"caixapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CaixaDispatcher is the slice of the worker dispatcher the caixa service
// uses. Satisfied by *worker.Dispatcher; nil disables job dispatch (tests).
type CaixaDispatcher interface {
	EnqueueFechamentoPDF(ctx context.Context, payload worker.FechamentoPDFJob) error
}

type CaixaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.CaixaResponse, error)
	Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.CaixaResponse, error)
	// Aberta returns the operator's open caixa, or nil when none. Pure read.
	Aberta(ctx context.Context, usuarioID uuid.UUID) (*dto.CaixaResponse, error)
	Status(ctx context.Context, usuarioID uuid.UUID) (*dto.CaixaStatusResponse, error)
	// LimparAbertos force-closes every open caixa for the operator with
	// saldoFinal 0. Recovery operation; audited.
	LimparAbertos(ctx context.Context, usuarioID uuid.UUID) (int64, error)
}

type caixaService struct {
	repo     repository.CaixaRepository
	usuarios repository.UsuarioRepository
	disp     CaixaDispatcher
}

func NewCaixaService(repo repository.CaixaRepository, usuarios repository.UsuarioRepository, disp CaixaDispatcher) CaixaService {
	return &caixaService{repo: repo, usuarios: usuarios, disp: disp}
}

// Abrir creates a new open caixa for the operator. The pre-check gives a
// friendly answer in the common sequential case, but the partial unique index
// on (usuario_id) WHERE status='aberto' is what actually decides concurrent
// duplicate opens: the losing insert comes back as gorm.ErrDuplicatedKey.
func (s *caixaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.CaixaResponse, error) {
	if req.ValorInicial.IsNegative() {
		return nil, apierror.Validacao("Valor inicial deve ser positivo")
	}

	existing, err := s.repo.FindAbertoPorUsuario(ctx, usuarioID)
	if err != nil {
		log.Error().Err(err).Msg("find open caixa failed")
		return nil, apierror.Interno()
	}
	if existing != nil {
		return nil, apierror.CaixaJaAberto()
	}

	caixa := &model.Caixa{
		UsuarioID:    usuarioID,
		ValorInicial: req.ValorInicial,
		Status:       model.CaixaAberto,
		DataAbertura: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, caixa); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent open.
			return nil, apierror.CaixaJaAberto()
		}
		log.Error().Err(err).Msg("create caixa failed")
		return nil, apierror.Interno()
	}

	return caixaToResponse(caixa), nil
}

// Fechar closes the operator's open caixa, recording the declared balance.
// The repository locks the row, so a concurrent open or close for the same
// operator serializes at the storage layer. No close-then-reopen retry lives
// here — that is client policy.
func (s *caixaService) Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.CaixaResponse, error) {
	if req.SaldoFinal.IsNegative() {
		return nil, apierror.Validacao("Saldo final deve ser positivo")
	}

	caixa, err := s.repo.FecharAberto(ctx, usuarioID, req.SaldoFinal, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.CaixaNaoEncontrado()
		}
		log.Error().Err(err).Msg("close caixa failed")
		return nil, apierror.Interno()
	}

	s.enqueueFechamentoPDF(ctx, caixa)

	return caixaToResponse(caixa), nil
}

func (s *caixaService) Aberta(ctx context.Context, usuarioID uuid.UUID) (*dto.CaixaResponse, error) {
	caixa, err := s.repo.FindAbertoPorUsuario(ctx, usuarioID)
	if err != nil {
		log.Error().Err(err).Msg("find open caixa failed")
		return nil, apierror.Interno()
	}
	if caixa == nil {
		return nil, nil
	}
	return caixaToResponse(caixa), nil
}

func (s *caixaService) Status(ctx context.Context, usuarioID uuid.UUID) (*dto.CaixaStatusResponse, error) {
	caixa, err := s.Aberta(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	return &dto.CaixaStatusResponse{
		TemCaixaAberto: caixa != nil,
		Caixa:          caixa,
	}, nil
}

func (s *caixaService) LimparAbertos(ctx context.Context, usuarioID uuid.UUID) (int64, error) {
	count, err := s.repo.FecharTodosAbertos(ctx, usuarioID, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("force close caixas failed")
		return 0, apierror.Interno()
	}
	log.Info().
		Str("usuario_id", usuarioID.String()).
		Int64("caixas_fechados", count).
		Msg("open caixas force-closed")
	return count, nil
}

// enqueueFechamentoPDF dispatches the closing-summary job. Advisory: an
// enqueue failure is logged, never surfaced to the client.
func (s *caixaService) enqueueFechamentoPDF(ctx context.Context, caixa *model.Caixa) {
	if s.disp == nil {
		return
	}

	operador := caixa.UsuarioID.String()
	if user, err := s.usuarios.FindByID(ctx, caixa.UsuarioID); err == nil {
		operador = user.Nome
	}

	job := worker.FechamentoPDFJob{
		CaixaID:      caixa.ID.String(),
		Operador:     operador,
		ValorInicial: caixa.ValorInicial.StringFixed(2),
		DataAbertura: caixa.DataAbertura.Format("02/01/2006 15:04"),
	}
	if caixa.SaldoFinal != nil {
		job.SaldoFinal = caixa.SaldoFinal.StringFixed(2)
	}
	if caixa.DataFechamento != nil {
		job.DataFechamento = caixa.DataFechamento.Format("02/01/2006 15:04")
	}

	if err := s.disp.EnqueueFechamentoPDF(ctx, job); err != nil {
		log.Error().Err(err).Str("caixa_id", caixa.ID.String()).Msg("enqueue closing summary failed")
	}
}

func caixaToResponse(c *model.Caixa) *dto.CaixaResponse {
	resp := &dto.CaixaResponse{
		ID:           c.ID.String(),
		UsuarioID:    c.UsuarioID.String(),
		ValorInicial: c.ValorInicial,
		SaldoFinal:   c.SaldoFinal,
		Status:       c.Status,
		DataAbertura: c.DataAbertura.UTC().Format(time.RFC3339),
	}
	if c.DataFechamento != nil {
		t := c.DataFechamento.UTC().Format(time.RFC3339)
		resp.DataFechamento = &t
	}
	return resp
}
