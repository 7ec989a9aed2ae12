package service

import (
	"context"
	"errors"
	"time"

	"caixapos/internal/apierror"
	"caixapos/internal/config"
	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost follows current OWASP guidance for interactive logins.
const bcryptCost = 12

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Profile(ctx context.Context, usuarioID uuid.UUID) (*dto.ProfileResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// Register creates a new operator. Self-registration always yields the caixa
// role; admins are seeded out of band. The unique index on email is the
// arbiter for duplicates — there is no read-before-write.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcryptCost)
	if err != nil {
		log.Error().Err(err).Msg("bcrypt hash failed")
		return nil, apierror.Interno()
	}

	user := &model.Usuario{
		Nome:      req.Nome,
		Email:     req.Email,
		SenhaHash: string(hash),
		Role:      model.RoleCaixa,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.EmailJaCadastrado()
		}
		log.Error().Err(err).Msg("create usuario failed")
		return nil, apierror.Interno()
	}

	token, err := s.generateToken(user)
	if err != nil {
		log.Error().Err(err).Msg("sign token failed")
		return nil, apierror.Interno()
	}

	return &dto.AuthResponse{
		Message: "Usuário criado com sucesso",
		Token:   token,
		User:    usuarioToResponse(user),
	}, nil
}

// Login verifies credentials against the stored hash. Unknown email and wrong
// password produce the identical error so the endpoint cannot be used to
// enumerate accounts.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.CredenciaisInvalidas()
		}
		log.Error().Err(err).Msg("find usuario failed")
		return nil, apierror.Interno()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(req.Senha)); err != nil {
		return nil, apierror.CredenciaisInvalidas()
	}

	token, err := s.generateToken(user)
	if err != nil {
		log.Error().Err(err).Msg("sign token failed")
		return nil, apierror.Interno()
	}

	return &dto.AuthResponse{
		Message: "Login realizado com sucesso",
		Token:   token,
		User:    usuarioToResponse(user),
	}, nil
}

func (s *authService) Profile(ctx context.Context, usuarioID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NaoEncontrado("Usuário não encontrado")
		}
		log.Error().Err(err).Msg("find usuario failed")
		return nil, apierror.Interno()
	}
	return &dto.ProfileResponse{User: usuarioToResponse(user)}, nil
}

// generateToken issues an HS256 token with a fixed validity window. The
// signing secret is injected once at construction and never rotated during
// the process lifetime.
func (s *authService) generateToken(user *model.Usuario) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:    u.ID.String(),
		Nome:  u.Nome,
		Email: u.Email,
		Role:  u.Role,
	}
}
