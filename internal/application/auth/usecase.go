package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/identity-api/internal/application/dto"
	"github.com/jhoicas/identity-api/internal/domain"
	"github.com/jhoicas/identity-api/internal/domain/entity"
	"github.com/jhoicas/identity-api/internal/domain/password"
	"github.com/jhoicas/identity-api/internal/domain/repository"
	"github.com/jhoicas/identity-api/pkg/jwt"
	"github.com/jhoicas/identity-api/pkg/logger"
)

// TokenTypeBearer etiqueta del tipo de token en las respuestas.
const TokenTypeBearer = "Bearer"

// Scopes por defecto de un access token emitido en login.
var defaultScopes = []string{"me:read"}

// AuthUseCase casos de uso de autenticación: login, refresh, registro y
// cambio de password.
type AuthUseCase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenService
	tx       TxRunner
	policy   password.Policy
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenService,
	tx TxRunner,
	policy password.Policy,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		tx:       tx,
		policy:   policy,
		log:      log,
	}
}

// Login verifica credenciales y emite access + refresh token.
//
// Usuario inexistente y password incorrecto producen exactamente el mismo
// ErrCredencialesInvalidas: el caller no puede enumerar usernames.
// Cuenta deshabilitada es un fallo distinto y nombrado (ErrCuentaDeshabilitada),
// nunca se pliega dentro de credenciales inválidas.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.lookup(in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrCredencialesInvalidas
	}
	if !uc.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, domain.ErrCredencialesInvalidas
	}
	if !user.IsEnabled {
		return nil, domain.ErrCuentaDeshabilitada
	}

	// Rehash oportunista: si el hash quedó con costos viejos, se regenera con
	// el texto recién verificado. Best-effort: un fallo de persistencia se
	// loguea y el login continúa (last-write-wins ante logins concurrentes).
	if uc.hasher.NeedsRehash(user.PasswordHash) {
		uc.rehash(user, in.Password)
	}

	access, err := uc.tokens.IssueAccess(user.ID, defaultScopes...)
	if err != nil {
		return nil, fmt.Errorf("emitir access token: %w", err)
	}
	refresh, err := uc.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("emitir refresh token: %w", err)
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
	}, nil
}

// lookup busca por username y, si no hay match y el identificador tiene
// forma de email, reintenta por email.
func (uc *AuthUseCase) lookup(identifier string) (*entity.User, error) {
	user, err := uc.userRepo.FindByUsername(identifier)
	if err != nil {
		return nil, err
	}
	if user == nil && strings.Contains(identifier, "@") {
		user, err = uc.userRepo.FindByEmail(identifier)
		if err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (uc *AuthUseCase) rehash(user *entity.User, plain string) {
	newHash, err := uc.hasher.Hash(plain)
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("rehash de password falló")
		return
	}
	user.PasswordHash = newHash
	user.UpdatedAt = time.Now().UTC()
	if err := uc.userRepo.Update(user); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("rehash de password no persistido")
	}
}

// Refresh emite un nuevo access token a partir de un refresh token válido.
// Un access token presentado aquí se rechaza (type != refresh).
func (uc *AuthUseCase) Refresh(in dto.RefreshRequest) (*dto.LoginResponse, error) {
	claims := uc.tokens.Parse(in.RefreshToken)
	if claims == nil || claims.Type != jwt.TypeRefresh {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.FindByID(claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsEnabled {
		return nil, domain.ErrCuentaDeshabilitada
	}
	access, err := uc.tokens.IssueAccess(user.ID, defaultScopes...)
	if err != nil {
		return nil, fmt.Errorf("emitir access token: %w", err)
	}
	return &dto.LoginResponse{AccessToken: access, TokenType: TokenTypeBearer}, nil
}

// Register valida el password contra la política, lo hashea y crea el
// usuario dentro de una transacción (chequeo de email + insert atómicos).
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if ok, reason := uc.policy.Validate(in.Password); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPolicyViolation, reason)
	}
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashear password: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		IsEnabled:    true,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.tx.Run(ctx, func(repo repository.UserRepository) error {
		existing, err := repo.FindByEmail(in.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailAlreadyExists
		}
		return repo.Create(user)
	})
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// ChangePassword verifica el password actual, valida el nuevo contra la
// política y persiste el hash nuevo.
func (uc *AuthUseCase) ChangePassword(userID string, in dto.ChangePasswordRequest) error {
	user, err := uc.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	if !uc.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
		return domain.ErrCredencialesInvalidas
	}
	if ok, reason := uc.policy.Validate(in.NewPassword); !ok {
		return fmt.Errorf("%w: %s", domain.ErrPolicyViolation, reason)
	}
	hash, err := uc.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hashear password: %w", err)
	}
	user.PasswordHash = hash
	user.UpdatedBy = &userID
	user.UpdatedAt = time.Now().UTC()
	if err := uc.userRepo.Update(user); err != nil {
		return fmt.Errorf("actualizar password: %w", err)
	}
	return nil
}

// ToUserResponse mapea la entidad a su DTO de salida (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Address:    u.Address,
		Phone:      u.Phone,
		Gender:     u.Gender,
		Avatar:     u.Avatar,
		RoleID:     u.RoleID,
		IsEnabled:  u.IsEnabled,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
