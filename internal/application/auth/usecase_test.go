package auth_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/identity-api/internal/application/auth"
	"github.com/jhoicas/identity-api/internal/application/dto"
	"github.com/jhoicas/identity-api/internal/domain"
	"github.com/jhoicas/identity-api/internal/domain/entity"
	"github.com/jhoicas/identity-api/internal/domain/password"
	"github.com/jhoicas/identity-api/internal/domain/repository"
	"github.com/jhoicas/identity-api/internal/infrastructure/crypto"
	pkgjwt "github.com/jhoicas/identity-api/pkg/jwt"
	"github.com/jhoicas/identity-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes in-memory del puerto de persistencia
// ──────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users       map[string]*entity.User // por ID
	updateCalls int
	failUpdate  bool
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(name string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(u *entity.User) error {
	r.updateCalls++
	if r.failUpdate {
		return fmt.Errorf("storage no disponible")
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*entity.User, error) { return nil, nil }
func (r *fakeUserRepo) Delete(id string) error                         { delete(r.users, id); return nil }

// fakeTx ejecuta el callback sin transacción real.
type fakeTx struct{ repo repository.UserRepository }

func (t *fakeTx) Run(_ context.Context, fn func(repository.UserRepository) error) error {
	return fn(t.repo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func testHasherParams() crypto.Argon2Params {
	return crypto.Argon2Params{Memory: 8 * 1024, Iterations: 2, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newUseCase(t *testing.T, repo *fakeUserRepo) (*auth.AuthUseCase, *pkgjwt.Service) {
	t.Helper()
	tokens, err := pkgjwt.NewService(pkgjwt.Config{
		Secret:        "test-secret-key-for-unit-tests",
		AccessMinutes: 30,
		RefreshDays:   7,
		Issuer:        "identity-pro-test",
	})
	require.NoError(t, err)

	uc := auth.NewAuthUseCase(
		repo,
		crypto.NewArgon2Hasher(testHasherParams()),
		tokens,
		&fakeTx{repo: repo},
		password.DefaultPolicy(),
		logger.New(logger.Config{Env: "production", Level: "error"}),
	)
	return uc, tokens
}

// userWithPassword crea un usuario habilitado con el password hasheado con
// los parámetros indicados.
func userWithPassword(t *testing.T, params crypto.Argon2Params, plain string) *entity.User {
	t.Helper()
	hash, err := crypto.NewArgon2Hasher(params).Hash(plain)
	require.NoError(t, err)
	return &entity.User{
		ID:           "00000000-0000-0000-0000-000000000001",
		Name:         "ana",
		Email:        "ana@example.com",
		PasswordHash: hash,
		IsEnabled:    true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_Exitoso(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	repo := newFakeUserRepo(user)
	uc, tokens := newUseCase(t, repo)

	out, err := uc.Login(dto.LoginRequest{Username: "ana", Password: "Valid1Pass!"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", out.TokenType)
	assert.NotEmpty(t, out.RefreshToken)

	claims := tokens.Parse(out.AccessToken)
	require.NotNil(t, claims)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, pkgjwt.TypeAccess, claims.Type)
	assert.Equal(t, []string{"me:read"}, claims.Scopes)

	assert.Zero(t, repo.updateCalls,
		"con parámetros vigentes no debe haber rehash")
}

func TestLogin_PorEmail(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	repo := newFakeUserRepo(user)
	uc, _ := newUseCase(t, repo)

	_, err := uc.Login(dto.LoginRequest{Username: "ana@example.com", Password: "Valid1Pass!"})
	assert.NoError(t, err, "un identificador con forma de email debe resolver por email")
}

// Usuario inexistente y password incorrecto deben ser indistinguibles
// desde afuera (anti-enumeración de usernames).
func TestLogin_UsuarioInexistenteYPasswordIncorrecto_MismoError(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	repo := newFakeUserRepo(user)
	uc, _ := newUseCase(t, repo)

	_, errNoExiste := uc.Login(dto.LoginRequest{Username: "nadie", Password: "Valid1Pass!"})
	_, errPassMalo := uc.Login(dto.LoginRequest{Username: "ana", Password: "Incorrecto1!"})

	require.Error(t, errNoExiste)
	require.Error(t, errPassMalo)
	assert.ErrorIs(t, errNoExiste, domain.ErrCredencialesInvalidas)
	assert.ErrorIs(t, errPassMalo, domain.ErrCredencialesInvalidas)
	assert.Equal(t, errNoExiste, errPassMalo,
		"ambos fallos deben ser exactamente el mismo error observable")
}

func TestLogin_CuentaDeshabilitada_ErrorNombrado(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	user.IsEnabled = false
	uc, _ := newUseCase(t, newFakeUserRepo(user))

	_, err := uc.Login(dto.LoginRequest{Username: "ana", Password: "Valid1Pass!"})
	assert.ErrorIs(t, err, domain.ErrCuentaDeshabilitada,
		"cuenta deshabilitada es un fallo distinto, no credenciales inválidas")
}

// End-to-end del rehash oportunista: hash con costos viejos + password
// correcto → login OK, token decodifica al mismo subject y hay exactamente
// una persistencia de rehash.
func TestLogin_RehashOportunista(t *testing.T) {
	viejos := testHasherParams()
	viejos.Iterations = 1 // costo distinto al vigente
	user := userWithPassword(t, viejos, "Valid1Pass!")
	repo := newFakeUserRepo(user)
	uc, tokens := newUseCase(t, repo)

	out, err := uc.Login(dto.LoginRequest{Username: "ana", Password: "Valid1Pass!"})
	require.NoError(t, err)

	claims := tokens.Parse(out.AccessToken)
	require.NotNil(t, claims)
	assert.Equal(t, user.ID, claims.Subject)

	assert.Equal(t, 1, repo.updateCalls, "debe haber exactamente un update de rehash")

	hasher := crypto.NewArgon2Hasher(testHasherParams())
	stored := repo.users[user.ID]
	assert.True(t, hasher.Verify("Valid1Pass!", stored.PasswordHash),
		"el hash persistido debe seguir verificando el mismo password")
	assert.False(t, hasher.NeedsRehash(stored.PasswordHash),
		"el hash persistido debe quedar con los parámetros vigentes")
}

// El rehash es best-effort: si la persistencia falla, el login igual responde OK.
func TestLogin_RehashNoPersistido_NoFallaElLogin(t *testing.T) {
	viejos := testHasherParams()
	viejos.Iterations = 1
	user := userWithPassword(t, viejos, "Valid1Pass!")
	repo := newFakeUserRepo(user)
	repo.failUpdate = true
	uc, _ := newUseCase(t, repo)

	out, err := uc.Login(dto.LoginRequest{Username: "ana", Password: "Valid1Pass!"})
	require.NoError(t, err, "un fallo al persistir el rehash nunca debe fallar el login")
	assert.NotEmpty(t, out.AccessToken)
	assert.Equal(t, 1, repo.updateCalls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Refresh
// ──────────────────────────────────────────────────────────────────────────────

func TestRefresh_EmiteNuevoAccessToken(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	uc, tokens := newUseCase(t, newFakeUserRepo(user))

	refresh, err := tokens.IssueRefresh(user.ID)
	require.NoError(t, err)

	out, err := uc.Refresh(dto.RefreshRequest{RefreshToken: refresh})
	require.NoError(t, err)

	claims := tokens.Parse(out.AccessToken)
	require.NotNil(t, claims)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, pkgjwt.TypeAccess, claims.Type)
}

// Un access token no es aceptable donde se requiere un refresh token.
func TestRefresh_RechazaAccessToken(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	uc, tokens := newUseCase(t, newFakeUserRepo(user))

	access, err := tokens.IssueAccess(user.ID)
	require.NoError(t, err)

	_, err = uc.Refresh(dto.RefreshRequest{RefreshToken: access})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefresh_TokenInvalidoOUsuarioInexistente(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	uc, tokens := newUseCase(t, newFakeUserRepo(user))

	_, err := uc.Refresh(dto.RefreshRequest{RefreshToken: "token.invalido.aqui"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	huerfano, err := tokens.IssueRefresh("id-que-no-existe")
	require.NoError(t, err)
	_, err = uc.Refresh(dto.RefreshRequest{RefreshToken: huerfano})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// Register / ChangePassword
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_Exitoso(t *testing.T) {
	repo := newFakeUserRepo()
	uc, _ := newUseCase(t, repo)

	out, err := uc.Register(context.Background(), dto.RegisterRequest{
		Name:     "bruno",
		Email:    "bruno@example.com",
		Password: "Valid1Pass!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.ID)
	assert.True(t, out.IsEnabled)
	assert.False(t, out.IsVerified)

	stored := repo.users[out.ID]
	require.NotNil(t, stored)
	hasher := crypto.NewArgon2Hasher(testHasherParams())
	assert.True(t, hasher.Verify("Valid1Pass!", stored.PasswordHash))
	assert.NotEqual(t, "Valid1Pass!", stored.PasswordHash,
		"nunca se persiste el texto plano")
}

func TestRegister_PasswordDebil_PolicyViolation(t *testing.T) {
	uc, _ := newUseCase(t, newFakeUserRepo())

	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		Name:     "bruno",
		Email:    "bruno@example.com",
		Password: "short1!",
	})
	assert.ErrorIs(t, err, domain.ErrPolicyViolation)
	assert.Contains(t, err.Error(), "al menos 8 caracteres",
		"el error debe llevar la razón de la primera regla que falla")
}

func TestRegister_EmailDuplicado(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	uc, _ := newUseCase(t, newFakeUserRepo(user))

	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		Name:     "otra-ana",
		Email:    "ana@example.com",
		Password: "Valid1Pass!",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestChangePassword_Exitoso(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	repo := newFakeUserRepo(user)
	uc, _ := newUseCase(t, repo)

	err := uc.ChangePassword(user.ID, dto.ChangePasswordRequest{
		CurrentPassword: "Valid1Pass!",
		NewPassword:     "Nuevo2Pass!",
	})
	require.NoError(t, err)

	hasher := crypto.NewArgon2Hasher(testHasherParams())
	stored := repo.users[user.ID]
	assert.True(t, hasher.Verify("Nuevo2Pass!", stored.PasswordHash))
	assert.False(t, hasher.Verify("Valid1Pass!", stored.PasswordHash))
}

func TestChangePassword_ActualIncorrecto(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	uc, _ := newUseCase(t, newFakeUserRepo(user))

	err := uc.ChangePassword(user.ID, dto.ChangePasswordRequest{
		CurrentPassword: "Incorrecto1!",
		NewPassword:     "Nuevo2Pass!",
	})
	assert.ErrorIs(t, err, domain.ErrCredencialesInvalidas)
}

func TestChangePassword_NuevoDebil(t *testing.T) {
	user := userWithPassword(t, testHasherParams(), "Valid1Pass!")
	uc, _ := newUseCase(t, newFakeUserRepo(user))

	err := uc.ChangePassword(user.ID, dto.ChangePasswordRequest{
		CurrentPassword: "Valid1Pass!",
		NewPassword:     "débil",
	})
	assert.ErrorIs(t, err, domain.ErrPolicyViolation)
}
