package auth

import (
	"context"

	"github.com/jhoicas/identity-api/internal/domain/repository"
	pkgjwt "github.com/jhoicas/identity-api/pkg/jwt"
)

// PasswordHasher puerto de hashing one-way con rotación de costos.
// Verify devuelve false (nunca error) ante mismatch o hash malformado:
// el fallo de verificación es dato, no condición excepcional.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	NeedsRehash(hash string) bool
}

// TokenService puerto de emisión y validación de tokens firmados.
// Parse devuelve nil ante cualquier fallo de verificación.
type TokenService interface {
	IssueAccess(subject string, scopes ...string) (string, error)
	IssueRefresh(subject string) (string, error)
	Parse(token string) *pkgjwt.Claims
}

// TxRunner ejecuta un callback con un repositorio atado a una transacción
// (commit al retornar nil, rollback en cualquier otro caso).
type TxRunner interface {
	Run(ctx context.Context, fn func(userRepo repository.UserRepository) error) error
}
