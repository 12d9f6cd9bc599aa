package crypto

import (
	"github.com/jhoicas/identity-api/internal/application/auth"
	"github.com/jhoicas/identity-api/pkg/config"
)

// NewHasher selecciona el adaptador de hashing según configuración.
// "bcrypt" usa el hasher legacy-compatible; cualquier otro valor usa Argon2id.
func NewHasher(cfg config.HashConfig) auth.PasswordHasher {
	if cfg.Algorithm == "bcrypt" {
		return NewBcryptHasher(cfg.BcryptCost)
	}
	return NewArgon2Hasher(Argon2Params{
		Memory:      cfg.Argon2Memory,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
		SaltLength:  cfg.Argon2SaltLength,
		KeyLength:   cfg.Argon2KeyLength,
	})
}
