package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/identity-api/internal/application/auth"
)

var _ auth.PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher adaptador de hashing bcrypt. Alternativa legacy-compatible
// al Argon2Hasher; se selecciona vía HASH_ALGORITHM.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher construye el hasher; cost fuera de rango toma el default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash genera un hash bcrypt (el salt va embebido, salida no determinística).
func (h *BcryptHasher) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash bcrypt: %w", err)
	}
	return string(out), nil
}

// Verify devuelve false, nunca error, ante mismatch o hash malformado.
func (h *BcryptHasher) Verify(plain, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain)) == nil
}

// NeedsRehash indica si el costo embebido difiere del configurado.
func (h *BcryptHasher) NeedsRehash(encoded string) bool {
	cost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return true
	}
	return cost != h.cost
}
