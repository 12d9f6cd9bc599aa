package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/jhoicas/identity-api/internal/application/auth"
)

var _ auth.PasswordHasher = (*Argon2Hasher)(nil)

// Tope de memoria aceptado al decodificar un hash (4 GiB en KiB): un hash
// corrupto o hostil no debe disparar una asignación patológica en Verify.
const maxDecodedMemoryKiB = 4 << 20

// Argon2Params parámetros de costo de Argon2id. Se fijan en la construcción
// del hasher y solo cambian vía configuración (nunca en los call sites).
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params parámetros por defecto (64 MiB, t=3, p=2).
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2Hasher adaptador de hashing Argon2id en formato PHC:
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
type Argon2Hasher struct {
	params Argon2Params
}

// NewArgon2Hasher construye el hasher; los campos en cero toman el default.
func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	def := DefaultArgon2Params()
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = def.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = def.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = def.KeyLength
	}
	return &Argon2Hasher{params: params}
}

// Hash genera un hash Argon2id con salt aleatorio por llamada:
// dos llamadas con el mismo texto producen salidas distintas.
func (h *Argon2Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generar salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify compara el texto plano contra el hash usando los parámetros
// embebidos en el propio hash (compatibilidad con costos anteriores).
// Devuelve false, nunca error, ante hashes malformados o incompatibles.
func (h *Argon2Hasher) Verify(plain, encoded string) bool {
	params, salt, key, err := decodeArgon2(encoded)
	if err != nil {
		return false
	}
	comparison := argon2.IDKey([]byte(plain), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, comparison) == 1
}

// NeedsRehash indica si el hash fue producido con parámetros de costo
// distintos a los vigentes. Un hash ilegible también reporta true: si el
// login llega a verificarlo con éxito por otra vía, debe migrarse.
func (h *Argon2Hasher) NeedsRehash(encoded string) bool {
	params, _, key, err := decodeArgon2(encoded)
	if err != nil {
		return true
	}
	return params.Memory != h.params.Memory ||
		params.Iterations != h.params.Iterations ||
		params.Parallelism != h.params.Parallelism ||
		uint32(len(key)) != h.params.KeyLength
}

func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("formato de hash inválido")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("versión de argon2 no soportada")
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("parámetros de hash malformados: %w", err)
	}
	// argon2.IDKey hace panic con t < 1 o p < 1: un hash con costos en cero
	// es malformado y debe fallar como dato, nunca como panic.
	if p.Iterations < 1 || p.Parallelism < 1 || p.Memory < 1 || p.Memory > maxDecodedMemoryKiB {
		return p, nil, nil, fmt.Errorf("parámetros de costo fuera de rango")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decodificar salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decodificar hash: %w", err)
	}
	return p, salt, key, nil
}
