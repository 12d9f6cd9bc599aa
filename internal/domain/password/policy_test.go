package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/identity-api/internal/domain/password"
)

// Caso 1: password demasiado corto → falla por longitud mínima.
func TestPolicy_MuyCorto_FallaMinLength(t *testing.T) {
	p := password.DefaultPolicy()
	ok, reason := p.Validate("short1!")

	assert.False(t, ok)
	assert.Contains(t, reason, "al menos 8 caracteres",
		"la primera regla que falla debe ser la de longitud mínima")
}

// Caso 2: sin mayúsculas → falla la regla de mayúscula (no la de longitud).
func TestPolicy_SinMayusculas_FallaUppercase(t *testing.T) {
	p := password.DefaultPolicy()
	ok, reason := p.Validate("alllowercase1!")

	assert.False(t, ok)
	assert.Contains(t, reason, "mayúscula")
}

// Caso 3: sin dígitos → falla la regla de dígito.
func TestPolicy_SinDigitos_FallaDigit(t *testing.T) {
	p := password.DefaultPolicy()
	ok, reason := p.Validate("NoDigitsHere!")

	assert.False(t, ok)
	assert.Contains(t, reason, "dígito")
}

// Caso 4: password válido → pasa sin razón de rechazo.
func TestPolicy_Valido_Pasa(t *testing.T) {
	p := password.DefaultPolicy()
	ok, reason := p.Validate("Valid1Pass!")

	assert.True(t, ok)
	assert.Empty(t, reason)
}

// Caso 5: excede la longitud máxima.
func TestPolicy_MuyLargo_FallaMaxLength(t *testing.T) {
	p := password.DefaultPolicy()
	p.MaxLength = 12
	ok, reason := p.Validate("Valid1Pass!ExtraLargo")

	assert.False(t, ok)
	assert.Contains(t, reason, "como máximo 12 caracteres")
}

// Caso 6: las reglas desactivadas no se evalúan.
func TestPolicy_ReglasDesactivadas_NoSeEvaluan(t *testing.T) {
	p := password.Policy{MinLength: 4}
	ok, reason := p.Validate("abcd")

	assert.True(t, ok, "con solo min-length activo, un password simple debe pasar")
	assert.Empty(t, reason)
}

// Caso 7: el orden es fijo — un password que viola varias reglas reporta
// solo la primera (minúscula antes que dígito).
func TestPolicy_OrdenFijo_PrimeraCausa(t *testing.T) {
	p := password.DefaultPolicy()
	ok, reason := p.Validate("TODOMAYUSCULAS!")

	assert.False(t, ok)
	assert.Contains(t, reason, "minúscula",
		"minúscula se evalúa antes que dígito y debe ser la causa reportada")
}
