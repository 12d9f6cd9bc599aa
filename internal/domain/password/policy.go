// Package password contiene la política de fortaleza de passwords.
// Las reglas se evalúan en orden fijo y se devuelve el mensaje de la PRIMERA
// regla que falla, para que el cliente reciba una sola causa determinística.
package password

import (
	"fmt"
	"strings"
	"unicode"
)

// Caracteres considerados "especiales" para la regla RequireSpecial.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// Policy umbrales de validación de passwords. Cada regla es independiente
// y puede desactivarse vía configuración.
type Policy struct {
	MinLength      int
	MaxLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultPolicy devuelve la política por defecto (8-50 chars, todas las clases).
func DefaultPolicy() Policy {
	return Policy{
		MinLength:      8,
		MaxLength:      50,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}
}

// Validate evalúa el password contra la política.
// Orden de evaluación: min-length → max-length → mayúscula → minúscula →
// dígito → carácter especial. Devuelve (false, razón) en la primera regla
// que falla, o (true, "") si pasa todas.
func (p Policy) Validate(plain string) (bool, string) {
	if len(plain) < p.MinLength {
		return false, fmt.Sprintf("el password debe tener al menos %d caracteres", p.MinLength)
	}
	if p.MaxLength > 0 && len(plain) > p.MaxLength {
		return false, fmt.Sprintf("el password debe tener como máximo %d caracteres", p.MaxLength)
	}
	if p.RequireUpper && !containsClass(plain, unicode.IsUpper) {
		return false, "el password debe contener al menos una letra mayúscula"
	}
	if p.RequireLower && !containsClass(plain, unicode.IsLower) {
		return false, "el password debe contener al menos una letra minúscula"
	}
	if p.RequireDigit && !containsClass(plain, unicode.IsDigit) {
		return false, "el password debe contener al menos un dígito"
	}
	if p.RequireSpecial && !strings.ContainsAny(plain, specialChars) {
		return false, "el password debe contener al menos un carácter especial"
	}
	return true, ""
}

func containsClass(s string, is func(rune) bool) bool {
	for _, r := range s {
		if is(r) {
			return true
		}
	}
	return false
}
