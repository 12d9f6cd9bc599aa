package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// ErrCredencialesInvalidas cubre tanto "usuario no existe" como "password
// incorrecto": el caller no debe poder distinguirlos (anti-enumeración).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrCredencialesInvalidas = errors.New("credenciales inválidas")
	ErrCuentaDeshabilitada   = errors.New("cuenta deshabilitada")
	ErrCuentaNoVerificada    = errors.New("cuenta no verificada")
	ErrEmailAlreadyExists    = errors.New("el email ya está registrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrPolicyViolation       = errors.New("el password no cumple la política de seguridad")
)
