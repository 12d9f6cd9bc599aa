package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tipos de token emitidos. Un refresh token nunca es aceptable donde se
// requiere un access token (el middleware valida Type).
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims incluye los claims estándar JWT más los campos propios:
// Type distingue access/refresh y Scopes limita capacidades del access token.
type Claims struct {
	jwt.RegisteredClaims
	Type   string   `json:"type"`
	Scopes []string `json:"scopes,omitempty"`
}

// Config configuración del servicio de tokens. Se carga una vez al arranque
// y es inmutable durante la vida del proceso.
type Config struct {
	Secret        string
	Algorithm     string // HS256 (default), HS384, HS512
	AccessMinutes int    // TTL del access token
	RefreshDays   int    // TTL del refresh token
	Issuer        string
}

// Service emite y valida tokens firmados. Todos los timestamps se calculan
// en UTC; la zona horaria configurada de la app es solo de presentación.
type Service struct {
	cfg    Config
	method jwt.SigningMethod
	now    func() time.Time
}

// NewService construye el servicio. Falla si el secret está vacío o el
// algoritmo no es un HMAC soportado.
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	method, err := signingMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, method: method, now: func() time.Time { return time.Now().UTC() }}, nil
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("jwt: algoritmo no soportado: %s", alg)
	}
}

// IssueAccess genera un access token para el subject con los scopes dados.
// exp = iat + AccessMinutes.
func (s *Service) IssueAccess(subject string, scopes ...string) (string, error) {
	return s.issue(subject, TypeAccess, time.Duration(s.cfg.AccessMinutes)*time.Minute, scopes)
}

// IssueRefresh genera un refresh token para el subject.
// exp = iat + RefreshDays (sin scopes).
func (s *Service) IssueRefresh(subject string) (string, error) {
	return s.issue(subject, TypeRefresh, time.Duration(s.cfg.RefreshDays)*24*time.Hour, nil)
}

func (s *Service) issue(subject, typ string, ttl time.Duration, scopes []string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type:   typ,
		Scopes: scopes,
	}
	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("firmar token: %w", err)
	}
	return signed, nil
}

// Parse valida firma, expiración y estructura del token.
// Devuelve nil ante CUALQUIER fallo (firma incorrecta, expirado, malformado):
// el caller no recibe información que distinga las causas.
func (s *Service) Parse(tokenString string) *Claims {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil
	}
	return claims
}
