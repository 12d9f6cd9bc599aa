package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/identity-api/internal/application/auth"
	"github.com/jhoicas/identity-api/internal/application/dto"
	"github.com/jhoicas/identity-api/internal/domain/entity"
	"github.com/jhoicas/identity-api/internal/domain/repository"
	pkgjwt "github.com/jhoicas/identity-api/pkg/jwt"
)

// Locals keys para el usuario autenticado en Fiber.
const (
	LocalUserID = "user_id"
	LocalUser   = "current_user"
	LocalScopes = "scopes"
)

// AuthMiddleware valida el Bearer Token y resuelve el usuario contra el
// credential store. Tokens inválidos, de tipo refresh o con subject que ya
// no existe producen 401. El chequeo de rol es un decorator aparte
// (RequireRole): este middleware solo resuelve identidad.
func AuthMiddleware(tokens auth.TokenService, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}

		claims := tokens.Parse(tokenString)
		if claims == nil || claims.Type != pkgjwt.TypeAccess {
			// Un refresh token no es aceptable donde se requiere access token.
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}

		user, err := users.FindByID(claims.Subject)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
		}
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if !user.IsEnabled {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "ACCOUNT_DISABLED", Message: "cuenta deshabilitada"})
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUser, user)
		c.Locals(LocalScopes, claims.Scopes)
		return c.Next()
	}
}

// RequireRole autoriza solo a usuarios cuyo role_id está en la allow-list.
// Es un decorator sobre AuthMiddleware: no re-parsea el token, lee el usuario
// ya resuelto en locals. Usuario sin rol (role_id nil) → 403.
func RequireRole(roleIDs ...int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_IDENTITY", Message: "se requiere autenticación"})
		}
		if !user.HasRole(roleIDs...) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol insuficiente para esta operación"})
		}
		return c.Next()
	}
}

// RequireVerified gatea features que exigen cuenta verificada.
// No afecta al login: is_verified nunca bloquea la autenticación.
func RequireVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_IDENTITY", Message: "se requiere autenticación"})
		}
		if !user.IsVerified {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "ACCOUNT_UNVERIFIED", Message: "cuenta no verificada"})
		}
		return c.Next()
	}
}

// CurrentUser devuelve el usuario resuelto por AuthMiddleware (nil si no hay).
func CurrentUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// GetUserID devuelve el ID del usuario autenticado (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetScopes devuelve los scopes del access token presentado.
func GetScopes(c *fiber.Ctx) []string {
	s, _ := c.Locals(LocalScopes).([]string)
	return s
}
