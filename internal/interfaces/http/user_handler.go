package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/identity-api/internal/application/auth"
	"github.com/jhoicas/identity-api/internal/application/dto"
	"github.com/jhoicas/identity-api/internal/domain"
	"github.com/jhoicas/identity-api/internal/domain/repository"
)

// UserHandler maneja perfil propio y administración de usuarios.
type UserHandler struct {
	authUC   *auth.AuthUseCase
	userRepo repository.UserRepository
}

// NewUserHandler construye el handler de usuarios.
func NewUserHandler(authUC *auth.AuthUseCase, userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{authUC: authUC, userRepo: userRepo}
}

// Me godoc
// @Summary      Perfil del usuario autenticado
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_IDENTITY", Message: "se requiere autenticación"})
	}
	return c.JSON(auth.ToUserResponse(user))
}

// ChangePassword godoc
// @Summary      Cambiar password del usuario autenticado
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  dto.ChangePasswordRequest  true  "current_password, new_password"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/users/me/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "current_password y new_password son requeridos"})
	}
	if err := h.authUC.ChangePassword(GetUserID(c), in); err != nil {
		if errors.Is(err, domain.ErrCredencialesInvalidas) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "password actual incorrecto"})
		}
		if errors.Is(err, domain.ErrPolicyViolation) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "WEAK_PASSWORD", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		return internalError(c)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Listar usuarios (solo admin)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo por página"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	users, err := h.userRepo.List(page.Limit, page.Offset)
	if err != nil {
		return internalError(c)
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, auth.ToUserResponse(u))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener usuario por ID (solo admin)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "user id"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	user, err := h.userRepo.FindByID(c.Params("id"))
	if err != nil {
		return internalError(c)
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	}
	return c.JSON(auth.ToUserResponse(user))
}

// Delete godoc
// @Summary      Eliminar usuario (solo admin)
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "user id"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.userRepo.Delete(c.Params("id")); err != nil {
		return internalError(c)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
