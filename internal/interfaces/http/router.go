package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/identity-api/internal/application/auth"
	"github.com/jhoicas/identity-api/internal/domain/entity"
	"github.com/jhoicas/identity-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC   *auth.AuthUseCase
	Tokens   auth.TokenService
	UserRepo repository.UserRepository
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	// Rutas protegidas (requieren Bearer Token de tipo access)
	protected := api.Group("/", AuthMiddleware(deps.Tokens, deps.UserRepo))

	userHandler := NewUserHandler(deps.AuthUC, deps.UserRepo)
	users := protected.Group("/users")
	users.Get("/me", userHandler.Me)
	users.Put("/me/password", userHandler.ChangePassword)

	// Administración de usuarios (rol admin)
	users.Get("/", RequireRole(entity.RoleAdmin), userHandler.List)
	users.Get("/:id", RequireRole(entity.RoleAdmin), userHandler.GetByID)
	users.Delete("/:id", RequireRole(entity.RoleAdmin), userHandler.Delete)
}
