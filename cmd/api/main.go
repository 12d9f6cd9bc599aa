package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/identity-api/internal/application/auth"
	"github.com/jhoicas/identity-api/internal/domain/password"
	"github.com/jhoicas/identity-api/internal/infrastructure/crypto"
	"github.com/jhoicas/identity-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/identity-api/internal/interfaces/http"
	"github.com/jhoicas/identity-api/pkg/config"
	"github.com/jhoicas/identity-api/pkg/jwt"
	"github.com/jhoicas/identity-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	tokens, err := jwt.NewService(jwt.Config{
		Secret:        cfg.JWT.Secret,
		Algorithm:     cfg.JWT.Algorithm,
		AccessMinutes: cfg.JWT.AccessMinutes,
		RefreshDays:   cfg.JWT.RefreshDays,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar servicio de tokens")
	}

	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	hasher := crypto.NewHasher(cfg.Hash)
	policy := password.Policy{
		MinLength:      cfg.Password.MinLength,
		MaxLength:      cfg.Password.MaxLength,
		RequireUpper:   cfg.Password.RequireUpper,
		RequireLower:   cfg.Password.RequireLower,
		RequireDigit:   cfg.Password.RequireDigit,
		RequireSpecial: cfg.Password.RequireSpecial,
	}

	authUC := auth.NewAuthUseCase(userRepo, hasher, tokens, txRunner, policy, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Identity API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:   authUC,
		Tokens:   tokens,
		UserRepo: userRepo,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
