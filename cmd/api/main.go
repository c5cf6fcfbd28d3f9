package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/MAAB-FW/quick-cash-server/internal/adapter/handler"
	"github.com/MAAB-FW/quick-cash-server/internal/adapter/middleware"
	"github.com/MAAB-FW/quick-cash-server/internal/adapter/storage"
	"github.com/MAAB-FW/quick-cash-server/internal/core/config"
	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
	"github.com/MAAB-FW/quick-cash-server/internal/core/engine"
	"github.com/MAAB-FW/quick-cash-server/internal/core/worker"
)

func main() {
	cfg := config.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.TokenSecret == "" {
		slog.Error("TOKEN_SECRET is not set")
		os.Exit(1)
	}
	secret := []byte(cfg.TokenSecret)

	dbPool, err := storage.ConnectDB(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := storage.RunMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	store := storage.NewStore(dbPool)
	eng := engine.New(store, cfg.WebhookURL)

	authHandler := &handler.AuthHandler{Engine: eng, Secret: secret}
	accountHandler := &handler.AccountHandler{Engine: eng}
	transferHandler := &handler.TransferHandler{Engine: eng}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("QuickCash is running...")
	})

	// Public
	app.Post("/jwt", authHandler.IssueToken)
	app.Post("/createUser", accountHandler.CreateUser)
	app.Post("/login/:email", authHandler.Login)
	app.Get("/role/:email", authHandler.Role)

	// Protected
	private := app.Use(middleware.Protected(secret))
	private.Get("/userInfo", authHandler.UserInfo)
	private.Get("/users", middleware.RequireRole(store, domain.RoleAdmin), accountHandler.ListUsers)
	private.Patch("/users/:id/status", middleware.RequireRole(store, domain.RoleAdmin), accountHandler.UpdateStatus)
	private.Post("/sendMoney", middleware.Idempotency(dbPool), transferHandler.SendMoney)
	private.Post("/cashIn", middleware.Idempotency(dbPool), transferHandler.CashIn)
	private.Post("/cashOut", middleware.Idempotency(dbPool), transferHandler.CashOut)
	private.Post("/transactions/:id/action",
		middleware.RequireRole(store, domain.RoleAgent),
		middleware.Idempotency(dbPool),
		transferHandler.Settle)
	private.Get("/transactions", transferHandler.History)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker.StartWebhookWorker(workerCtx, dbPool, cfg.WebhookSecret)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	stopWorker()
	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	dbPool.Close()
	slog.Info("server exited")
}
