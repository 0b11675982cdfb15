package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/taskdeck/backend/internal/cache"
	"github.com/taskdeck/backend/internal/config"
	"github.com/taskdeck/backend/internal/db"
	"github.com/taskdeck/backend/internal/handler"
	"github.com/taskdeck/backend/internal/service"
)

// @title Taskdeck API
// @version 1.0
// @description Task management API with JWT authentication.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("postgres init failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := &db.Postgres{Pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("schema init failed", "error", err)
		os.Exit(1)
	}

	sessions, err := cache.NewSessionStore(cfg.Cache, logger)
	if err != nil {
		logger.Error("session store init failed", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	authSvc, err := service.NewAuthService(store, sessions, cfg.Auth, logger)
	if err != nil {
		logger.Error("auth service init failed", "error", err)
		os.Exit(1)
	}
	taskSvc := service.NewTaskService(store, logger)

	router := gin.Default()
	registerRoutes(router, authSvc, taskSvc)

	logger.Info("server starting", "addr", cfg.HTTP.Addr)
	if err := router.Run(cfg.HTTP.Addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func registerRoutes(router *gin.Engine, authSvc *service.AuthService, taskSvc *service.TaskService) {
	authHandler := handler.NewAuthHandler(authSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/refresh", authHandler.Refresh)

	authorized := router.Group("/", handler.AuthMiddleware(authSvc))
	authorized.POST("/tasks", taskHandler.CreateTask)
	authorized.GET("/tasks", taskHandler.ListTasks)
	authorized.PUT("/task/:id", taskHandler.UpdateTask)
	authorized.DELETE("/task/:id", taskHandler.DeleteTask)
}
