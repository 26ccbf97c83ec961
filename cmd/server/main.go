package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sumire/collab/internal/config"
	"github.com/sumire/collab/internal/docstore"
	"github.com/sumire/collab/internal/handler"
	"github.com/sumire/collab/internal/repository"
	"github.com/sumire/collab/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := docstore.NewPostgres(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		return err
	}

	slog.Info("database connected")

	userRepo := repository.NewUserRepository(store)
	accountRepo := repository.NewAccountRepository(store)
	projectRepo := repository.NewProjectRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	authSvc := service.NewAuthService(userRepo, accountRepo, service.AuthConfig{
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
		JWTSecret:          cfg.JWTSecret,
		FrontendURL:        cfg.FrontendURL,
	})
	membershipSvc := service.NewMembershipService(userRepo, projectRepo, notificationRepo)
	projectSvc := service.NewProjectService(userRepo, projectRepo)

	authHandler := handler.NewAuthHandler(authSvc)
	projectHandler := handler.NewProjectHandler(projectSvc, membershipSvc)
	invitationHandler := handler.NewInvitationHandler(membershipSvc)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = handler.NewAppValidator()

	e.Use(middleware.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/google", authHandler.GoogleRedirect)
	auth.GET("/google/callback", authHandler.GoogleCallback)
	auth.GET("/github", authHandler.GitHubRedirect)
	auth.GET("/github/callback", authHandler.GitHubCallback)

	protected := api.Group("", handler.JWTAuth(authSvc))
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/me", authHandler.Me)

	protected.GET("/projects", projectHandler.List)
	protected.POST("/projects", projectHandler.Create)
	protected.GET("/projects/:id", projectHandler.Get)
	protected.DELETE("/projects/:id", projectHandler.Delete)
	protected.PUT("/projects/:id/whiteboard", projectHandler.UpdateWhiteboard)
	protected.PUT("/projects/:id/progress", projectHandler.UpdateProgress)
	protected.POST("/projects/:id/updates", projectHandler.AddUpdate)
	protected.DELETE("/projects/:id/updates/:index", projectHandler.DeleteUpdate)
	protected.POST("/projects/:id/resources", projectHandler.AddResource)
	protected.DELETE("/projects/:id/resources/:index", projectHandler.DeleteResource)
	protected.DELETE("/projects/:id/members/:userID", projectHandler.RemoveMember)

	protected.GET("/invitations", invitationHandler.List)
	protected.POST("/invitations", invitationHandler.Send)
	protected.POST("/invitations/:projectID/accept", invitationHandler.Accept)
	protected.POST("/invitations/:projectID/decline", invitationHandler.Decline)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
