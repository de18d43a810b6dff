package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "library-circulation/internal/api/http"
	"library-circulation/internal/config"
	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
	"library-circulation/internal/security"
	"library-circulation/internal/service"
	"library-circulation/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	bootstrapID := flag.String("bootstrap-librarian", "", "Ensure a librarian with this ID exists and print an access token for it")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Library Circulation server...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "storage", cfg.Storage.Type)

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer backend.Close()

	svcs := service.New(backend.Store)
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	if *bootstrapID != "" {
		if err := bootstrapLibrarian(ctx, svcs, tokenManager, *bootstrapID); err != nil {
			log.Fatalf("Failed to bootstrap librarian: %v", err)
		}
	}

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      httpapi.NewRouter(svcs, tokenManager, nil),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

// bootstrapLibrarian gives a fresh deployment its first staff account.
func bootstrapLibrarian(ctx context.Context, svcs *service.Services, tm security.TokenManager, id string) error {
	user, err := svcs.Catalog.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		user = &domain.User{ID: id, Name: "Librarian " + id, Role: domain.UserRoleLibrarian}
		if err := svcs.Catalog.RegisterUser(ctx, user); err != nil {
			return err
		}
		logger.Info("Bootstrapped librarian", "user_id", id)
	} else if err != nil {
		return err
	}

	token, err := tm.GenerateAccessToken(user)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
