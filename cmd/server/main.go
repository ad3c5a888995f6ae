package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vyapar/backend/internal/app"
	"vyapar/backend/internal/config"
	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/httpapi"
)

func main() {
	// release unless GIN_MODE says otherwise
	if _, ok := os.LookupEnv("GIN_MODE"); !ok {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := config.Load()
	app.SetupLogging(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid security configuration")
	}
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	a, err := app.Build(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot start")
	}

	auth, err := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute,
		httpapi.User{Username: cfg.OwnerUsername, Password: cfg.OwnerPassword, Role: domain.RoleOwner},
		httpapi.User{Username: cfg.StaffUsername, Password: cfg.StaffPassword, Role: domain.RoleStaff},
	)
	if err != nil {
		a.Close()
		log.Fatal().Err(err).Msg("cannot prepare users")
	}
	api := httpapi.New(a.Service, auth, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		EnablePprof:    cfg.EnablePprof,
		EnableMetrics:  cfg.EnableMetrics,
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// model calls and sheet scans can be slow
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Str("store", cfg.StoreBackend).Msg("ledger backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	a.Close()

	log.Info().Msg("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if strings.TrimSpace(cfg.OwnerUsername) == "" {
		return fmt.Errorf("OWNER_USERNAME must be set")
	}
	if err := validatePasswordStrength(cfg.OwnerPassword); err != nil {
		return fmt.Errorf("OWNER_PASSWORD is too weak: %w", err)
	}
	if strings.TrimSpace(cfg.StaffUsername) != "" {
		if err := validatePasswordStrength(cfg.StaffPassword); err != nil {
			return fmt.Errorf("STAFF_PASSWORD is too weak: %w", err)
		}
	}
	return nil
}

// validatePasswordStrength rejects short passwords, a single repeated character and
// a known-weak list. Bcrypt hashes are accepted as given.
func validatePasswordStrength(password string) error {
	if strings.HasPrefix(password, "$2a$") || strings.HasPrefix(password, "$2b$") || strings.HasPrefix(password, "$2y$") {
		return nil
	}
	if len(password) < 8 {
		return fmt.Errorf("must be at least 8 characters")
	}
	known := map[string]bool{
		"password": true, "password1": true, "12345678": true, "123456789": true,
		"qwertyui": true, "11111111": true, "admin123": true, "owner123": true,
		"iloveyou": true, "vyapar123": true,
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}

	allSame := true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("repeated-character password not allowed")
	}
	return nil
}
