package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"example.com/layali/planner-gateway/internal/auth"
	"example.com/layali/planner-gateway/internal/config"
	"example.com/layali/planner-gateway/internal/models"
)

// devtoken выпускает access-токен для локальной работы со шлюзом без маркетплейса.
func main() {
	userID := flag.String("user", "", "marketplace user id")
	role := flag.String("role", string(models.RolePersonal), "user role")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: devtoken -user <id> [-role personal] [-ttl 1h]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	token, expiresAt, err := verifier.NewAccessToken(*userID, models.Role(*role), *ttl)
	if err != nil {
		slog.Error("failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
}
