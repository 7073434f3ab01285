package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	adapthttp "secrets/internal/adapter/http"
	"secrets/internal/adapter/postgres"
	"secrets/internal/app"
	"secrets/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	sessionRepo := postgres.NewSessionRepo(db)
	authSvc := app.NewAuthService(db, sessionRepo, cfg.SessionSecret)
	secretSvc := app.NewSecretService(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	google, err := adapthttp.NewGoogleProvider(ctx,
		cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.CallbackURL("/auth/google/secrets"))
	cancel()
	if err != nil {
		log.Fatalf("google provider: %v", err)
	}
	github := adapthttp.NewGitHubProvider(
		cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.CallbackURL("/auth/github/secrets"))

	go sweepSessions(authSvc)

	h := adapthttp.New(authSvc, secretSvc, google, github, cfg.Secure()).Handler()
	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// sweepSessions periodically removes expired sessions.
func sweepSessions(authSvc *app.AuthService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		if err := authSvc.SweepExpired(context.Background()); err != nil {
			log.Printf("session sweep: %v", err)
		}
	}
}
