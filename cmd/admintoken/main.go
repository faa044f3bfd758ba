package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/handler"
)

// Prints a signed admin token for the staff routes. Only JWT_SECRET and
// JWT_EXPIRATION are read from the environment.
func main() {
	var subject string
	var ttl time.Duration

	flag.StringVar(&subject, "sub", "", "who the token is issued to, e.g. an email address")
	flag.DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRATION)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var cfg struct {
		JWT struct {
			Expiration int    `env:"EXPIRATION" envDefault:"28800"`
			Secret     string `env:"SECRET,required,notEmpty"`
		} `envPrefix:"JWT_"`
	}
	if err := env.Parse(&cfg); err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if subject == "" {
		logger.Error("missing -sub")
		os.Exit(2)
	}
	if ttl <= 0 {
		ttl = time.Duration(cfg.JWT.Expiration) * time.Second
	}

	token, err := handler.IssueToken(cfg.JWT.Secret, subject, handler.RoleAdmin, ttl, time.Now())
	if err != nil {
		logger.Error("failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println(token)
}
