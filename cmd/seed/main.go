package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/availability"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/booking"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/config"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/repository"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var year int
	var file string
	var emailDomain string

	flag.IntVar(&op, "op", 0, "operation (1: weekly tour times, 2: holiday periods, 3: random bookings, 4: import blackout dates from CSV)")
	flag.IntVar(&n, "n", 0, "number of bookings to make (defaults to SEED_BOOKINGS)")
	flag.IntVar(&year, "year", time.Now().Year(), "year the holiday periods are anchored to")
	flag.StringVar(&file, "file", "", "CSV file with date,reason rows for -op 4")
	flag.StringVar(&emailDomain, "email-domain", "example.com", "mail domain of generated parents")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		slog.Info("schedule templates inserted", slog.Int("count", seed.Templates(context.Background(), repo)))
	case 2:
		slog.Info("exclusion periods inserted", slog.Int("count", seed.Exclusions(context.Background(), repo, year)))
	case 3:
		if n <= 0 {
			n = cfg.Seed.Bookings
		}

		policy, err := cfg.BookingPolicy()
		if err != nil {
			slog.Error("invalid booking settings", slog.String("error", err.Error()))
			return
		}

		// no notifier: seeded parents do not get mail
		calculator := availability.NewCalculator(repo, time.Now)
		bookings := booking.NewService(booking.NewPostgresStore(repo), nil, validator.New(validator.WithRequiredStructEnabled()))

		cnt, err := seed.Bookings(context.Background(), calculator, bookings, policy, n, emailDomain)
		if err != nil {
			slog.Error("failed to seed bookings", slog.String("error", err.Error()))
			return
		}
		slog.Info("bookings inserted", slog.Int("count", cnt))
	case 4:
		if file == "" {
			slog.Error("missing -file")
			return
		}
		f, err := os.Open(file)
		if err != nil {
			slog.Error("failed to open file", slog.String("error", err.Error()))
			return
		}
		defer f.Close()

		cnt, err := seed.ImportBlackoutDates(context.Background(), repo, f)
		if err != nil {
			slog.Error("failed to import blackout dates", slog.Int("imported", cnt), slog.String("error", err.Error()))
			return
		}
		slog.Info("blackout dates imported", slog.Int("count", cnt))
	default:
		slog.Error("unknown operation", slog.Int("op", op))
	}
}
