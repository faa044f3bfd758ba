package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/booking"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/config"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/notify"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/reminder"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Queues tour reminders once. Meant to be run daily by cron; running it more often
// is harmless.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.Reminder.Enabled {
		logger.Info("reminders are disabled")
		return
	}

	policy, err := cfg.BookingPolicy()
	if err != nil {
		logger.Error("invalid booking settings", "error", err)
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		return
	}
	defer ch.Close()

	if _, err := notify.DeclareQueue(ch); err != nil {
		logger.Error("failed to declare queue", "error", err)
		return
	}
	publisher := notify.NewPublisher(ch, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)

	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	bookings := booking.NewService(booking.NewPostgresStore(repo), publisher, nil, booking.WithLogger(logger))
	job := reminder.NewJob(bookings, reminder.NewRedisClaimer(rdb), publisher, cfg.Reminder.DaysBefore, logger)

	runCtx, runCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.TransactionTimeout)*time.Second)
	defer runCancel()

	if _, err := job.Run(runCtx, policy, time.Now()); err != nil {
		logger.Error("reminder run failed", "error", err)
		return
	}
}
