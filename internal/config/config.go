package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required,notEmpty"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"28800"` // 8 hours
		Secret     string `env:"SECRET,required,notEmpty"`
	} `envPrefix:"JWT_"`
	Email struct {
		// AdminFallback receives new-booking mail when no recipient has opted in.
		AdminFallback string `env:"ADMIN_FALLBACK"`
		SMTP          struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required,notEmpty"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Booking struct {
		Enabled         bool   `env:"ENABLED" envDefault:"true"`
		MinGroupSize    int    `env:"MIN_GROUP_SIZE" envDefault:"1"`
		MaxGroupSize    int    `env:"MAX_GROUP_SIZE" envDefault:"6"`
		AdvanceDays     int    `env:"ADVANCE_DAYS" envDefault:"60"`
		ReferencePrefix string `env:"REFERENCE_PREFIX" envDefault:"CVS"`
		Timezone        string `env:"TIMEZONE" envDefault:"Australia/Sydney"`
	} `envPrefix:"BOOKING_"`
	Reminder struct {
		Enabled    bool `env:"ENABLED" envDefault:"true"`
		DaysBefore int  `env:"DAYS_BEFORE" envDefault:"2"`
	} `envPrefix:"REMINDER_"`
	RateLimit struct {
		Enabled  bool `env:"ENABLED" envDefault:"true"`
		Requests int  `env:"REQUESTS" envDefault:"10"`
		Window   int  `env:"WINDOW" envDefault:"60"` // seconds
	} `envPrefix:"RATE_LIMIT_"`
	Seed struct {
		Bookings int `env:"BOOKINGS" envDefault:"40"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// Only the first error keeps the log readable.
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// BookingPolicy snapshots the booking options for one call.
func (cfg *Config) BookingPolicy() (domain.BookingPolicy, error) {
	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return domain.BookingPolicy{}, fmt.Errorf("invalid booking timezone %q: %w", cfg.Booking.Timezone, err)
	}
	if cfg.Booking.MinGroupSize < 1 || cfg.Booking.MaxGroupSize < cfg.Booking.MinGroupSize {
		return domain.BookingPolicy{}, fmt.Errorf("invalid group size bounds [%d, %d]", cfg.Booking.MinGroupSize, cfg.Booking.MaxGroupSize)
	}

	return domain.BookingPolicy{
		Enabled:         cfg.Booking.Enabled,
		MinGroupSize:    cfg.Booking.MinGroupSize,
		MaxGroupSize:    cfg.Booking.MaxGroupSize,
		AdvanceDays:     cfg.Booking.AdvanceDays,
		ReferencePrefix: cfg.Booking.ReferencePrefix,
		Location:        loc,
	}, nil
}
