// The reminder worker is meant to run once per invocation under cron: it
// processes every due health-check reminder and nudges patients whose
// follow-up visits fall inside the coming week.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/careloop/frontdesk/cmd/mainconfig"
	appconfig "github.com/careloop/frontdesk/internal/config"
	"github.com/careloop/frontdesk/internal/doctors"
	"github.com/careloop/frontdesk/internal/encounters"
	"github.com/careloop/frontdesk/internal/notify"
	"github.com/careloop/frontdesk/internal/patients"
	"github.com/careloop/frontdesk/internal/worker/reminders"
	"github.com/careloop/frontdesk/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		logger.Error("reminder worker requires DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sender, err := buildEmailSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build email sender", "error", err)
		os.Exit(1)
	}
	notifier := notify.NewService(sender, notify.NewLogCallDialer(logger), logger)

	worker := reminders.NewWorker(
		encounters.NewPostgresRepository(pool),
		patients.NewPostgresRepository(pool),
		doctors.NewPostgresRepository(pool),
		notifier,
		logger,
	)

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Warn("invalid clinic timezone, falling back to UTC", "tz", cfg.ClinicTimezone)
		loc = time.UTC
	}
	worker.SetClock(func() time.Time { return time.Now().In(loc) })

	processed, err := worker.ProcessDue(ctx)
	if err != nil {
		logger.Error("reminder pass failed", "error", err)
		os.Exit(1)
	}
	logger.Info("reminder pass complete", "processed", processed)

	nudged, err := worker.ProcessUpcomingFollowUps(ctx)
	if err != nil {
		logger.Error("follow-up pass failed", "error", err)
		os.Exit(1)
	}
	logger.Info("follow-up pass complete", "nudged", nudged)
}

func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	switch cfg.EmailProvider {
	case "sendgrid":
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger), nil
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger), nil
	default:
		return notify.NewStubEmailSender(logger), nil
	}
}
