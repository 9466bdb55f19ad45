package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/careloop/frontdesk/cmd/mainconfig"
	"github.com/careloop/frontdesk/internal/actions"
	"github.com/careloop/frontdesk/internal/api/router"
	appconfig "github.com/careloop/frontdesk/internal/config"
	"github.com/careloop/frontdesk/internal/doctors"
	"github.com/careloop/frontdesk/internal/encounters"
	"github.com/careloop/frontdesk/internal/notify"
	"github.com/careloop/frontdesk/internal/observability/metrics"
	"github.com/careloop/frontdesk/internal/patients"
	"github.com/careloop/frontdesk/internal/records"
	"github.com/careloop/frontdesk/internal/scheduling"
	"github.com/careloop/frontdesk/internal/triage"
	"github.com/careloop/frontdesk/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting frontdesk API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Repositories: Postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		patientRepo   patients.Repository
		doctorRepo    doctors.Repository
		encounterRepo encounters.Repository
		recordReader  records.Reader
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		patientRepo = patients.NewPostgresRepository(pool)
		doctorRepo = doctors.NewPostgresRepository(pool)
		encounterRepo = encounters.NewPostgresRepository(pool)
		recordReader = records.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		patientRepo = patients.NewInMemoryRepository()
		doctorRepo = doctors.NewInMemoryRepository()
		encounterRepo = encounters.NewInMemoryRepository()
		recordReader = records.NewInMemoryStore()
	}

	classifier, err := buildClassifier(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build symptom classifier", "error", err)
		os.Exit(1)
	}

	emailSender, err := buildEmailSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build email sender", "error", err)
		os.Exit(1)
	}
	notifier := notify.NewService(emailSender, notify.NewLogCallDialer(logger), logger)

	// Slot math follows clinic wall-clock time.
	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Warn("invalid clinic timezone, falling back to UTC", "tz", cfg.ClinicTimezone)
		loc = time.UTC
	}
	clock := func() time.Time { return time.Now().In(loc) }

	allocator := scheduling.NewAllocator(encounterRepo)
	encounterSvc := encounters.NewService(encounterRepo, patientRepo, doctorRepo, recordReader, allocator, notifier, logger)
	encounterSvc.SetClock(clock)
	encounterSvc.SetReminderLead(cfg.ReminderLeadTime)

	reg := prometheus.NewRegistry()
	actionMetrics := metrics.NewActionMetrics(reg)

	dispatcher := actions.NewDispatcher(
		patientRepo,
		doctorRepo,
		classifier,
		allocator,
		encounterSvc,
		notifier,
		recordReader,
		actionMetrics,
		actions.Config{SlotDaysAhead: cfg.SlotDaysAhead, SlotLimit: cfg.SlotLimit},
		logger,
	)
	dispatcher.SetClock(clock)

	r := router.New(&router.Config{
		Logger:             logger,
		ActionsHandler:     actions.NewHandler(dispatcher, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildClassifier assembles the LLM chain declared by CLASSIFIER_PROVIDER.
// With no provider configured the classifier runs on the keyword table alone.
func buildClassifier(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*triage.Classifier, error) {
	var cache *triage.Cache
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		cache = triage.NewCache(redis.NewClient(opts), cfg.TriageCacheTTL)
	}

	var llm triage.LLMClient
	model := ""
	switch cfg.ClassifierProvider {
	case "bedrock":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		primary := triage.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		var fallback triage.LLMClient
		if cfg.GeminiAPIKey != "" {
			fallback, err = triage.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
			if err != nil {
				return nil, err
			}
		}
		llm = triage.NewFallbackLLMClient(primary, fallback, logger)
		model = cfg.BedrockModelID
	case "gemini":
		gemini, err := triage.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, err
		}
		llm = gemini
	case "":
		logger.Info("no classifier provider configured, using keyword fallback")
	default:
		logger.Warn("unknown classifier provider, using keyword fallback", "provider", cfg.ClassifierProvider)
	}

	return triage.NewClassifier(llm, cache, triage.ClassifierConfig{
		Model:   model,
		Timeout: cfg.ClassifierTimeout,
	}, logger), nil
}

// buildEmailSender picks the configured provider, defaulting to the logging
// stub so local runs never send real mail.
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
