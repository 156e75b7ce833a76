package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/askai/internal/api/handlers"
	"github.com/cloo-solutions/askai/internal/config"
	"github.com/cloo-solutions/askai/internal/database"
	"github.com/cloo-solutions/askai/internal/domain"
	"github.com/cloo-solutions/askai/internal/jobs"
	"github.com/cloo-solutions/askai/internal/knowledge"
	"github.com/cloo-solutions/askai/internal/logging"
	"github.com/cloo-solutions/askai/internal/remote"
	"github.com/cloo-solutions/askai/internal/repository"
	"github.com/cloo-solutions/askai/internal/server"
	"github.com/cloo-solutions/askai/internal/service"
	"github.com/cloo-solutions/askai/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the askai API server: chat UI on /, questions on POST /ask",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides ASKAI_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Default to 10% sampling in production, 100% in development
	sampleRate := 0.1
	if cfg.Environment == "development" {
		sampleRate = 1.0
	}
	shutdownTelemetry, _ := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
		Secrets:          []string{cfg.GeminiAPIKey, cfg.OpenAIAPIKey, cfg.S3SecretKey},
	}, logger)
	defer shutdownTelemetry()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kb, rules, err := loadKnowledge(ctx, cfg, logger)
	if err != nil {
		return err
	}

	remoteClient, err := remote.New(ctx, remote.Config{
		Provider: cfg.RemoteProvider,
		APIKey:   cfg.RemoteAPIKey(),
		Model:    cfg.RemoteModel(),
		BaseURL:  cfg.RemoteBaseURL(),
		Timeout:  cfg.RemoteTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create remote client: %w", err)
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	questionLog, pool, err := openQuestionLog(ctx, cfg, !noMigrate, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	var recorder service.QuestionRecorder
	if questionLog != nil {
		recorder = questionLog
	}
	resolver := service.NewResolver(kb, rules, remoteClient, recorder, logger)

	router := server.NewRouter(server.RouterConfig{
		AskHandler:         handlers.NewAskHandler(resolver, cfg.StrictRemoteErrors, logger),
		HealthHandler:      handlers.NewHealthHandler(kb.Len(), remoteClient.Configured()),
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Bind before starting workers so an occupied port fails fast.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// The worker outlives the server so entries recorded by draining
	// requests reach the final flush.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if questionLog != nil {
		worker := jobs.NewWorker("question-log", questionLog, cfg.LogFlushInterval, logger)
		g.Go(func() error {
			worker.Start(workerCtx)
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("server started",
			zap.String("addr", ln.Addr().String()),
			zap.Int("faq_entries", kb.Len()),
			zap.Int("rules", len(rules)),
			zap.String("remote_provider", remoteClient.Provider()),
			zap.Bool("remote_configured", remoteClient.Configured()),
			zap.Bool("strict_remote_errors", cfg.StrictRemoteErrors),
			zap.Bool("question_log", questionLog != nil))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		defer stopWorker()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

func loadKnowledge(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*domain.KnowledgeBase, []domain.Rule, error) {
	src, err := sourceFor(ctx, cfg, cfg.KBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid knowledge base location: %w", err)
	}
	kb := knowledge.Load(ctx, src, logger)

	rules := domain.DefaultRules()
	if cfg.RulesPath != "" {
		rulesSrc, err := sourceFor(ctx, cfg, cfg.RulesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid rules location: %w", err)
		}
		rules = knowledge.LoadRules(ctx, rulesSrc, logger)
	}
	return kb, rules, nil
}

// openQuestionLog connects the optional question log. Without a database URL
// it returns nils and the resolver records nothing.
func openQuestionLog(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (*service.QuestionLog, *pgxpool.Pool, error) {
	if !cfg.HasDatabase() {
		logger.Info("question log disabled: no database configured")
		return nil, nil, nil
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to database")

	if migrate {
		version, err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsDir)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("migrations applied", zap.Uint("version", version))
	}

	repo := repository.NewQuestionLogRepository(pool)
	return service.NewQuestionLog(repo, service.DefaultQuestionLogBuffer, logger), pool, nil
}
