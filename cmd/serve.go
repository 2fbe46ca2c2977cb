package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/trainlog/trainlog/internal/analysis"
	"github.com/trainlog/trainlog/internal/api"
	"github.com/trainlog/trainlog/internal/auth"
	"github.com/trainlog/trainlog/internal/cache"
	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/database"
	"github.com/trainlog/trainlog/internal/notify/email"
	"github.com/trainlog/trainlog/internal/notify/ntfy"
	"github.com/trainlog/trainlog/internal/scheduler"
	"github.com/trainlog/trainlog/internal/summary"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Trainlog server",
	Long:  `Start the Trainlog API server and, when enabled, the scheduled summary job.`,
	Example: `trainlog serve --config config.yml
trainlog serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	authService := auth.NewService(db, auth.NewTokenManager(cfg.Auth))

	analysisService, err := newAnalysisService(ctx, cfg, db)
	if err != nil {
		log.Fatalf("failed to create analysis service: %v", err)
	}

	server, err := api.New(cfg, db, authService, analysisService, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	sched, err := startScheduler(cfg, db, analysisService)
	if err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	go func() {
		if err := server.Run(); err != nil {
			log.Error("API server error", "error", err)
			cancel()
		}
	}()

	log.Info("trainlog started successfully", "listen", cfg.Listen, "ai", analysisService.Enabled())
	<-ctx.Done()
	log.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down API server", "error", err)
	}
	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", "error", err)
		}
	}
}

// newAnalysisService wires the summary generator and the optional result cache.
func newAnalysisService(ctx context.Context, cfg *config.Config, db database.DB) (*analysis.Service, error) {
	var opts []analysis.Option
	if cfg.AI.CacheTTL > 0 {
		c := cache.NewPrefixedCache[analysis.Result](cache.New(cfg.Cache), cfg.Cache.Type, "summary")
		opts = append(opts, analysis.WithCache(c, cfg.AI.CacheTTL))
		log.Info("summary cache enabled", "type", cfg.Cache.Type, "ttl", cfg.AI.CacheTTL)
	}

	if cfg.AI.APIKey == "" {
		return analysis.NewService(db, nil, opts...), nil
	}

	generator, err := analysis.NewGeminiGenerator(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}
	return analysis.NewService(db, generator, opts...), nil
}

// newSummaryJob builds the summary job with the enabled notifiers.
func newSummaryJob(cfg *config.Config, db database.DB, analysisService *analysis.Service) *summary.Job {
	var opts []summary.Option
	if cfg.Email != nil && cfg.Email.Enabled {
		opts = append(opts, summary.WithEmail(email.New(cfg.Email)))
	}
	if cfg.Ntfy != nil && cfg.Ntfy.Enabled {
		opts = append(opts, summary.WithPush(ntfy.NewClient(cfg.Ntfy)))
	}
	return summary.NewJob(db, analysisService, cfg.ServerURL, opts...)
}

func startScheduler(cfg *config.Config, db database.DB, analysisService *analysis.Service) (*scheduler.Scheduler, error) {
	if cfg.AI.Schedule == nil || !cfg.AI.Schedule.Enabled {
		return nil, nil
	}
	if !analysisService.Enabled() {
		log.Warn("scheduled summaries are enabled but no AI API key is configured, skipping job")
		return nil, nil
	}

	sched, err := scheduler.New()
	if err != nil {
		return nil, err
	}

	job := newSummaryJob(cfg, db, analysisService)
	if err := sched.AddCronJob(
		summary.JobID,
		"Monthly training summary",
		"Generates a summary of the last 30 days for every user and sends it through the enabled notifiers",
		cfg.AI.Schedule.Cron,
		job.Execute,
	); err != nil {
		_ = sched.Stop()
		return nil, fmt.Errorf("failed to add summary job: %w", err)
	}

	sched.Start()
	return sched, nil
}
