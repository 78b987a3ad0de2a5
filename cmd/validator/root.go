package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pronounce/backend/internal/config"
	"github.com/pronounce/backend/internal/logger"
	"github.com/pronounce/backend/internal/storage"
	"github.com/pronounce/backend/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options holds flags that override the environment configuration
type options struct {
	callbackURL string
	maxMiscues  int
	metricsAddr string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "validator <graphdir> <audiodir>",
		Short: "Validate ASR results for miscue tolerant decoding",
		Long: `Reads recognition results from stdin, one JSON document per blank line separated block.

For every block the transcript is checked against the reference words of its decode
graph, the word alignment is saved next to the uploaded audio and the verdict is
posted to the backend. Each block is echoed to stdout with a validation-result field.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.callbackURL, "callback-url", "", "backend verdict endpoint (overrides CALLBACK_URL)")
	cmd.Flags().IntVar(&opts.maxMiscues, "max-miscues", -1, "extra hypothesis words tolerated (overrides MAX_MISCUES)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")

	return cmd
}

func run(cmd *cobra.Command, opts *options, graphDir, audioDir string) error {
	cfg, err := config.LoadValidator()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.callbackURL != "" {
		cfg.CallbackURL = opts.callbackURL
	}
	if opts.maxMiscues >= 0 {
		cfg.MaxMiscues = opts.maxMiscues
	}

	// stdout carries results, so logs always go to stderr
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var minioCfg *storage.MinIOConfig
	if cfg.Storage.Backend == config.StorageBackendMinIO {
		c := storage.MinIOConfig(cfg.Storage.MinIO)
		minioCfg = &c
	}
	audio, err := storage.Open(ctx, audioDir, minioCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize audio storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	metrics := validation.NewMetrics(reg)
	if opts.metricsAddr != "" {
		srv := serveMetrics(opts.metricsAddr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	pipeline := validation.NewPipeline(
		validation.NewReferenceLoader(storage.NewLocalStore(graphDir)),
		audio,
		validation.NewCallbackClient(cfg.CallbackURL, cfg.CallbackAPIKey, cfg.CallbackTimeout),
		cfg.MaxMiscues,
		metrics,
		logger.Logger,
	)

	logger.Logger.Info("Validator started",
		zap.String("graph_dir", graphDir),
		zap.String("audio_dir", audioDir),
		zap.String("callback_url", cfg.CallbackURL),
		zap.Int("max_miscues", cfg.MaxMiscues),
	)

	if err := pipeline.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Logger.Info("Validator stopped")
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
