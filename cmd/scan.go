package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"carrierscope/internal/api"
	"carrierscope/internal/batch"
	"carrierscope/internal/carrier"
	"carrierscope/internal/clock"
	"carrierscope/internal/config"
	"carrierscope/internal/fetch"
	"carrierscope/internal/logging"
	"carrierscope/internal/metrics"
	"carrierscope/internal/sink"
)

// newScanCmd creates and configures the 'scan' subcommand.
func newScanCmd() *cobra.Command {
	var (
		inputPath   string
		recordsPath string
		urlsPath    string
		mode        string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a batch of identifiers through the pipeline",
		Long: `Reads a line-oriented identifier file, runs every identifier through the
fetch/filter/extract pipeline with bounded concurrency, and writes the
accepted output once at the end of the run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd.Context(), inputPath, recordsPath, urlsPath, mode)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "identifier file, one per line (required)")
	cmd.Flags().StringVar(&recordsPath, "out", "", "records CSV path (overrides config)")
	cmd.Flags().StringVar(&urlsPath, "urls-out", "", "accepted-URL list path (overrides config)")
	cmd.Flags().StringVar(&mode, "mode", "", "output mode: full, urls, or both (overrides config)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runScan(ctx context.Context, inputPath, recordsPath, urlsPath, mode string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if recordsPath != "" {
		cfg.Output.RecordsPath = recordsPath
	}
	if urlsPath != "" {
		cfg.Output.URLsPath = urlsPath
	}
	if mode != "" {
		cfg.Batch.Mode = mode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	ids, err := batch.ReadIdentifiers(inputPath)
	if err != nil {
		return err
	}
	logger.Info("scan starting",
		zap.Int("identifiers", len(ids)),
		zap.String("mode", cfg.Batch.Mode),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()
	if cfg.Server.Enabled {
		server := api.NewServer(cfg.Server.Port, logger.Named("api"))
		go func() {
			if serr := server.Run(ctx); serr != nil {
				logger.Warn("ops server stopped", zap.Error(serr))
			}
		}()
	}

	orchestrator, fileSink := buildScan(cfg, logger)
	result := orchestrator.Run(ctx, ids)

	batchMode := carrier.Mode(cfg.Batch.Mode)
	if batchMode != carrier.ModeURLs {
		if err := fileSink.WriteRecords(result.Records); err != nil {
			return err
		}
	}
	if batchMode != carrier.ModeFull {
		if err := fileSink.WriteURLs(result.URLs); err != nil {
			return err
		}
	}

	logger.Info("scan finished",
		zap.Int("records", len(result.Records)),
		zap.Int("urls", len(result.URLs)),
	)
	return nil
}

func buildScan(cfg config.Config, logger *zap.Logger) (*batch.Orchestrator, *sink.FileSink) {
	var limiter *rate.Limiter
	if cfg.HTTP.RequestsPerSecond > 0 {
		burst := cfg.HTTP.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.HTTP.RequestsPerSecond), burst)
	}

	fetcher := fetch.NewRetrier(
		fetch.NewColly(fetch.CollyConfig{
			UserAgent: cfg.Lookup.UserAgent,
			Timeout:   cfg.Timeout(),
		}),
		cfg.HTTP.MaxAttempts,
		cfg.BackoffBase(),
		limiter,
		logger.Named("fetch"),
	)

	var extractor carrier.Extractor = carrier.PatternExtractor{}
	if cfg.Lookup.Extractor == config.ExtractorDOM {
		extractor = carrier.DOMExtractor{}
	}

	mode := carrier.Mode(cfg.Batch.Mode)
	filter := carrier.NewFilter(extractor, cfg.Filter.MinAgeDays, clock.System{})
	resolver := carrier.NewEmailResolver(fetcher, cfg.DeepFetchDelay(), logger.Named("deepfetch"))
	pipeline := carrier.NewPipeline(
		fetcher,
		filter,
		extractor,
		resolver,
		cfg.Lookup.BaseURL,
		mode,
		logger.Named("pipeline"),
	)

	orchestrator := batch.New(pipeline, batch.Config{
		Concurrency: cfg.Batch.Concurrency,
		SliceDelay:  cfg.SliceDelay(),
		Mode:        mode,
	}, logger.Named("batch"))

	fileSink := sink.NewFileSink(cfg.Output.RecordsPath, cfg.Output.URLsPath, logger.Named("sink"))
	return orchestrator, fileSink
}
