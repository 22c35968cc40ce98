package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/manojdaspy/inspection-system/internal/application/cycle"
	"github.com/manojdaspy/inspection-system/internal/application/driver"
	"github.com/manojdaspy/inspection-system/internal/config"
	"github.com/manojdaspy/inspection-system/internal/domain"
	"github.com/manojdaspy/inspection-system/internal/ports"
	"github.com/manojdaspy/inspection-system/pkg/adapters/aggregate"
	"github.com/manojdaspy/inspection-system/pkg/adapters/capture/sim"
	"github.com/manojdaspy/inspection-system/pkg/adapters/events"
	eventmem "github.com/manojdaspy/inspection-system/pkg/adapters/events/memory"
	"github.com/manojdaspy/inspection-system/pkg/adapters/events/zaplog"
	"github.com/manojdaspy/inspection-system/pkg/adapters/metrics/prometheus"
	"github.com/manojdaspy/inspection-system/pkg/adapters/pipeline"
	storagemem "github.com/manojdaspy/inspection-system/pkg/adapters/storage/memory"
	httpapi "github.com/manojdaspy/inspection-system/pkg/api/http"
)

func newRunCmd() *cobra.Command {
	var (
		cycles       int
		printReports bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run inspection cycles",
		Long: `Run a fixed number of inspection cycles (0 runs until interrupted).
The process exits cleanly on interrupt after the in-flight cycle
finalizes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runInspection(cycles, printReports)
		},
	}

	runCmd.Flags().IntVar(&cycles, "cycles", -1,
		"number of cycles to run (overrides INSPECT_CYCLES, 0 = until interrupted)")
	runCmd.Flags().BoolVar(&printReports, "report", false,
		"print the full text report after each cycle")

	return runCmd
}

func runInspection(cycleOverride int, printReports bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cycleOverride >= 0 {
		cfg.Driver.Cycles = cycleOverride
	}

	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting inspection system",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.Strings("sources", cfg.Sources.IDs),
		zap.Int("cycles", cfg.Driver.Cycles))

	// Adapters
	resolution := domain.Resolution{Width: cfg.Sources.Width, Height: cfg.Sources.Height}
	sources := make([]ports.CaptureSource, 0, len(cfg.Sources.IDs))
	for _, id := range cfg.Sources.IDs {
		profile := sim.NewRandomProfile(
			cfg.Sources.LatencyMin,
			cfg.Sources.LatencyMax,
			cfg.Sources.FailureRate,
		)
		sources = append(sources, sim.NewCamera(id, resolution, profile, logger))
	}

	proc := pipeline.New(pipeline.Config{}, logger)
	aggregator := aggregate.New(cfg.Aggregation.PassThreshold, logger)

	logSink := zaplog.NewSink(cfg.Events.BufferSize, logger.Named("events"))
	eventBuffer := eventmem.NewBuffer(cfg.Events.BufferSize)
	eventSink := events.Tee(logSink, eventBuffer)

	history := storagemem.NewHistory(cfg.Driver.HistorySize)
	metricsCollector := prometheus.NewCollector()

	// Application components
	orchestrator, err := cycle.NewOrchestrator(
		sources,
		proc,
		eventSink,
		metricsCollector,
		logger,
		cycle.Options{
			Deadline:       cfg.Cycle.Deadline,
			Grace:          cfg.Cycle.Grace,
			MaxAttempts:    cfg.Cycle.MaxAttempts,
			RetryDelay:     cfg.Cycle.RetryDelay,
			AttemptTimeout: cfg.Cycle.AttemptTimeout,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	drv := driver.New(
		orchestrator,
		aggregator,
		eventSink,
		metricsCollector,
		logger,
		cfg.Driver.Interval,
	)
	drv.OnReport = func(report *domain.Report) {
		history.Append(report)
		printCycleLine(report, cfg.Driver.Cycles)
		if printReports {
			fmt.Print(report.FormatText())
		}
	}

	// Observability server
	httpServer := httpapi.NewServer(&httpapi.Config{
		Port:    cfg.HTTPPort,
		Driver:  drv,
		Events:  eventBuffer,
		History: history,
		Logger:  logger,
	})

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Run until done or interrupted; the in-flight cycle finalizes first.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := drv.Run(ctx, cfg.Driver.Cycles)

	printSummary(drv.Stats().Summary())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := eventSink.Close(); err != nil {
		logger.Error("event sink close error", zap.Error(err))
	}

	logger.Info("inspection system shut down complete")
	return runErr
}

// printCycleLine prints the one-line colored result for a cycle.
func printCycleLine(report *domain.Report, totalCycles int) {
	symbol := "✓"
	color := "\033[92m"
	if report.Verdict != domain.VerdictPass {
		symbol = "✗"
		color = "\033[91m"
	}

	progress := fmt.Sprintf("%02d", report.CycleSeq)
	if totalCycles > 0 {
		progress = fmt.Sprintf("%02d/%02d", report.CycleSeq, totalCycles)
	}

	fmt.Printf("%s[Cycle %s] %s %s\033[0m - Score: %.2f - Defects: %d - Time: %dms\n",
		color, progress, symbol, report.Verdict,
		report.Score, report.Defects, report.Elapsed.Milliseconds())
}

// printSummary prints the final run statistics block.
func printSummary(s driver.Summary) {
	rule := "============================================================"
	fmt.Printf("\n%s\n", rule)
	fmt.Printf("  INSPECTION SUMMARY\n")
	fmt.Printf("%s\n", rule)
	fmt.Printf("Total Cycles:        %d\n", s.TotalCycles)
	fmt.Printf("Passed:              %d\n", s.Passed)
	fmt.Printf("Failed:              %d\n", s.Failed)
	fmt.Printf("Pass Rate:           %.1f%%\n", s.PassRate*100)
	fmt.Printf("Average Cycle Time:  %dms\n", s.AvgCycleMS)
	fmt.Printf("Total Defects:       %d\n", s.TotalDefects)
	if len(s.CaptureFailures) > 0 {
		fmt.Printf("Capture Failures:\n")
		for id, n := range s.CaptureFailures {
			fmt.Printf("  %s: %d\n", id, n)
		}
	}
	fmt.Printf("%s\n\n", rule)
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
