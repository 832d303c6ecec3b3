package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-books-etl/config"
	"github.com/aluiziolira/go-books-etl/models"
	"github.com/aluiziolira/go-books-etl/pipeline"
	"github.com/aluiziolira/go-books-etl/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultConfig()
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("BOOKS_OUTPUT"); ok {
		outputDefault = value
	}
	baseURLDefault := defaultCfg.BaseURL
	if value, ok := config.EnvString("BOOKS_BASE_URL"); ok {
		baseURLDefault = value
	}
	delayDefault := int(defaultCfg.Delay / time.Millisecond)
	if value, ok, err := config.EnvInt("BOOKS_DELAY_MS"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid BOOKS_DELAY_MS: %v\n", err)
		os.Exit(1)
	} else if ok {
		delayDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("BOOKS_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	outputFile := flag.String("output", outputDefault, "Output artifact path")
	outputFormat := flag.String("format", "csv", "Output format: csv, json, or dual")
	delayMs := flag.Int("delay", delayDefault, "Delay before each detail fetch (milliseconds)")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "Request timeout (seconds)")
	baseURL := flag.String("base-url", baseURLDefault, "Alternative base URL (useful for mirrors or local testing)")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.BaseURL = *baseURL
	cfg.Delay = time.Duration(*delayMs) * time.Millisecond
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting crawl",
		slog.String("base_url", cfg.BaseURL),
		slog.String("output", cfg.OutputFile),
		slog.Duration("delay", cfg.Delay),
	)

	crawler, err := scraper.NewCrawler(cfg)
	if err != nil {
		slog.Error("initialising crawler", slog.Any("error", err))
		os.Exit(1)
	}

	writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(crawler.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result, runErr := crawler.Run(ctx, writer)
	closeErr := writer.Close()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	if runErr != nil {
		slog.Error("crawl failed", slog.Any("error", runErr))
		// A run either completes or aborts entirely; drop the partial output.
		removeArtifacts(cfg.OutputFormat, cfg.OutputFile)
		os.Exit(1)
	}

	if closeErr != nil {
		slog.Error("close writer", slog.Any("error", closeErr))
		os.Exit(1)
	}

	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("crawl completed", slog.Int("records", result.TotalItems))
	printSummary(result, cfg.OutputFile)
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "json":
		return pipeline.NewJSONWriter(filename)
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "dual":
		jsonFilename := strings.TrimSuffix(filename, ".csv") + ".json"
		return pipeline.NewDualWriter(filename, jsonFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func removeArtifacts(format, filename string) {
	paths := []string{filename}
	if format == "dual" {
		paths = append(paths, strings.TrimSuffix(filename, ".csv")+".json")
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Error("remove partial output", slog.String("path", path), slog.Any("error", err))
		}
	}
}

func printSummary(result *models.CrawlResult, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")
	fmt.Printf("  Total items:      %d\n", result.TotalItems)
	fmt.Printf("  Categories:       %d\n", result.CategoryCount)
	fmt.Printf("  Pages fetched:    %d\n", result.PageCount)
	fmt.Printf("  Detail failures:  %d\n", result.DetailFailures)
	fmt.Printf("  Duration:         %v\n", result.EndTime.Sub(result.StartTime))
	fmt.Printf("  Output file:      %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
