package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/a3tai/msds-extract/internal/config"
	"github.com/a3tai/msds-extract/internal/engine"
	"github.com/a3tai/msds-extract/internal/export"
	"github.com/a3tai/msds-extract/internal/pipeline"
	"github.com/a3tai/msds-extract/internal/template"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLogger builds the zap logger for the configured level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.IsDebug() {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// collectInputs extracts marked text from every supported file in dir.
// PDF files go through the text renderer; .txt files are taken as
// already-rendered marked text. Unreadable files become failed inputs so
// they still show up in the batch results.
func collectInputs(dir string, maxSize int64, log *zap.Logger) ([]pipeline.Input, []*pipeline.Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read input directory %s: %w", dir, err)
	}

	reader := engine.NewPDFReader(log)
	var inputs []pipeline.Input
	var rejected []*pipeline.Result

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ext := strings.ToLower(filepath.Ext(e.Name()))

		switch ext {
		case ".pdf":
			if info, err := e.Info(); err == nil && info.Size() > maxSize {
				err := fmt.Errorf("file exceeds maximum size %d bytes", maxSize)
				rejected = append(rejected, &pipeline.Result{Source: path, Err: err, ErrMessage: err.Error()})
				log.Warn("skipping oversized file", zap.String("path", path))
				continue
			}
			text, err := reader.ExtractText(path)
			if err != nil {
				rejected = append(rejected, &pipeline.Result{Source: path, Err: err, ErrMessage: err.Error()})
				log.Warn("failed to extract text", zap.String("path", path), zap.Error(err))
				continue
			}
			inputs = append(inputs, pipeline.Input{Source: path, Text: text})
		case ".txt":
			in, err := pipeline.ReadInput(path)
			if err != nil {
				rejected = append(rejected, &pipeline.Result{Source: path, Err: err, ErrMessage: err.Error()})
				log.Warn("failed to read input", zap.String("path", path), zap.Error(err))
				continue
			}
			inputs = append(inputs, in)
		}
	}
	return inputs, rejected, nil
}

func run() error {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if version != "dev" {
		cfg.Version = version
	}
	log.Debug("starting", zap.String("config", cfg.String()))

	store, err := template.NewStore(cfg.TemplatesDir, log)
	if err != nil {
		return fmt.Errorf("open template store: %w", err)
	}

	scoring := template.DefaultScoring()
	scoring.MinConfidence = float64(cfg.MinRouteConfidence)
	pipe := pipeline.New(store, pipeline.Options{
		Scoring:     scoring,
		MinFuzzy:    cfg.MinFuzzyScore,
		AutoProfile: cfg.AutoProfile,
		Workers:     cfg.Workers,
	}, log)

	inputs, rejected, err := collectInputs(cfg.InputDir, cfg.MaxFileSize, log)
	if err != nil {
		return err
	}
	if len(inputs) == 0 && len(rejected) == 0 {
		return fmt.Errorf("no PDF or text files found in %s", cfg.InputDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := pipe.Batch(ctx, inputs)
	results = append(results, rejected...)

	writer, err := export.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := writer.WriteAll(results); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	log.Info("batch finished",
		zap.Int("documents", len(results)),
		zap.Int("failed", failed),
		zap.String("output", cfg.OutputDir))

	if failed == len(results) {
		return fmt.Errorf("all %d documents failed", failed)
	}
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "msds-extract: %v\n", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("msds-extract\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
