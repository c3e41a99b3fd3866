package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
	"github.com/joseph-ayodele/receipt-recognizer/internal/pipeline"
)

func main() {
	var (
		path       = flag.String("path", "", "receipt file to recognize (required)")
		profileStr = flag.String("profile", "", "processing profile: FAST|BALANCED|ACCURATE|MAXIMUM")
		configPath = flag.String("config", "", "optional YAML config file")
		timeout    = flag.Duration("timeout", 2*time.Minute, "per-file processing timeout")
	)
	flag.Parse()

	if *path == "" {
		fallbackLogger().Error("usage", "cmd", "recognize -path <file> [-profile FAST|BALANCED|ACCURATE|MAXIMUM]")
		os.Exit(2)
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fallbackLogger().Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fallbackLogger().Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.Log)
	slog.SetDefault(logger)

	if *profileStr == "" {
		*profileStr = cfg.Profiles.Default
	}
	profile, ok := constants.ParseProfile(*profileStr)
	if !ok {
		logger.Error("unknown profile", "profile", *profileStr, "known", constants.Profiles())
		os.Exit(2)
	}

	p, err := pipeline.NewProcessor(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		os.Exit(1)
	}

	ctx, cancel := common.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res := p.Process(ctx, *path, profile)

	// Result JSON goes to stdout; logs stay on stderr.
	if _, err := os.Stdout.Write(append(res.JSON(), '\n')); err != nil {
		logger.Error("write result", "error", err)
		os.Exit(1)
	}
	if !res.Success {
		os.Exit(1)
	}
}

// buildLogger honors log.format and log.level from configuration.
func buildLogger(cfg common.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func fallbackLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
