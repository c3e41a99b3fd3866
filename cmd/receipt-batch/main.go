package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
	"github.com/joseph-ayodele/receipt-recognizer/internal/export"
	"github.com/joseph-ayodele/receipt-recognizer/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir         = flag.String("dir", "", "directory to process receipts from (required)")
		out         = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		profileStr  = flag.String("profile", "", "processing profile: FAST|BALANCED|ACCURATE|MAXIMUM")
		configPath  = flag.String("config", "", "optional YAML config file")
		concurrency = flag.Int("concurrency", 4, "files processed in parallel")
		timeout     = flag.Duration("timeout", 2*time.Minute, "per-file processing timeout")
		fromStr     = flag.String("from", "", "keep only receipts dated on or after YYYY-MM-DD")
		toStr       = flag.String("to", "", "keep only receipts dated on or before YYYY-MM-DD")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		parentDir := filepath.Dir(*dir)
		*out = filepath.Join(parentDir, "receipts.xlsx")
	}
	if *concurrency < 1 {
		*concurrency = 1
	}

	var from, to *time.Time
	if *fromStr != "" {
		parsed, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			printError("Error: invalid --from date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		from = &parsed
	}
	if *toStr != "" {
		parsed, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			printError("Error: invalid --to date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		to = &parsed
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid config: %v\n", err)
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

	paths, err := collectReceipts(*dir)
	if err != nil {
		logger.Error("scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		logger.Warn("no recognizable files found", "dir", *dir)
	}
	logger.Info("batch.start", "dir", *dir, "files", len(paths), "profile", string(profile), "concurrency", *concurrency)

	p, err := pipeline.NewProcessor(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		os.Exit(1)
	}

	results := make([]pipeline.Result, len(paths))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)
	for i, path := range paths {
		g.Go(func() error {
			fileCtx, cancel := common.WithTimeout(ctx, *timeout)
			defer cancel()

			res := p.Process(fileCtx, path, profile)
			results[i] = res
			logger.Info("batch.file.done",
				"path", path,
				"success", res.Success,
				"confidence", res.Confidence,
				"duration_ms", res.ProcessingMS)
			return nil
		})
	}
	// Workers report per-file failures through their Result; Wait only
	// gates completion.
	_ = g.Wait()

	kept := filterByDate(results, from, to)

	processed, invalid, failures := 0, 0, 0
	for _, res := range kept {
		switch {
		case !res.Success:
			failures++
		case res.Validation != nil && !res.Validation.IsValid:
			invalid++
			processed++
		default:
			processed++
		}
	}

	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := export.NewService(logger).ReceiptsXLSX(kept)
	if err != nil {
		logger.Error("failed to export receipts", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	hits, misses := p.CacheStats()
	logger.Info("batch processing complete",
		"files_scanned", len(paths),
		"files_processed", processed,
		"invalid", invalid,
		"failures", failures,
		"cache_hits", hits,
		"cache_misses", misses,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files scanned: %d\n", len(paths))
	fmt.Printf("- Files processed: %d\n", processed)
	fmt.Printf("- Invalid records: %d\n", invalid)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}

// collectReceipts walks dir and returns recognizable files in walk order.
// Hidden files and directories are skipped; the root itself is exempt so
// an explicitly named hidden directory still gets scanned.
func collectReceipts(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if constants.IsAllowedExt(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// filterByDate keeps results whose transaction date falls inside the
// window. Failed runs carry no date and always stay so the report
// accounts for every file.
func filterByDate(results []pipeline.Result, from, to *time.Time) []pipeline.Result {
	if from == nil && to == nil {
		return results
	}
	kept := make([]pipeline.Result, 0, len(results))
	for _, res := range results {
		if res.Success && res.Record != nil {
			day := res.Record.Date
			if from != nil && day.Before(*from) {
				continue
			}
			if to != nil && !day.Before(to.AddDate(0, 0, 1)) {
				continue
			}
		}
		kept = append(kept, res)
	}
	return kept
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
