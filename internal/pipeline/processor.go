package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
	"github.com/joseph-ayodele/receipt-recognizer/internal/engine"
	"github.com/joseph-ayodele/receipt-recognizer/internal/ensemble"
	"github.com/joseph-ayodele/receipt-recognizer/internal/fields"
	"github.com/joseph-ayodele/receipt-recognizer/internal/imaging"
	"github.com/joseph-ayodele/receipt-recognizer/internal/structure"
)

// Processor owns the full recognition pipeline plus the cache and worker
// pool shared across runs. Construct once at startup; Process is safe for
// concurrent use.
type Processor struct {
	cfg       *common.Config
	logger    *slog.Logger
	imgCfg    imaging.Config
	pre       *imaging.Preprocessor
	cache     *engine.Cache
	pool      *engine.Pool
	coord     *ensemble.Coordinator
	extractor *fields.Extractor
	validator *fields.Validator
}

// NewProcessor wires the pipeline from configuration: engines from the
// provider registry, one shared cache and bounded pool, preprocessing,
// extraction, and validation. A nil config loads defaults.
func NewProcessor(cfg *common.Config, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		loaded, err := common.LoadConfig("")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	engines, trust, err := engine.Build(cfg.Engines, engine.Deps{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("build engines: %w", err)
	}

	imgCfg := imaging.Config{
		MaxSizeMB:     cfg.Files.MaxSizeMB,
		MinWidth:      cfg.Files.MinWidth,
		MinHeight:     cfg.Files.MinHeight,
		MaxWidth:      cfg.Files.MaxWidth,
		MaxHeight:     cfg.Files.MaxHeight,
		PDFRenderDPI:  cfg.Preprocess.PDFRenderDPI,
		UpscaleFactor: cfg.Preprocess.UpscaleFactor,
		Techniques:    cfg.Preprocess.Techniques,
		ArtifactDir:   cfg.Artifacts.Dir,
	}

	cache := engine.NewCache()
	pool := engine.NewPool(cfg.Pool.Size)

	return &Processor{
		cfg:       cfg,
		logger:    logger,
		imgCfg:    imgCfg,
		pre:       imaging.NewPreprocessor(imgCfg, logger),
		cache:     cache,
		pool:      pool,
		coord:     ensemble.NewCoordinator(engines, trust, pool, cache, logger),
		extractor: fields.NewExtractor(logger),
		validator: fields.NewValidator(cfg.Validation),
	}, nil
}

// CacheStats reports recognition cache hits and misses since startup.
func (p *Processor) CacheStats() (hits, misses int64) {
	return p.cache.Stats()
}

// Process runs one receipt through the profile's pipeline. It always
// returns a Result; callers impose timeouts through ctx. Intermediate
// variant files are removed on every exit path.
func (p *Processor) Process(ctx context.Context, path string, profile constants.Profile) Result {
	start := time.Now()
	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)
	ctx = common.WithProfile(ctx, string(profile))
	logger := p.logger.With("run_id", runID, "profile", string(profile))

	res := Result{Source: path, Profile: profile}
	fail := func(err error) Result {
		res.Success = false
		res.Err = err
		res.Error = err.Error()
		res.Text = ""
		res.Record = nil
		res.ProcessingMS = time.Since(start).Milliseconds()
		logger.Error("pipeline.failed", "path", path, "err", err)
		return res
	}

	logger.Info("pipeline.start", "path", path)

	src, err := imaging.LoadSource(ctx, path, p.imgCfg, logger)
	if err != nil {
		return fail(err)
	}
	res.Diagnostics = append(res.Diagnostics, src.Diagnostics...)

	runDir := p.pre.ArtifactDir(runID)
	defer func() {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			logger.Warn("pipeline.cleanup_failed", "dir", runDir, "err", rmErr)
		}
	}()

	variants, preDiags, err := p.variantsFor(ctx, profile, src, runID)
	res.Diagnostics = append(res.Diagnostics, preDiags...)
	if err != nil {
		return fail(err)
	}

	cons, recDiags, err := p.recognize(ctx, profile, src, variants)
	res.Diagnostics = append(res.Diagnostics, recDiags...)
	if err != nil {
		return fail(err)
	}
	res.Text = cons.Text
	res.Agreement = cons.Agreement
	res.EngineID = cons.EngineID
	res.Technique = cons.Technique

	opts := p.structureOptions(profile, cons.Text, &res)

	rec, fieldDiags := p.extractor.Extract(cons.Text, opts)
	res.Diagnostics = append(res.Diagnostics, fieldDiags...)
	rep := p.validator.Validate(rec)

	res.Record = &rec
	res.Validation = &rep
	res.Confidence = finalConfidence(cons.Confidence, rec.Confidence)
	res.Success = true
	res.ProcessingMS = time.Since(start).Milliseconds()

	logger.Info("pipeline.done",
		"confidence", res.Confidence,
		"agreement", res.Agreement,
		"technique", res.Technique,
		"engine_id", res.EngineID,
		"valid", rep.IsValid,
		"duration_ms", res.ProcessingMS)
	return res
}

// variantsFor renders preprocessing output for the profile. Fast skips
// the technique fan and recognizes the original image unless configured
// to preprocess.
func (p *Processor) variantsFor(ctx context.Context, profile constants.Profile, src *imaging.Source, runID string) ([]imaging.Variant, []string, error) {
	if profile == constants.ProfileFast && !p.cfg.Profiles.FastPreprocess {
		v, err := p.pre.Original(src, runID)
		if err != nil {
			return nil, nil, err
		}
		return []imaging.Variant{v}, nil, nil
	}
	return p.pre.Variants(ctx, src, runID)
}

// recognize runs one engine for Fast, the full ensemble otherwise.
func (p *Processor) recognize(ctx context.Context, profile constants.Profile, src *imaging.Source, variants []imaging.Variant) (ensemble.Consensus, []string, error) {
	if profile == constants.ProfileFast {
		return p.coord.RunSingle(ctx, src, variants[0])
	}
	return p.coord.Run(ctx, src, variants)
}

// structureOptions runs structural analysis for Accurate and Maximum. A
// structure failure degrades to unstructured extraction with a
// diagnostic; it never fails the run.
func (p *Processor) structureOptions(profile constants.Profile, text string, res *Result) fields.Options {
	if profile != constants.ProfileAccurate && profile != constants.ProfileMaximum {
		return fields.Options{}
	}
	analysis, err := structure.Analyze(text)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("structure analysis failed: %v; using unstructured extraction", err))
		return fields.Options{}
	}

	opts := fields.Options{Items: itemsFrom(analysis)}
	if profile == constants.ProfileMaximum {
		opts.TableCount = len(analysis.Tables)
		opts.Prices = pricesFrom(analysis)
		if opts.TableCount > 0 {
			res.Diagnostics = append(res.Diagnostics,
				fmt.Sprintf("structure: %d table(s) spanning %d row(s)", len(analysis.Tables), tableRows(analysis.Tables)))
		}
	}
	return opts
}

func itemsFrom(a structure.Analysis) []fields.LineItem {
	items := make([]fields.LineItem, 0, a.ItemCount())
	for _, el := range a.Items {
		qty := el.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, fields.LineItem{Quantity: qty, Description: el.Description, Price: el.Price})
	}
	for _, el := range a.Lists {
		items = append(items, fields.LineItem{Quantity: el.Quantity, Description: el.Description})
	}
	return items
}

// pricesFrom surfaces bare price lines so labeled breakdown entries
// (subtotal, discount, change) can reach the record.
func pricesFrom(a structure.Analysis) []fields.LineItem {
	prices := make([]fields.LineItem, 0, len(a.Prices))
	for _, el := range a.Prices {
		prices = append(prices, fields.LineItem{Quantity: 1, Description: el.Description, Price: el.Price})
	}
	return prices
}

func tableRows(tables []structure.Table) int {
	n := 0
	for _, t := range tables {
		n += len(t.Rows)
	}
	return n
}

// finalConfidence blends recognition and extraction confidence equally:
// a perfectly parsed record from shaky text must not read as certain,
// nor the reverse.
func finalConfidence(consensus, record float64) float64 {
	return (consensus + record) / 2
}
