package ensemble

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
	"github.com/joseph-ayodele/receipt-recognizer/internal/engine"
	"github.com/joseph-ayodele/receipt-recognizer/internal/imaging"
)

// Coordinator fans recognition out over every engine/variant pair, settles
// all attempts, and votes on the survivors. Individual failures never abort
// the round; they surface as diagnostics.
type Coordinator struct {
	engines []engine.Engine
	trust   map[string]float64
	pool    *engine.Pool
	cache   *engine.Cache
	logger  *slog.Logger
}

func NewCoordinator(engines []engine.Engine, trust map[string]float64, pool *engine.Pool, cache *engine.Cache, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if pool == nil {
		pool = engine.NewPool(0)
	}
	return &Coordinator{
		engines: engines,
		trust:   trust,
		pool:    pool,
		cache:   cache,
		logger:  logger,
	}
}

// Run recognizes every variant with every engine and combines the results.
// Attempts run concurrently under the pool's bound; the slowest attempt
// gates the round. Run fails only when every attempt failed or came back
// blank.
func (c *Coordinator) Run(ctx context.Context, src *imaging.Source, variants []imaging.Variant) (Consensus, []string, error) {
	if len(c.engines) == 0 || len(variants) == 0 {
		return Consensus{}, nil, fmt.Errorf("%w: no engines or variants to run", common.ErrEnsembleExhausted)
	}

	attempts := make([]engine.Result, len(variants)*len(c.engines))
	var wg sync.WaitGroup
	for vi, v := range variants {
		for ei, eng := range c.engines {
			wg.Add(1)
			go func(slot int, eng engine.Engine, v imaging.Variant) {
				defer wg.Done()
				attempts[slot] = c.attempt(ctx, eng, src, v)
			}(vi*len(c.engines)+ei, eng, v)
		}
	}
	wg.Wait()

	var diags []string
	for _, r := range attempts {
		switch {
		case r.Failed():
			diags = append(diags, fmt.Sprintf("engine %s on %s failed: %v", r.EngineID, r.Technique, r.Err))
		case r.Blank():
			diags = append(diags, fmt.Sprintf("engine %s on %s returned no text", r.EngineID, r.Technique))
		}
	}

	cons := Combine(attempts, c.trust)
	if len(cons.Contributing) == 0 {
		return Consensus{}, diags, fmt.Errorf("%w: all %d attempts failed or were blank", common.ErrEnsembleExhausted, len(attempts))
	}

	c.logger.Info("ensemble.settled",
		"attempts", len(attempts),
		"survivors", len(cons.Contributing),
		"agreement", cons.Agreement,
		"confidence", cons.Confidence,
		"engine_id", cons.EngineID,
		"technique", cons.Technique)
	return cons, diags, nil
}

// RunSingle recognizes one variant with the first engine only. The fast
// path skips voting entirely; the result is still cached.
func (c *Coordinator) RunSingle(ctx context.Context, src *imaging.Source, variant imaging.Variant) (Consensus, []string, error) {
	if len(c.engines) == 0 {
		return Consensus{}, nil, fmt.Errorf("%w: no engines configured", common.ErrEnsembleExhausted)
	}
	r := c.attempt(ctx, c.engines[0], src, variant)
	if r.Failed() {
		return Consensus{}, nil, fmt.Errorf("%w: engine %s on %s: %v", common.ErrEnsembleExhausted, r.EngineID, r.Technique, r.Err)
	}
	if r.Blank() {
		return Consensus{}, nil, fmt.Errorf("%w: engine %s on %s returned no text", common.ErrEnsembleExhausted, r.EngineID, r.Technique)
	}
	return Combine([]engine.Result{r}, c.trust), nil, nil
}

// attempt runs one engine against one variant, consulting the cache first.
// Errors are folded into the returned result.
func (c *Coordinator) attempt(ctx context.Context, eng engine.Engine, src *imaging.Source, v imaging.Variant) engine.Result {
	key := engine.CacheKey{
		Hash:      src.Hash,
		ModTime:   src.ModTime.UnixNano(),
		Size:      src.Size,
		EngineID:  eng.ID(),
		Technique: v.Technique,
	}
	if c.cache != nil {
		if r, ok := c.cache.Get(key); ok {
			c.logger.Debug("ensemble.cache_hit", "engine_id", eng.ID(), "technique", v.Technique)
			return r
		}
	}

	var res engine.Result
	err := c.pool.Do(ctx, func() error {
		r, err := eng.Recognize(ctx, v.Path)
		if err != nil && r.Err == nil {
			r.Err = err
		}
		if r.EngineID == "" {
			r.EngineID = eng.ID()
		}
		r.Technique = v.Technique
		res = r
		return nil
	})
	if err != nil {
		// Pool admission failed; the context is gone.
		return engine.Result{EngineID: eng.ID(), Technique: v.Technique, Err: err}
	}
	if c.cache != nil {
		res = c.cache.Put(key, res)
	}
	return res
}
