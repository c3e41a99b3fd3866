package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
	"github.com/joseph-ayodele/receipt-recognizer/internal/engine"
)

func TestBuildDefaultEngineSet(t *testing.T) {
	engines, weights, err := engine.Build(common.DefaultEngines(), engine.Deps{})
	require.NoError(t, err)

	require.Len(t, engines, 3)
	assert.Equal(t, "tesseract-auto", engines[0].ID())
	assert.Equal(t, "tesseract-block", engines[1].ID())
	assert.Equal(t, "tesseract-sparse", engines[2].ID())

	assert.InDelta(t, 0.4, weights["tesseract-auto"], 1e-9)
	assert.InDelta(t, 0.3, weights["tesseract-block"], 1e-9)
	assert.InDelta(t, 0.3, weights["tesseract-sparse"], 1e-9)
}

func TestBuildSkipsDisabled(t *testing.T) {
	cfgs := common.DefaultEngines()
	cfgs[1].Enabled = false

	engines, weights, err := engine.Build(cfgs, engine.Deps{})
	require.NoError(t, err)

	assert.Len(t, engines, 2)
	_, ok := weights["tesseract-block"]
	assert.False(t, ok)
}

func TestBuildUnknownProvider(t *testing.T) {
	cfgs := []common.EngineConfig{{ID: "x", Provider: "cloud-vision", Enabled: true}}

	_, _, err := engine.Build(cfgs, engine.Deps{})
	assert.ErrorContains(t, err, "unknown engine provider")
}

func TestBuildNoneEnabled(t *testing.T) {
	cfgs := []common.EngineConfig{{ID: "x", Provider: "gosseract", Enabled: false}}

	_, _, err := engine.Build(cfgs, engine.Deps{})
	assert.ErrorContains(t, err, "no engines enabled")
}

type nullEngine struct{ id string }

func (n nullEngine) ID() string { return n.id }
func (n nullEngine) Recognize(context.Context, string) (engine.Result, error) {
	return engine.Result{EngineID: n.id, Text: "ok", Confidence: 0.9}, nil
}

func TestRegisterCustomProvider(t *testing.T) {
	engine.Register("null", func(cfg common.EngineConfig, _ engine.Deps) (engine.Engine, error) {
		return nullEngine{id: cfg.ID}, nil
	})

	engines, _, err := engine.Build([]common.EngineConfig{
		{ID: "n1", Provider: "null", Weight: 1, Enabled: true},
	}, engine.Deps{})
	require.NoError(t, err)
	require.Len(t, engines, 1)

	res, err := engines[0].Recognize(context.Background(), "ignored.png")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
}
