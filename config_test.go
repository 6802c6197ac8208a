package blockshard

import (
	"os"
	"path/filepath"
	"testing"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

func TestLoadWorldConfigDefaults(t *testing.T) {
	cfg, err := loadWorldConfig()
	assert.NilError(t, err)
	assert.Equal(t, DefaultNamespace, cfg.Namespace)
	assert.Equal(t, uint64(DefaultTickRate), cfg.TickRate)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestLoadWorldConfigFromEnv(t *testing.T) {
	t.Setenv("BLOCKSHARD_NAMESPACE", "overworld")
	t.Setenv("BLOCKSHARD_TICK_RATE", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := loadWorldConfig()
	assert.NilError(t, err)
	assert.Equal(t, "overworld", cfg.Namespace)
	assert.Equal(t, uint64(10), cfg.TickRate)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestWorldConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*WorldConfig)
	}{
		{"empty namespace", func(c *WorldConfig) { c.Namespace = "" }},
		{"zero tick rate", func(c *WorldConfig) { c.TickRate = 0 }},
		{"tick rate above max", func(c *WorldConfig) { c.TickRate = MaxTickRate + 1 }},
		{"tick interval rounds to zero", func(c *WorldConfig) { c.TickRate = 2_000_000_000 }},
		{"bad log level", func(c *WorldConfig) { c.LogLevel = "loud" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.modify(&cfg)
			assert.Check(t, cfg.Validate() != nil)
		})
	}
}

func TestLoadTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("random_tick_speed: 7\ncrop_growth_ticks: 40\n"), 0o600))

	tuning, err := loadTuning(path)
	assert.NilError(t, err)
	want := engine.DefaultTuning()
	want.RandomTickSpeed = 7
	want.CropGrowthTicks = 40
	assert.Equal(t, want, tuning)
}

func TestLoadTuningMissingFile(t *testing.T) {
	tuning, err := loadTuning(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NilError(t, err)
	assert.Equal(t, engine.DefaultTuning(), tuning)
}

func TestLoadTuningRejectsZeroBudget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("max_block_updates_per_tick: 0\n"), 0o600))
	_, err := loadTuning(path)
	assert.Check(t, err != nil)
}

func TestUpdateQueueOrder(t *testing.T) {
	q := newUpdateQueue()
	for i := 0; i < 2000; i++ {
		q.push(blockUpdate{pos: types.P(i, 0, 0)})
	}
	for i := 0; i < 2000; i++ {
		u, ok := q.pop()
		assert.Assert(t, ok)
		assert.Equal(t, types.P(i, 0, 0), u.pos)
		assert.Equal(t, 2000-i-1, q.len())
	}
	_, ok := q.pop()
	assert.Check(t, !ok)
}
