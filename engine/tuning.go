package engine

import "github.com/rotisserie/eris"

// Tuning holds gameplay constants, loaded from the tuning file.
type Tuning struct {
	RandomTickSpeed        int    `yaml:"random_tick_speed"`
	MaxBlockUpdatesPerTick int    `yaml:"max_block_updates_per_tick"`
	CropGrowthTicks        uint64 `yaml:"crop_growth_ticks"`
	LeafDecayTicks         uint64 `yaml:"leaf_decay_ticks"`
	FallingBlockDelay      uint64 `yaml:"falling_block_delay"`
}

func DefaultTuning() Tuning {
	return Tuning{
		RandomTickSpeed:        3,
		MaxBlockUpdatesPerTick: 4096,
		CropGrowthTicks:        100,
		LeafDecayTicks:         20,
		FallingBlockDelay:      2,
	}
}

func (t Tuning) Validate() error {
	if t.MaxBlockUpdatesPerTick <= 0 {
		return eris.Errorf("max_block_updates_per_tick must be positive, got %d", t.MaxBlockUpdatesPerTick)
	}
	if t.RandomTickSpeed < 0 {
		return eris.Errorf("random_tick_speed must not be negative, got %d", t.RandomTickSpeed)
	}
	return nil
}
