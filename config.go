package blockshard

import (
	"os"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"pkg.world.dev/blockshard/engine"
)

const (
	DefaultNamespace = "world"
	DefaultTickRate  = 20
	// MaxTickRate keeps the tick interval at one millisecond or more.
	MaxTickRate     = 1000
	DefaultPort     = "4040"
	DefaultLogLevel = "info"
)

// WorldConfig is read from the environment. Field names map to snake case variables, so TickRate is read from
// BLOCKSHARD_TICK_RATE.
type WorldConfig struct {
	Namespace     string `config:"BLOCKSHARD_NAMESPACE"`
	TickRate      uint64 `config:"BLOCKSHARD_TICK_RATE"`
	Port          string `config:"BLOCKSHARD_PORT"`
	TuningFile    string `config:"BLOCKSHARD_TUNING_FILE"`
	RedisAddress  string `config:"REDIS_ADDRESS"`
	RedisPassword string `config:"REDIS_PASSWORD"`
	StatsdAddress string `config:"STATSD_ADDRESS"`
	TraceAddress  string `config:"TRACE_ADDRESS"`
	LogLevel      string `config:"LOG_LEVEL"`
	LogPretty     bool   `config:"LOG_PRETTY"`
	Profiler      bool   `config:"BLOCKSHARD_PROFILER"`
}

func defaultConfig() WorldConfig {
	return WorldConfig{
		Namespace: DefaultNamespace,
		TickRate:  DefaultTickRate,
		Port:      DefaultPort,
		LogLevel:  DefaultLogLevel,
	}
}

// loadWorldConfig applies the environment on top of the defaults. Unset variables keep their default.
func loadWorldConfig() (WorldConfig, error) {
	cfg := defaultConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to read config from the environment")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (w WorldConfig) Validate() error {
	if w.Namespace == "" {
		return eris.New("BLOCKSHARD_NAMESPACE must not be empty")
	}
	if w.TickRate == 0 || w.TickRate > MaxTickRate {
		return eris.Errorf("BLOCKSHARD_TICK_RATE must be between 1 and %d, got %d", MaxTickRate, w.TickRate)
	}
	if _, err := zerolog.ParseLevel(w.LogLevel); err != nil {
		return eris.Wrapf(err, "bad LOG_LEVEL %q", w.LogLevel)
	}
	return nil
}

// loadTuning reads gameplay constants from a yaml file. Keys missing from the file keep their default, and a
// missing file yields the defaults.
func loadTuning(path string) (engine.Tuning, error) {
	tuning := engine.DefaultTuning()
	if path == "" {
		return tuning, nil
	}
	bz, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return tuning, nil
	} else if err != nil {
		return tuning, eris.Wrapf(err, "failed to read tuning file %q", path)
	}
	if err := yaml.Unmarshal(bz, &tuning); err != nil {
		return tuning, eris.Wrapf(err, "bad tuning file %q", path)
	}
	if err := tuning.Validate(); err != nil {
		return tuning, eris.Wrapf(err, "bad tuning file %q", path)
	}
	return tuning, nil
}
