package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrInvalidConfig = errors.New("invalid engine config")

type Config struct {
	StartDepth   int    `json:"start_depth"`
	Helpers      int    `json:"helpers"`
	TTSizeMB     int    `json:"tt_size_mb"`
	TTPolicy     string `json:"tt_policy"`
	EvalJitter   int32  `json:"eval_jitter"`
	Seed         int64  `json:"seed"`
	MoveOrdering bool   `json:"move_ordering"`
}

func DefaultConfig() Config {
	return Config{
		StartDepth:   4,
		Helpers:      4,
		TTSizeMB:     DefaultTTSize,
		TTPolicy:     "always",
		EvalJitter:   0, // deterministic unless asked
		Seed:         1,
		MoveOrdering: true,
	}
}

// LoadConfig reads a JSON config over the defaults. Unknown keys are an
// error so typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.StartDepth < 1 {
		return fmt.Errorf("%w: start_depth %d < 1", ErrInvalidConfig, c.StartDepth)
	}
	if c.Helpers < 0 {
		return fmt.Errorf("%w: helpers %d < 0", ErrInvalidConfig, c.Helpers)
	}
	if c.TTSizeMB < 1 {
		return fmt.Errorf("%w: tt_size_mb %d < 1", ErrInvalidConfig, c.TTSizeMB)
	}
	if c.EvalJitter < 0 {
		return fmt.Errorf("%w: eval_jitter %d < 0", ErrInvalidConfig, c.EvalJitter)
	}
	if _, err := ParsePolicy(c.TTPolicy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
