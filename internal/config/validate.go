package config

import (
	"errors"
	"fmt"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTraining(); err != nil {
		return err
	}
	if err := c.validateCoherence(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.ModelDir == "" {
		return errors.New("paths.model_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateTraining() error {
	if err := ensurePositiveMap(map[string]int{
		"training.workers":               c.Training.Workers,
		"training.iterations":            c.Training.Iterations,
		"training.transformation_passes": c.Training.TransformationPasses,
		"training.parallel_trials":       c.Training.ParallelTrials,
	}); err != nil {
		return err
	}
	if c.Training.SliceWeight < 0 || c.Training.SliceWeight > 1 {
		return errors.New("training.slice_weight must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateCoherence() error {
	switch c.Coherence.Metric {
	case "c_v", "u_mass":
	default:
		return fmt.Errorf("coherence.metric must be c_v or u_mass, got %q", c.Coherence.Metric)
	}
	if c.Coherence.TopN < 2 {
		return errors.New("coherence.top_n must be at least 2")
	}
	if c.Coherence.Metric == "c_v" && c.Coherence.WindowSize < 2 {
		return errors.New("coherence.window_size must be at least 2 for c_v")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
