package batch

import (
	"sync"
	"time"
)

// Config retrieves the config values used by ThrottledBatch. If these values
// are constant, NewConstantConfig can be used to create an implementation of
// the interface.
//
// Get is called once at the start of every Execute, so a dynamic Config can
// change chunk size or stagger delay between runs.
type Config interface {
	// Get returns the values for configuration.
	//
	// If the config values may be modified while Execute is running, Get
	// must properly handle concurrency issues.
	Get() ConfigValues
}

// ConfigValues is a struct that contains the ThrottledBatch config values.
type ConfigValues struct {
	// MaxPerBatch is the largest number of queued calls submitted together
	// in one chunk. Values <= 0 fall back to DefaultMaxPerBatch.
	MaxPerBatch int `json:"maxPerBatch" yaml:"max_per_batch"`

	// StaggerDelay is the per-chunk-index delay. Chunk i is submitted
	// i*StaggerDelay after Execute starts, whether or not earlier chunks
	// have finished. Negative values are treated as zero.
	StaggerDelay time.Duration `json:"staggerDelay" yaml:"stagger_delay"`
}

// DefaultConfigValues returns the values used when a ThrottledBatch is
// created with a nil Config: DefaultMaxPerBatch calls per chunk and a
// DefaultStaggerDelay ramp.
func DefaultConfigValues() ConfigValues {
	return ConfigValues{
		MaxPerBatch:  DefaultMaxPerBatch,
		StaggerDelay: DefaultStaggerDelay,
	}
}

// NewConstantConfig returns a Config with constant values. If values
// is nil, DefaultConfigValues is used.
func NewConstantConfig(values *ConfigValues) *ConstantConfig {
	if values == nil {
		return &ConstantConfig{values: DefaultConfigValues()}
	}

	return &ConstantConfig{
		values: *values,
	}
}

// ConstantConfig is a Config with constant values. Create one with
// NewConstantConfig.
type ConstantConfig struct {
	values ConfigValues
}

// Get implements the Config interface.
func (c *ConstantConfig) Get() ConfigValues {
	return c.values
}

// NewDynamicConfig creates a configuration that can be adjusted at runtime,
// for example to slow the ramp down after the remote endpoint starts
// throttling. If values is nil, DefaultConfigValues is used.
func NewDynamicConfig(values *ConfigValues) *DynamicConfig {
	if values == nil {
		v := DefaultConfigValues()
		values = &v
	}

	return &DynamicConfig{
		maxPerBatch:  values.MaxPerBatch,
		staggerDelay: values.StaggerDelay,
	}
}

// DynamicConfig implements the Config interface with values that can be
// modified at runtime. It is safe for concurrent use.
type DynamicConfig struct {
	mu           sync.RWMutex
	maxPerBatch  int
	staggerDelay time.Duration
}

// Get implements the Config interface.
func (c *DynamicConfig) Get() ConfigValues {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ConfigValues{
		MaxPerBatch:  c.maxPerBatch,
		StaggerDelay: c.staggerDelay,
	}
}

// UpdateMaxPerBatch changes the chunk size used by the next Execute.
func (c *DynamicConfig) UpdateMaxPerBatch(maxPerBatch int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxPerBatch = maxPerBatch
}

// UpdateStaggerDelay changes the stagger delay used by the next Execute.
func (c *DynamicConfig) UpdateStaggerDelay(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staggerDelay = delay
}

// Update replaces all configuration values at once.
func (c *DynamicConfig) Update(config ConfigValues) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxPerBatch = config.MaxPerBatch
	c.staggerDelay = config.StaggerDelay
}

// fixConfig corrects invalid ConfigValues:
//   - MaxPerBatch <= 0 becomes DefaultMaxPerBatch.
//   - A negative StaggerDelay becomes zero.
func fixConfig(c ConfigValues) ConfigValues {
	if c.MaxPerBatch <= 0 {
		c.MaxPerBatch = DefaultMaxPerBatch
	}
	if c.StaggerDelay < 0 {
		c.StaggerDelay = 0
	}
	return c
}
