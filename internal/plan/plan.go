// Package plan loads the YAML files that describe a batch run for the
// throttledbatch command.
package plan

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MasterOfBinary/throttledbatch/batch"
)

// Call is one queued call. ID is optional; calls without one get the
// ThrottledBatch automatic id.
type Call struct {
	ID   string      `yaml:"id,omitempty"`
	Call interface{} `yaml:"call"`
}

// Plan models a plan file:
//
//	url: https://api.example.com/batch
//	max_per_batch: 10
//	stagger_delay: 500ms
//	headers:
//	  Authorization: Bearer token
//	calls:
//	  - id: user-a
//	    call: {method: users.get, id: a}
//	  - call: {method: users.get, id: b}
type Plan struct {
	URL          string            `yaml:"url"`
	MaxPerBatch  int               `yaml:"max_per_batch,omitempty"`
	StaggerDelay string            `yaml:"stagger_delay,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	Calls        []Call            `yaml:"calls"`
}

// Load reads and validates the plan at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a plan document.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks value ranges and that explicit call ids are unique and
// never equal to the automatic id another call will get, so Queue never
// replaces one call with another. The URL is not required here because the
// command line may supply it.
func (p *Plan) Validate() error {
	if p.MaxPerBatch < 0 {
		return errors.New("max_per_batch cannot be negative")
	}
	if _, _, err := p.staggerDelay(); err != nil {
		return err
	}

	// Queue gives the call at index i without an id the automatic id i+1.
	auto := make(map[string]int)
	for i, c := range p.Calls {
		if c.ID == "" {
			auto[strconv.Itoa(i+1)] = i
		}
	}

	seen := make(map[string]bool, len(p.Calls))
	for i, c := range p.Calls {
		if c.Call == nil {
			return fmt.Errorf("calls[%d]: call is empty", i)
		}
		if c.ID == "" {
			continue
		}
		if seen[c.ID] {
			return fmt.Errorf("calls[%d]: duplicate id %q", i, c.ID)
		}
		if j, ok := auto[c.ID]; ok {
			return fmt.Errorf("calls[%d]: id %q is the automatic id of calls[%d]", i, c.ID, j)
		}
		seen[c.ID] = true
	}
	return nil
}

func (p *Plan) staggerDelay() (time.Duration, bool, error) {
	if p.StaggerDelay == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(p.StaggerDelay)
	if err != nil {
		return 0, false, fmt.Errorf("stagger_delay: %w", err)
	}
	if d < 0 {
		return 0, false, errors.New("stagger_delay cannot be negative")
	}
	return d, true, nil
}

// ConfigValues returns the batch configuration described by the plan, with
// batch defaults for anything the plan leaves out.
func (p *Plan) ConfigValues() batch.ConfigValues {
	values := batch.DefaultConfigValues()
	if p.MaxPerBatch > 0 {
		values.MaxPerBatch = p.MaxPerBatch
	}
	if d, ok, err := p.staggerDelay(); err == nil && ok {
		values.StaggerDelay = d
	}
	return values
}

// Queue adds every call in the plan to b, in file order.
func (p *Plan) Queue(b *batch.ThrottledBatch) {
	for _, c := range p.Calls {
		if c.ID != "" {
			b.Add(c.Call, c.ID)
		} else {
			b.Add(c.Call)
		}
	}
}
