package coalesce

import "sync"

// DefaultMaxHops is the redirect chain length after which a table is
// considered cyclic.
const DefaultMaxHops = 1000

// Logger receives a message when a cycle is detected. *batch.SimpleLogger
// and the other batch.Logger implementations satisfy it.
type Logger interface {
	Error(format string, args ...interface{})
}

// Option configures a Coalescer.
type Option func(*Coalescer)

// WithNormalizer sets the Normalizer applied to every candidate.
func WithNormalizer(n Normalizer) Option {
	return func(c *Coalescer) {
		if n != nil {
			c.normalize = n
		}
	}
}

// WithMaxHops overrides DefaultMaxHops. Values <= 0 are ignored.
func WithMaxHops(n int) Option {
	return func(c *Coalescer) {
		if n > 0 {
			c.maxHops = n
		}
	}
}

// WithLogger sets the logger used to report cycles.
func WithLogger(l Logger) Option {
	return func(c *Coalescer) {
		c.logger = l
	}
}

// Coalescer owns a resolution table mapping aliases to canonical values. It
// is safe for concurrent use.
type Coalescer struct {
	normalize Normalizer
	maxHops   int
	logger    Logger

	mu     sync.Mutex
	table  map[string]string
	halted *CycleError
}

// New returns an empty Coalescer.
func New(opts ...Option) *Coalescer {
	c := &Coalescer{
		normalize: Identity,
		maxHops:   DefaultMaxHops,
		table:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Coalesce returns the canonical value for the first present candidate and
// records redirects for the others. "" means absent, as does a candidate the
// Normalizer maps to "": Coalesce("", "a") returns "a", not "". An empty
// string can therefore never be a canonical value. If every candidate is
// absent, Coalesce returns "" and leaves the table alone.
//
// Each present candidate is pointed at the first one, except that the first
// candidate only gets an entry (to itself) when it has none yet. The first
// candidate is then followed through the table to its canonical value.
//
// Once a *CycleError has been returned, every later call returns it again.
func (c *Coalescer) Coalesce(candidates ...string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.halted != nil {
		return "", c.halted
	}

	var first string
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		if cand = c.normalize(cand); cand == "" {
			continue
		}
		if first == "" {
			first = cand
		}

		// Always set if missing, always set if not the first.
		if _, ok := c.table[cand]; !ok || first != cand {
			c.table[cand] = first
		}
	}

	if first == "" {
		return "", nil
	}
	return c.resolve(first)
}

// Resolve returns the canonical value for alias without recording anything.
// Unknown aliases resolve to themselves.
func (c *Coalescer) Resolve(alias string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.halted != nil {
		return "", c.halted
	}
	if alias == "" {
		return "", nil
	}
	return c.resolve(c.normalize(alias))
}

// resolve follows redirects from v. c.mu must be held.
func (c *Coalescer) resolve(v string) (string, error) {
	hops := 0
	for {
		next, ok := c.table[v]
		if !ok || next == v {
			return v, nil
		}
		v = next
		hops++
		if hops > c.maxHops {
			c.halted = &CycleError{Value: v, Hops: hops, Table: c.snapshot()}
			if c.logger != nil {
				c.logger.Error("%v", c.halted)
			}
			return "", c.halted
		}
	}
}

// Snapshot returns a copy of the resolution table.
func (c *Coalescer) Snapshot() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Coalescer) snapshot() map[string]string {
	out := make(map[string]string, len(c.table))
	for k, v := range c.table {
		out[k] = v
	}
	return out
}

// Len returns the number of entries in the resolution table.
func (c *Coalescer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.table)
}

// Reset empties the table and clears a halt caused by a cycle.
func (c *Coalescer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = make(map[string]string)
	c.halted = nil
}

// Must returns s, or panics if err is non-nil. It suits callers that treat a
// cyclic table as a programming error.
//
//	id := coalesce.Must(c.Coalesce(email, name))
func Must(s string, err error) string {
	if err != nil {
		panic(err)
	}
	return s
}
