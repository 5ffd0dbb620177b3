package coalesce

import (
	"errors"
	"fmt"
)

// ErrHalted matches (via errors.Is) the error returned by a Coalescer that
// has detected a cycle.
var ErrHalted = errors.New("coalesce: halted")

// CycleError reports a redirect chain longer than the hop cap. It carries the
// value reached when the cap was exceeded and a copy of the table.
type CycleError struct {
	Value string
	Hops  int
	Table map[string]string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("coalesce: fatal loop in %q after %d hops %v", e.Value, e.Hops, e.Table)
}

// Is reports whether target is ErrHalted.
func (e *CycleError) Is(target error) bool {
	return target == ErrHalted
}
