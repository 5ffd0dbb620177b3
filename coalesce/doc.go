// Package coalesce maps fuzzy identifiers onto canonical ones.
//
// A Coalescer is given candidates in order of authority, most authoritative
// first, for example an email address followed by display names:
//
//	c := coalesce.New()
//	c.Coalesce("", "ada@example.com", "Ada Lovelace", "A. Lovelace") // "ada@example.com"
//	c.Coalesce("A. Lovelace")                                        // "ada@example.com"
//
// The first present candidate wins, every other candidate is redirected to
// it, and the result is the end of the redirect chain. Over many calls the
// table merges overlapping alias sets onto the earliest-seen representative.
// The table lives as long as the Coalescer; nothing is persisted.
//
// Redirect chains are capped at DefaultMaxHops (see WithMaxHops). Exceeding
// the cap means the table holds a cycle, which is reported as a *CycleError
// and halts the Coalescer until Reset.
package coalesce
