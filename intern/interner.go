// Package intern deduplicates identifiers and mints stable node/edge IDs
// for one analysis run (spec.md §4.1, component C1).
package intern

import (
	"strings"
	"sync"
)

// Interner returns a canonical handle equal by identity for equal inputs,
// comparing the case-folded form so that `T1` and `t1` intern to the same
// string (spec.md N4). Safe for concurrent use: analyses running in
// parallel (spec.md §5) share one Interner guarded by a fine-grained map,
// mirroring the teacher's structFields/importAliases maps but made
// goroutine-safe for cross-script sharing.
type Interner struct {
	mu      sync.RWMutex
	byFold  map[string]string // canonical(s) -> first-seen original s
	caseSens bool
}

// New creates an Interner. When caseSensitive is false (the default per
// spec.md §6.4 `case_sensitive_identifiers`), canonicalization case-folds
// identifiers before deduplicating.
func New(caseSensitive bool) *Interner {
	return &Interner{
		byFold:   make(map[string]string),
		caseSens: caseSensitive,
	}
}

// Canonical returns the case-folded form used for equality/hash per N4.
func (in *Interner) Canonical(s string) string {
	if in.caseSens {
		return s
	}
	return strings.ToLower(s)
}

// Intern returns the canonical handle for s: the first string ever seen
// whose canonical form matches s's. Thread-safe, O(1) amortized.
func (in *Interner) Intern(s string) string {
	key := in.Canonical(s)

	in.mu.RLock()
	if v, ok := in.byFold[key]; ok {
		in.mu.RUnlock()
		return v
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if v, ok := in.byFold[key]; ok {
		return v
	}
	in.byFold[key] = s
	return s
}

// Equal reports whether a and b intern to the same canonical form (P5).
func (in *Interner) Equal(a, b string) bool {
	return in.Canonical(a) == in.Canonical(b)
}

// Len reports how many distinct canonical identifiers have been interned.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byFold)
}
