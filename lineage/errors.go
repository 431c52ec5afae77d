package lineage

import "errors"

// Sentinel error kinds shared across the lineage graph, analysis context,
// and traversal engine (spec.md §7). These are plain wrapped stdlib errors
// compared with errors.Is/errors.As, matching the teacher's house style
// (inspector/repository/asset.go) rather than a bespoke error-code type.
var (
	ErrUnknownOwner      = errors.New("lineage: unknown owner")
	ErrUnknownIdentifier = errors.New("lineage: unknown identifier")
	ErrAmbiguousColumn   = errors.New("lineage: ambiguous column")
	ErrBudgetExceeded    = errors.New("lineage: budget exceeded")
	ErrCancelled         = errors.New("lineage: cancelled")
	ErrMemoryPressure    = errors.New("lineage: memory pressure")
	ErrInternal          = errors.New("lineage: internal error")
)
