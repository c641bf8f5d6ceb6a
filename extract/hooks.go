package extract

import "github.com/robinvdvleuten/hibiscus/entry"

// Hook transforms the final entry list. Hooks run in order after sorting and
// must return a list that is still sorted.
type Hook func(entry.Directives) entry.Directives

// DefaultHooks returns the built-in pipeline stages. Both are identity passes
// today; they exist as explicit seams so future implementations do not change
// the pipeline shape.
func DefaultHooks() []Hook {
	return []Hook{MergeTransfers, CleanNarrations}
}

// MergeTransfers reconciles two separately emitted legs of an internal
// transfer into one transaction. It currently returns its input unchanged;
// callers must not rely on any merging behavior.
func MergeTransfers(ds entry.Directives) entry.Directives {
	return ds
}

// CleanNarrations strips cruft from narration fields. It currently returns
// its input unchanged.
func CleanNarrations(ds entry.Directives) entry.Directives {
	return ds
}
