package appsize

import "slices"

// finalize sorts the collected entries with cmp. It returns ErrNoResults when
// nothing was collected so callers can tell it apart from a non-empty set of
// zero-size entries.
func finalize(results []Entry, cmp func(a, b Entry) int) ([]Entry, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	out := slices.Clone(results)
	slices.SortStableFunc(out, cmp)
	return out, nil
}
