// Package coalesce resolves a value from an ordered list of optional
// candidates. The first defined candidate wins.
package coalesce

// First returns the first non-nil candidate, or nil when none is defined.
func First[T any](candidates ...*T) *T {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

// Or returns *First(candidates...) or def when every candidate is nil.
func Or[T any](def T, candidates ...*T) T {
	if v := First(candidates...); v != nil {
		return *v
	}
	return def
}

// Last returns a pointer to a copy of the final element of s, or nil for an empty slice.
func Last[T any](s []T) *T {
	if len(s) == 0 {
		return nil
	}
	v := s[len(s)-1]
	return &v
}
