// Package merge combines built-in configuration records with caller overrides.
package merge

// ByKey merges overrides into defaults. Records are matched by key: a
// matching override is combined with its default through deep, and an
// unmatched override is appended. Two overrides sharing an unmatched key are
// combined with each other, so the result never repeats a key. Neither input
// slice is modified.
func ByKey[T any, K comparable](defaults, overrides []T, key func(T) K, deep func(base, over T) T) []T {
	out := make([]T, len(defaults), len(defaults)+len(overrides))
	copy(out, defaults)

	index := make(map[K]int, len(out))
	for i, d := range out {
		index[key(d)] = i
	}

	for _, o := range overrides {
		k := key(o)
		if i, ok := index[k]; ok {
			out[i] = deep(out[i], o)
			continue
		}
		index[k] = len(out)
		out = append(out, o)
	}
	return out
}

// String returns over when set, base otherwise.
func String(base, over string) string {
	if over != "" {
		return over
	}
	return base
}

// Ptr returns over when non-nil, base otherwise.
func Ptr[T any](base, over *T) *T {
	if over != nil {
		return over
	}
	return base
}

// Nested deep-merges two optional records.
func Nested[T any](base, over *T, deep func(base, over T) T) *T {
	switch {
	case over == nil:
		return base
	case base == nil:
		return over
	}
	v := deep(*base, *over)
	return &v
}
