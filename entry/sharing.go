package entry

import "reflect"

// SharingMode selects how ReplaceData reconciles a freshly-fetched value
// against the value it replaces.
type SharingMode int

const (
	// SharingDefault applies replaceEqualDeep.
	SharingDefault SharingMode = iota
	// SharingDisabled always returns next unchanged.
	SharingDisabled
)

// Options relevant to structural sharing, pulled out of the full Options
// struct so ReplaceData only depends on what it needs.
type SharingOptions struct {
	IsDataEqual func(prev, next any) bool
	// Structural, when non-nil, is used in place of replaceEqualDeep.
	Structural func(prev, next any) any
	Mode       SharingMode
}

// ReplaceData preserves referential identity of untouched subtrees across
// a fetch so observers relying on reference equality (memoized selectors,
// React-style deps) don't see spurious re-renders.
func ReplaceData(prev, next any, opts SharingOptions) any {
	if opts.IsDataEqual != nil && opts.IsDataEqual(prev, next) {
		return prev
	}
	if opts.Structural != nil {
		return opts.Structural(prev, next)
	}
	if opts.Mode == SharingDisabled {
		return next
	}
	if prev == nil {
		return next
	}
	return replaceEqualDeep(prev, next)
}

// replaceEqualDeep recursively walks prev and next; wherever both are plain
// maps/slices with the same shape and every child is identity-equal to
// prev's child, it returns prev so the parent container is reused too.
func replaceEqualDeep(prev, next any) any {
	if prev == nil || next == nil {
		return next
	}

	switch nextV := next.(type) {
	case map[string]any:
		prevV, ok := prev.(map[string]any)
		if !ok || len(prevV) != len(nextV) {
			return nextV
		}
		out := make(map[string]any, len(nextV))
		changed := false
		for k, nv := range nextV {
			pv, exists := prevV[k]
			if !exists {
				changed = true
				out[k] = nv
				continue
			}
			merged := replaceEqualDeep(pv, nv)
			out[k] = merged
			if !identicalValue(merged, pv) {
				changed = true
			}
		}
		if !changed && sameKeys(prevV, nextV) {
			return prev
		}
		return out

	case []any:
		prevV, ok := prev.([]any)
		if !ok || len(prevV) != len(nextV) {
			return nextV
		}
		out := make([]any, len(nextV))
		changed := false
		for i, nv := range nextV {
			merged := replaceEqualDeep(prevV[i], nv)
			out[i] = merged
			if !identicalValue(merged, prevV[i]) {
				changed = true
			}
		}
		if !changed {
			return prev
		}
		return out

	default:
		if identicalValue(prev, next) {
			return prev
		}
		return next
	}
}

func sameKeys(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// identicalValue reports reference identity for pointer-shaped values and
// plain equality otherwise. Struct, array and interface values can hold a
// slice/map/func/chan field several levels down, which makes them
// unpredictable with == (it panics at runtime instead of returning false);
// those kinds fall back to reflect.DeepEqual instead.
func identicalValue(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() != bv.Kind() {
		return false
	}
	switch av.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		// Not comparable with ==; compare the underlying pointer instead.
		return av.Pointer() == bv.Pointer()
	case reflect.Ptr:
		return a == b
	case reflect.Struct, reflect.Array, reflect.Interface:
		return reflect.DeepEqual(a, b)
	default:
		return a == b
	}
}
