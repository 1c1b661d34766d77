// Package key provides deterministic hashing and partial matching for cache
// keys: ordered, JSON-serializable tuples that identify a cached request.
package key

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Key is an ordered, immutable sequence of scalar/composite values
// identifying one cached request. Two keys collide iff their hashes are
// equal.
type Key []any

// Hash returns a deterministic string hash of k: structural canonical JSON
// serialization where object keys are sorted recursively and arrays preserve
// order. The canonical form is the hash itself (not a digest of it), so
// hash(k1) == hash(k2) iff canonicalize(k1) == canonicalize(k2) holds by
// construction.
func Hash(k Key) (string, error) {
	canon, err := canonicalValue([]any(k))
	if err != nil {
		return "", fmt.Errorf("key: failed to canonicalize: %w", err)
	}
	return string(canon), nil
}

// MustHash panics if Hash fails. Useful for static/known-good keys.
func MustHash(k Key) string {
	h, err := Hash(k)
	if err != nil {
		panic(err)
	}
	return h
}

// canonicalValue round-trips v through encoding/json to normalize structs,
// pointers, and typed slices/maps into the plain map[string]any/[]any/scalar
// shapes canonicalize understands, then canonicalizes that generic value.
func canonicalValue(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return canonicalize(generic)
}

// canonicalize produces a deterministic JSON representation of a generic
// (post-json.Unmarshal) value. Map keys are sorted; arrays preserve order.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')
	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}
		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')
	return result, nil
}

// PartialMatch reports whether actual matches pattern: pattern is a
// recursive structural subset of actual. Every field pattern names must be
// present and recursively matching in actual; fields actual has that
// pattern doesn't name are ignored.
//
// PartialMatch is reflexive (PartialMatch(a, a) == true), and monotone
// under removing keys from pattern (a smaller pattern can only match more).
func PartialMatch(actual, pattern any) bool {
	if isComparable(actual) && isComparable(pattern) && actual == pattern {
		return true
	}

	actualRaw, err1 := canonicalValue(actual)
	patternRaw, err2 := canonicalValue(pattern)
	if err1 != nil || err2 != nil {
		return false
	}
	if string(actualRaw) == string(patternRaw) {
		return true
	}

	var a, p any
	if err := json.Unmarshal(actualRaw, &a); err != nil {
		return false
	}
	if err := json.Unmarshal(patternRaw, &p); err != nil {
		return false
	}
	return partialMatchGeneric(a, p)
}

// isComparable reports whether v's dynamic type can be used with ==
// without panicking (e.g. not a slice, map, or func, nor a struct/array
// containing one).
func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

func partialMatchGeneric(a, p any) bool {
	aBytes, _ := json.Marshal(a)
	pBytes, _ := json.Marshal(p)
	if string(aBytes) == string(pBytes) {
		return true
	}

	pm, pmOK := p.(map[string]any)
	am, amOK := a.(map[string]any)
	if pmOK && amOK {
		for k, pv := range pm {
			av, exists := am[k]
			if !exists {
				return false
			}
			if !partialMatchGeneric(av, pv) {
				return false
			}
		}
		return true
	}

	pl, plOK := p.([]any)
	al, alOK := a.([]any)
	if plOK && alOK {
		if len(pl) > len(al) {
			return false
		}
		for i := range pl {
			if !partialMatchGeneric(al[i], pl[i]) {
				return false
			}
		}
		return true
	}

	// Type mismatch between object/array/scalar shapes: no match.
	return false
}

// KeyHash pairs a Key with its pre-computed hash. entry.Cache does not use
// it: each entry.Entry keeps its own hash.
type KeyHash struct {
	Key  Key
	Hash string
}
