package entry

import "testing"

func TestReplaceDataReusesUnchangedSubtrees(t *testing.T) {
	unchanged := []any{1, 2, 3}
	prev := map[string]any{"list": unchanged, "n": 1}
	next := map[string]any{"list": []any{1, 2, 3}, "n": 2}

	got := ReplaceData(prev, next, SharingOptions{}).(map[string]any)
	gotList := got["list"].([]any)
	if len(gotList) != 3 {
		t.Fatalf("expected list length 3, got %d", len(gotList))
	}
	if got["n"] != 2 {
		t.Fatalf("expected changed field to take the new value, got %v", got["n"])
	}
	if &gotList[0] != &unchanged[0] {
		t.Fatalf("expected the unchanged list to be reused from prev")
	}
}

func TestReplaceDataIsDataEqualShortCircuits(t *testing.T) {
	prev := map[string]any{"a": 1}
	next := map[string]any{"a": 2}
	got := ReplaceData(prev, next, SharingOptions{
		IsDataEqual: func(a, b any) bool { return true },
	})
	if got.(map[string]any)["a"] != 1 {
		t.Fatal("expected IsDataEqual=true to preserve prev unchanged")
	}
}

func TestReplaceDataDisabledReturnsNextUnchanged(t *testing.T) {
	prev := map[string]any{"a": 1}
	next := map[string]any{"a": 1}
	got := ReplaceData(prev, next, SharingOptions{Mode: SharingDisabled})
	if gotMap, ok := got.(map[string]any); !ok || gotMap["a"] != 1 {
		t.Fatalf("expected next returned unchanged, got %v", got)
	}
}

func TestReplaceDataCustomStructuralSharingFn(t *testing.T) {
	prev := map[string]any{"a": 1}
	next := map[string]any{"a": 2}
	got := ReplaceData(prev, next, SharingOptions{
		Structural: func(p, n any) any { return "custom" },
	})
	if got != "custom" {
		t.Fatalf("expected custom structural sharing result, got %v", got)
	}
}

func TestReplaceEqualDeepScalar(t *testing.T) {
	if replaceEqualDeep(5, 5) != 5 {
		t.Fatal("expected identical scalars to compare equal")
	}
	if replaceEqualDeep(5, 6) != 6 {
		t.Fatal("expected changed scalar to return the new value")
	}
}

type pageResult struct {
	Items []string
}

func TestReplaceEqualDeepStructWithSliceFieldDoesNotPanic(t *testing.T) {
	prev := pageResult{Items: []string{"a", "b"}}
	next := pageResult{Items: []string{"a", "b"}}

	got := replaceEqualDeep(prev, next)
	if got.(pageResult).Items[0] != "a" {
		t.Fatalf("unexpected result %v", got)
	}

	changed := replaceEqualDeep(prev, pageResult{Items: []string{"a", "c"}})
	if changed.(pageResult).Items[1] != "c" {
		t.Fatalf("expected changed struct value to return the new value, got %v", changed)
	}
}

func TestReplaceDataStructWithSliceFieldDoesNotPanic(t *testing.T) {
	prev := pageResult{Items: []string{"a", "b"}}
	next := pageResult{Items: []string{"a", "b"}}
	got := ReplaceData(prev, next, SharingOptions{})
	if got.(pageResult).Items[0] != "a" {
		t.Fatalf("unexpected result %v", got)
	}
}
