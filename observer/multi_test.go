package observer

import (
	"context"
	"testing"
	"time"

	"github.com/asyncache/asyncache/key"
)

func TestMultiBuildsOneChildPerSpec(t *testing.T) {
	c := newTestEntryCache()
	m := NewMulti(c)
	m.SetEntries([]EntrySpec{
		{Key: key.Key{"a"}, Options: Options{QueryFn: func(context.Context) (any, error) { return "A", nil }}},
		{Key: key.Key{"b"}, Options: Options{QueryFn: func(context.Context) (any, error) { return "B", nil }}},
	})

	var snapshots [][]Result
	unsub := m.Subscribe(func(rs []Result) { snapshots = append(snapshots, rs) })
	defer unsub()

	waitFor(t, time.Second, func() bool {
		rs := m.Results()
		return len(rs) == 2 && rs[0].IsSuccess && rs[1].IsSuccess
	})
	rs := m.Results()
	if rs[0].Data != "A" || rs[1].Data != "B" {
		t.Fatalf("unexpected results %+v", rs)
	}
}

func TestMultiReusesMatchingChildByHash(t *testing.T) {
	c := newTestEntryCache()
	m := NewMulti(c)
	specA := EntrySpec{Key: key.Key{"x"}, Options: Options{QueryFn: func(context.Context) (any, error) { return 1, nil }}}
	m.SetEntries([]EntrySpec{specA})
	children1 := m.Children()

	m.SetEntries([]EntrySpec{specA})
	children2 := m.Children()

	if len(children1) != 1 || len(children2) != 1 || children1[0] != children2[0] {
		t.Fatal("expected the same child observer reused across identical SetEntries calls")
	}
}

func TestMultiDestroysUnreferencedChildren(t *testing.T) {
	c := newTestEntryCache()
	m := NewMulti(c)
	specA := EntrySpec{Key: key.Key{"only-a"}, Options: Options{QueryFn: func(context.Context) (any, error) { return 1, nil }}}
	specB := EntrySpec{Key: key.Key{"only-b"}, Options: Options{QueryFn: func(context.Context) (any, error) { return 2, nil }}}

	m.SetEntries([]EntrySpec{specA})
	waitFor(t, time.Second, func() bool { return len(m.Results()) == 1 && m.Results()[0].IsSuccess })

	e, ok := c.Get(key.MustHash(key.Key{"only-a"}))
	if !ok {
		t.Fatal("expected entry a to exist")
	}
	if e.ObserverCount() != 1 {
		t.Fatalf("expected entry a to have 1 observer, got %d", e.ObserverCount())
	}

	m.SetEntries([]EntrySpec{specB})
	waitFor(t, time.Second, func() bool { return e.ObserverCount() == 0 })
}
