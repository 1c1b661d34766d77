package retry

import (
	"testing"
	"time"
)

func TestDefaultDelayGrowsAndCaps(t *testing.T) {
	prev := time.Duration(0)
	for fc := 0; fc < 10; fc++ {
		d := DefaultDelay(fc, nil)
		if d < prev {
			t.Fatalf("expected non-decreasing delay, got %v after %v", d, prev)
		}
		if d > defaultMaxDelay {
			t.Fatalf("delay %v exceeds cap %v", d, defaultMaxDelay)
		}
		prev = d
	}
}

func TestCanFetch(t *testing.T) {
	cases := []struct {
		mode   NetworkMode
		online bool
		want   bool
	}{
		{NetworkOnline, true, true},
		{NetworkOnline, false, false},
		{NetworkAlways, false, true},
		{NetworkOfflineFirst, false, true},
	}
	for _, c := range cases {
		p := Policy{NetworkMode: c.mode}
		if got := p.CanFetch(c.online); got != c.want {
			t.Errorf("canFetch(%v, online=%v) = %v, want %v", c.mode, c.online, got, c.want)
		}
	}
}

func TestWithJitterStaysWithinBound(t *testing.T) {
	base := ConstantDelay(100 * time.Millisecond)
	jittered := WithJitter(base)
	for i := 0; i < 20; i++ {
		d := jittered(i, nil)
		if d < 100*time.Millisecond || d > 126*time.Millisecond {
			t.Fatalf("jittered delay %v out of expected [100ms, 126ms] range", d)
		}
	}
}

func TestRetryTimes(t *testing.T) {
	should := RetryTimes(2)
	if !should(0, nil) || !should(1, nil) {
		t.Fatal("expected retries within the count to be allowed")
	}
	if should(2, nil) {
		t.Fatal("expected the retry to stop once the count is reached")
	}
}
