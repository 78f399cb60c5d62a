package stats

import (
	"strings"
	"testing"
	"time"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.Fetched(100*time.Millisecond, 2048)
	c.Fetched(200*time.Millisecond, 1024)
	c.Skipped()
	c.Failed()

	if got := c.FetchedCount(); got != 2 {
		t.Errorf("FetchedCount() = %d, want 2", got)
	}
	if got := c.SkippedCount(); got != 1 {
		t.Errorf("SkippedCount() = %d, want 1", got)
	}
	if got := c.FailedCount(); got != 1 {
		t.Errorf("FailedCount() = %d, want 1", got)
	}
	if got := c.Bytes(); got != 3072 {
		t.Errorf("Bytes() = %d, want 3072", got)
	}
}

func TestCollectorString(t *testing.T) {
	c := NewCollector()
	c.Fetched(time.Second, 1024)
	c.Skipped()

	s := c.String()
	for _, want := range []string{"fetched:1", "skipped:1", "failed:0", "1.0 kB"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestNilCollectorIsNoOp(t *testing.T) {
	var c *Collector
	c.Fetched(time.Second, 10)
	c.Skipped()
	c.Failed()

	if got := c.Bytes(); got != 0 {
		t.Errorf("Bytes() = %d, want 0", got)
	}
	if got := c.String(); got != "fetched:0 skipped:0 failed:0" {
		t.Errorf("String() = %q", got)
	}
}
