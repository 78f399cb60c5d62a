// Package stats tracks transfer counters and timings for one download
// run.
package stats

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rcrowley/go-metrics"
)

// Collector is a per-run container of transfer metrics. It is safe for
// concurrent use by the worker pool. The zero-value pointer (nil) is a
// valid no-op collector.
type Collector struct {
	registry  metrics.Registry
	fetched   metrics.Counter
	skipped   metrics.Counter
	failed    metrics.Counter
	bytes     metrics.Counter
	durations metrics.Timer
}

// NewCollector initializes a Collector with its own metrics registry.
func NewCollector() *Collector {
	r := metrics.NewRegistry()
	return &Collector{
		registry:  r,
		fetched:   metrics.NewRegisteredCounter("files.fetched", r),
		skipped:   metrics.NewRegisteredCounter("files.skipped", r),
		failed:    metrics.NewRegisteredCounter("files.failed", r),
		bytes:     metrics.NewRegisteredCounter("bytes.fetched", r),
		durations: metrics.NewRegisteredTimer("fetch.duration", r),
	}
}

// Fetched records one completed transfer with its duration and size.
func (c *Collector) Fetched(d time.Duration, size int64) {
	if c == nil {
		return
	}
	c.fetched.Inc(1)
	c.bytes.Inc(size)
	c.durations.Update(d)
}

// Skipped records one job absorbed by the existence check.
func (c *Collector) Skipped() {
	if c == nil {
		return
	}
	c.skipped.Inc(1)
}

// Failed records one failed job.
func (c *Collector) Failed() {
	if c == nil {
		return
	}
	c.failed.Inc(1)
}

func (c *Collector) FetchedCount() int64 {
	if c == nil {
		return 0
	}
	return c.fetched.Count()
}

func (c *Collector) SkippedCount() int64 {
	if c == nil {
		return 0
	}
	return c.skipped.Count()
}

func (c *Collector) FailedCount() int64 {
	if c == nil {
		return 0
	}
	return c.failed.Count()
}

func (c *Collector) Bytes() int64 {
	if c == nil {
		return 0
	}
	return c.bytes.Count()
}

func (c *Collector) String() string {
	if c == nil {
		return "fetched:0 skipped:0 failed:0"
	}
	return fmt.Sprintf("fetched:%s skipped:%s failed:%s size:%s mean:%v max:%v",
		humanize.Comma(c.fetched.Count()),
		humanize.Comma(c.skipped.Count()),
		humanize.Comma(c.failed.Count()),
		humanize.Bytes(uint64(c.bytes.Count())),
		time.Duration(int64(c.durations.Mean())).Round(time.Millisecond),
		time.Duration(c.durations.Max()).Round(time.Millisecond),
	)
}
