package backend

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gridfetch/internal/grid"
	"gridfetch/internal/models"
	"gridfetch/internal/stats"
)

// Batch hands the whole job list to the grid client in one call. The
// client parallelizes internally with the requested thread count; no
// worker pool is involved. The call reports no per-file granularity:
// on success every job is counted as downloaded, which is an
// optimistic approximation, and on failure none are.
type Batch struct {
	cache  *ConnectionCache
	copier grid.BatchCopier
	args   []string
	stats  *stats.Collector
}

// NewBatch returns a batched backend. The thread-count flag for the
// client is appended to the configured argument list.
func NewBatch(connector grid.Connector, copier grid.BatchCopier, args []string, workers int, st *stats.Collector) *Batch {
	args = append(slices.Clone(args), "-T", strconv.Itoa(workers))
	return &Batch{
		cache:  NewConnectionCache(connector),
		copier: copier,
		args:   args,
		stats:  st,
	}
}

func (b *Batch) Name() string { return TagBatch }

func (b *Batch) Run(ctx context.Context, jobs []models.CopyJob) *RunReport {
	if len(jobs) == 0 {
		return &RunReport{}
	}
	defer b.cache.Close()

	srcs := make([]string, len(jobs))
	dsts := make([]string, len(jobs))
	for i, job := range jobs {
		if err := os.MkdirAll(filepath.Dir(job.LocalPath), 0o755); err != nil {
			slog.Warn("cannot create destination directory", "local", job.LocalPath, "error", err)
		}
		srcs[i] = grid.NormalizeRemote(job.RemotePath)
		dsts[i] = grid.NormalizeLocal(job.LocalPath)
	}

	session, err := b.cache.Get(ctx)
	if err != nil {
		slog.Error("grid connection failed", "error", err)
		return b.failAll(jobs, err)
	}

	slog.Info("starting batched download", "files", len(jobs))
	start := time.Now()
	if err := b.copier.CopyBatch(ctx, session, b.args, srcs, dsts); err != nil {
		slog.Error("batched download failed", "error", err)
		return b.failAll(jobs, err)
	}
	slog.Info("batched download finished", "files", len(jobs), "duration", time.Since(start).Round(time.Millisecond))

	outcomes := make([]models.Outcome, len(jobs))
	elapsed := time.Since(start)
	for i, job := range jobs {
		outcomes[i] = models.Downloaded(job)
		b.stats.Fetched(elapsed/time.Duration(len(jobs)), sizeOf(job.LocalPath))
	}
	return &RunReport{Outcomes: outcomes}
}

func (b *Batch) failAll(jobs []models.CopyJob, err error) *RunReport {
	outcomes := make([]models.Outcome, len(jobs))
	for i, job := range jobs {
		outcomes[i] = models.Failed(job, err)
		b.stats.Failed()
	}
	return &RunReport{Outcomes: outcomes}
}
