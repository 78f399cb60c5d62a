package backend

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gridfetch/internal/grid"
	"gridfetch/internal/griderrors"
	"gridfetch/internal/models"
	"gridfetch/internal/stats"
)

// PerFile transfers each file with its own copy call, fanned out over
// a fixed pool of workers. Every worker holds a private ConnectionCache
// so grid sessions are never shared across concurrent contexts.
type PerFile struct {
	connector grid.Connector
	copier    grid.FileCopier
	workers   int
	stats     *stats.Collector
}

// NewPerFile returns a per-file backend with a pool of the given size.
func NewPerFile(connector grid.Connector, copier grid.FileCopier, workers int, st *stats.Collector) *PerFile {
	if workers <= 0 {
		workers = 1
	}
	return &PerFile{connector: connector, copier: copier, workers: workers, stats: st}
}

func (b *PerFile) Name() string { return TagPerFile }

// Run dispatches the jobs to the worker pool and blocks until every
// outcome is in. Outcomes are positional: Outcomes[i] belongs to
// jobs[i] regardless of completion order.
func (b *PerFile) Run(ctx context.Context, jobs []models.CopyJob) *RunReport {
	outcomes := make([]models.Outcome, len(jobs))
	if len(jobs) == 0 {
		return &RunReport{}
	}

	type indexed struct {
		i   int
		job models.CopyJob
	}

	work := make(chan indexed)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			cache := NewConnectionCache(b.connector)
			defer cache.Close()
			for it := range work {
				outcomes[it.i] = b.fetch(ctx, worker, cache, it.job)
			}
		}(w)
	}

	for i, job := range jobs {
		work <- indexed{i: i, job: job}
	}
	close(work)
	wg.Wait()

	return &RunReport{Outcomes: outcomes}
}

// fetch retrieves one file. Failures are recorded per job and never
// abort sibling jobs. Concurrent workers targeting the same local path
// are not locked out; the last write wins.
func (b *PerFile) fetch(ctx context.Context, worker int, cache *ConnectionCache, job models.CopyJob) models.Outcome {
	if err := os.MkdirAll(filepath.Dir(job.LocalPath), 0o755); err != nil {
		b.stats.Failed()
		return models.Failed(job, griderrors.NewJobError("fetch", job.RemotePath, job.LocalPath, err))
	}

	if _, err := os.Stat(job.LocalPath); err == nil {
		slog.Info("skipping existing file", "worker", worker, "local", job.LocalPath)
		b.stats.Skipped()
		return models.Skipped(job)
	}

	if _, err := cache.Get(ctx); err != nil {
		slog.Error("grid connection failed", "worker", worker, "remote", job.RemotePath, "error", err)
		b.stats.Failed()
		return models.Failed(job, err)
	}

	src := grid.NormalizeRemote(job.RemotePath)
	dst := grid.NormalizeLocal(job.LocalPath)

	slog.Info("fetching file", "worker", worker, "remote", src, "local", job.LocalPath)
	start := time.Now()
	if err := b.copier.Copy(ctx, src, dst); err != nil {
		slog.Error("download failed", "worker", worker, "remote", job.RemotePath, "error", err)
		b.stats.Failed()
		return models.Failed(job, err)
	}

	b.stats.Fetched(time.Since(start), sizeOf(job.LocalPath))
	return models.Downloaded(job)
}

func sizeOf(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
