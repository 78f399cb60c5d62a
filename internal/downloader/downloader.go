// Package downloader drives a download run: glob resolution, path
// mapping, backend dispatch and result aggregation.
package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"gridfetch/config"
	"gridfetch/internal/backend"
	"gridfetch/internal/glob"
	"gridfetch/internal/grid"
	"gridfetch/internal/models"
	"gridfetch/internal/pathmap"
	"gridfetch/internal/stats"
	"gridfetch/pkg/utils"
)

// Downloader composes the path mapper, glob resolver and the selected
// transfer backend for one configuration.
type Downloader struct {
	cfg       *config.Config
	mapper    *pathmap.Mapper
	connector grid.Connector
	resolver  *glob.Resolver
	backend   backend.Backend
	stats     *stats.Collector
}

// New wires a Downloader against the real grid tools. It creates the
// output directory and fails if a required tool is missing from PATH.
func New(cfg *config.Config) (*Downloader, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	connector, err := grid.NewToolConnector(cfg.QueryCommand)
	if err != nil {
		return nil, err
	}
	query, err := grid.NewToolQuery(cfg.QueryCommand)
	if err != nil {
		return nil, err
	}

	deps := backend.Deps{
		Connector: connector,
		Workers:   cfg.NumWorkers,
		Args:      cfg.BackendArgs,
		Stats:     stats.NewCollector(),
	}
	switch cfg.Backend {
	case config.BackendPerFile:
		if deps.Copier, err = grid.NewToolFileCopier(cfg.CopyCommand); err != nil {
			return nil, err
		}
	case config.BackendBatch:
		if deps.Batch, err = grid.NewToolBatchCopier(cfg.QueryCommand); err != nil {
			return nil, err
		}
	}

	b, err := backend.New(cfg.Backend, deps)
	if err != nil {
		return nil, err
	}

	slog.Debug("initialized downloader", "backend", cfg.Backend, "output_dir", cfg.OutputDir)
	return newDownloader(cfg, b, connector, query, deps.Stats), nil
}

func newDownloader(cfg *config.Config, b backend.Backend, connector grid.Connector, query grid.QueryClient, st *stats.Collector) *Downloader {
	return &Downloader{
		cfg:       cfg,
		mapper:    &pathmap.Mapper{OutputDir: cfg.OutputDir, KeepDepth: cfg.KeepDepth},
		connector: connector,
		resolver:  &glob.Resolver{Query: query},
		backend:   b,
		stats:     st,
	}
}

// Download runs the whole batch and blocks until every job has an
// outcome. Partial failures never abort the run; they are counted and
// reported in the result.
func (d *Downloader) Download(ctx context.Context) (*models.DownloadResult, error) {
	start := time.Now()
	result := &models.DownloadResult{
		Backend:       d.backend.Name(),
		OutputDir:     d.cfg.OutputDir,
		RunID:         uuid.NewString(),
		OperationTime: utils.FormatTime(start),
	}

	remote := slices.Clone(d.cfg.RemoteFiles)
	if found := d.resolveGlobs(ctx); len(found) > 0 {
		slog.Info("found files via glob", "count", len(found))
		remote = append(remote, found...)
	}

	if len(remote) == 0 {
		slog.Warn("no remote files specified")
		result.DownloadDuration = time.Since(start).Round(time.Millisecond).String()
		return result, nil
	}

	jobs := make([]models.CopyJob, 0, len(remote))
	var mapFailures []models.Outcome
	seen := make(map[string]struct{})
	for _, r := range remote {
		local, err := d.localPath(r, seen)
		if err != nil {
			slog.Error("cannot map remote path", "remote", r, "error", err)
			mapFailures = append(mapFailures, models.Failed(models.CopyJob{RemotePath: r}, err))
			continue
		}
		jobs = append(jobs, models.CopyJob{RemotePath: r, LocalPath: local})
	}

	slog.Info("starting download", "backend", d.backend.Name(), "files", len(remote))
	report := d.backend.Run(ctx, jobs)

	outcomes := append(report.Outcomes, mapFailures...)
	for _, o := range outcomes {
		item := models.DownloadItem{
			RemotePath: o.Job.RemotePath,
			LocalPath:  o.Job.LocalPath,
			Status:     string(o.Status),
		}
		switch o.Status {
		case models.StatusFailed:
			if o.Err != nil {
				item.Error = o.Err.Error()
			}
			result.Failed++
		case models.StatusSkipped:
			result.Skipped++
			result.Succeeded++
			item.Size = localSize(o.Job.LocalPath)
		default:
			result.Succeeded++
			item.Size = localSize(o.Job.LocalPath)
		}
		result.TotalSizeBytes += item.Size
		result.Items = append(result.Items, item)
	}
	result.TotalFiles = len(outcomes)
	result.TotalSizeHuman = utils.FormatBytes(result.TotalSizeBytes)
	result.DownloadDuration = time.Since(start).Round(time.Millisecond).String()

	slog.Info("download complete",
		"succeeded", result.Succeeded, "total", result.TotalFiles, "stats", d.stats.String())
	return result, nil
}

// FindFiles resolves the configured glob entries and returns the
// matched remote paths without downloading anything.
func (d *Downloader) FindFiles(ctx context.Context) ([]string, error) {
	session, err := d.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	return d.resolver.Resolve(ctx, session, d.cfg.RemoteGlobs), nil
}

// resolveGlobs expands the configured glob entries through a
// short-lived session. The session is closed before any per-file
// fan-out so it never reaches the workers; a session failure disables
// glob resolution but not the rest of the run.
func (d *Downloader) resolveGlobs(ctx context.Context) []string {
	if len(d.cfg.RemoteGlobs) == 0 {
		return nil
	}
	session, err := d.connector.Connect(ctx)
	if err != nil {
		slog.Warn("grid session unavailable, glob entries ignored", "error", err)
		return nil
	}
	defer session.Close()
	return d.resolver.Resolve(ctx, session, d.cfg.RemoteGlobs)
}

func (d *Downloader) localPath(remote string, seen map[string]struct{}) (string, error) {
	if d.cfg.FlattenPaths {
		return d.mapper.UniqueLocalPath(remote, seen)
	}
	return d.mapper.Map(remote)
}

func localSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
