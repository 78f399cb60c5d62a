// Package glob expands wildcard search specs into concrete remote
// path lists via the grid catalog.
package glob

import (
	"context"
	"log/slog"
	"strings"

	"gridfetch/internal/grid"
	"gridfetch/internal/models"
)

// Resolver resolves glob search entries against the catalog. A failing
// or empty search contributes zero paths without aborting the rest.
type Resolver struct {
	Query grid.QueryClient
}

// Resolve expands every spec and accumulates the matched remote paths.
// A nil query client disables resolution entirely; the per-file
// transfer tool cannot substitute for the catalog.
func (r *Resolver) Resolve(ctx context.Context, session *grid.Session, specs []models.GlobSpec) []string {
	if len(specs) == 0 {
		return nil
	}
	if r.Query == nil {
		slog.Warn("query client unavailable, glob entries ignored")
		return nil
	}

	slog.Info("resolving glob search entries", "count", len(specs))

	var found []string
	for _, spec := range specs {
		out, err := r.Query.Find(ctx, session, []string{"-glob", spec.Pattern, spec.Base})
		if err != nil {
			slog.Warn("glob search failed", "base", spec.Base, "pattern", spec.Pattern, "error", err)
			continue
		}
		files := splitLines(out)
		if len(files) == 0 {
			slog.Warn("no results for glob", "base", spec.Base, "pattern", spec.Pattern)
			continue
		}
		slog.Debug("glob matched files", "base", spec.Base, "pattern", spec.Pattern, "count", len(files))
		found = append(found, files...)
	}
	return found
}

func splitLines(out string) []string {
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}
