// Package backend implements the two grid transfer strategies behind a
// single interface: a per-file worker-pool backend and a batched
// single-call backend.
package backend

import (
	"context"
	"fmt"

	"gridfetch/internal/grid"
	"gridfetch/internal/griderrors"
	"gridfetch/internal/models"
	"gridfetch/internal/stats"
)

// Backend tags recognized by New.
const (
	TagPerFile = "xrootd"
	TagBatch   = "alien"
)

// Backend executes a batch of copy jobs and reports one outcome per
// job. Implementations are selected once at construction; callers
// never branch on backend identity afterwards.
type Backend interface {
	Name() string
	Run(ctx context.Context, jobs []models.CopyJob) *RunReport
}

// Deps carries the collaborators a backend may need. Unused fields may
// be left zero for the variant that does not need them.
type Deps struct {
	Connector grid.Connector
	Copier    grid.FileCopier
	Batch     grid.BatchCopier
	Workers   int
	Args      []string
	Stats     *stats.Collector
}

// New selects a backend implementation by tag.
func New(tag string, deps Deps) (Backend, error) {
	switch tag {
	case TagPerFile:
		return NewPerFile(deps.Connector, deps.Copier, deps.Workers, deps.Stats), nil
	case TagBatch:
		return NewBatch(deps.Connector, deps.Batch, deps.Args, deps.Workers, deps.Stats), nil
	default:
		return nil, &griderrors.Error{
			Op:  "select",
			Err: fmt.Errorf("%w: unknown backend %q", griderrors.ErrConfig, tag),
		}
	}
}

// RunReport aggregates the per-job outcomes of one backend run.
type RunReport struct {
	Outcomes []models.Outcome
}

// Succeeded counts jobs that do not need a re-fetch; skipped jobs
// count as successes.
func (r *RunReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Skipped counts jobs absorbed by the local existence check.
func (r *RunReport) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == models.StatusSkipped {
			n++
		}
	}
	return n
}

// Failed counts jobs whose transfer did not complete.
func (r *RunReport) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}
