package grid

import (
	"context"
	"fmt"
	"os/exec"

	"gridfetch/internal/griderrors"
)

// QueryClient searches the grid file catalog.
type QueryClient interface {
	// Find runs a catalog search with the given arguments (glob
	// pattern and base path) and returns the raw newline-delimited
	// path list.
	Find(ctx context.Context, s *Session, args []string) (string, error)
}

// ToolQuery runs catalog searches through the grid client tool.
type ToolQuery struct {
	tool string
	run  runner
}

// NewToolQuery verifies the grid client tool is on PATH and returns a
// query client using it.
func NewToolQuery(tool string) (*ToolQuery, error) {
	if _, err := exec.LookPath(tool); err != nil {
		return nil, fmt.Errorf("grid client %q not found: %w", tool, err)
	}
	return &ToolQuery{tool: tool, run: execRunner{}}, nil
}

func (q *ToolQuery) Find(ctx context.Context, s *Session, args []string) (string, error) {
	if !s.Connected() {
		return "", griderrors.New("find", griderrors.ErrConnection)
	}
	out, err := q.run.run(ctx, q.tool, append([]string{"find"}, args...)...)
	if err != nil {
		return "", &griderrors.Error{
			Op:  "find",
			Err: fmt.Errorf("%w: %v", griderrors.ErrQuery, err),
		}
	}
	return out, nil
}
