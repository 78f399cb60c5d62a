package grid

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"gridfetch/internal/griderrors"
)

const (
	remoteScheme = "alien://"
	localScheme  = "file:"
)

// NormalizeRemote prefixes a remote path with the grid URI scheme if
// not already prefixed.
func NormalizeRemote(path string) string {
	if strings.HasPrefix(path, remoteScheme) {
		return path
	}
	return remoteScheme + path
}

// NormalizeLocal prefixes a local path with the file URI scheme if not
// already prefixed.
func NormalizeLocal(path string) string {
	if strings.HasPrefix(path, localScheme) {
		return path
	}
	return localScheme + path
}

// FileCopier copies one remote file to a local destination.
type FileCopier interface {
	Copy(ctx context.Context, src, dst string) error
}

// ToolFileCopier copies single files through the transfer tool
// (xrdcp-style: one source URI, one destination URI per invocation).
type ToolFileCopier struct {
	tool string
	run  runner
}

// NewToolFileCopier verifies the transfer tool is on PATH and returns
// a copier using it.
func NewToolFileCopier(tool string) (*ToolFileCopier, error) {
	if _, err := exec.LookPath(tool); err != nil {
		return nil, fmt.Errorf("transfer tool %q not found: %w", tool, err)
	}
	return &ToolFileCopier{tool: tool, run: execRunner{}}, nil
}

func (c *ToolFileCopier) Copy(ctx context.Context, src, dst string) error {
	if _, err := c.run.run(ctx, c.tool, src, dst); err != nil {
		return &griderrors.Error{
			Op:     "copy",
			Remote: src,
			Local:  dst,
			Err:    fmt.Errorf("%w: %v", griderrors.ErrTransfer, err),
		}
	}
	return nil
}

// BatchCopier transfers a whole batch of files in one client call.
// The call reports only aggregate success or failure.
type BatchCopier interface {
	CopyBatch(ctx context.Context, s *Session, args, srcs, dsts []string) error
}

// ToolBatchCopier drives the grid client tool's batched copy command.
// Source/destination pairs are handed over via a transfer-list file.
type ToolBatchCopier struct {
	tool string
	run  runner
}

// NewToolBatchCopier verifies the grid client tool is on PATH and
// returns a batch copier using it.
func NewToolBatchCopier(tool string) (*ToolBatchCopier, error) {
	if _, err := exec.LookPath(tool); err != nil {
		return nil, fmt.Errorf("grid client %q not found: %w", tool, err)
	}
	return &ToolBatchCopier{tool: tool, run: execRunner{}}, nil
}

func (b *ToolBatchCopier) CopyBatch(ctx context.Context, s *Session, args, srcs, dsts []string) error {
	if len(srcs) != len(dsts) {
		return griderrors.New("cp",
			fmt.Errorf("source/destination length mismatch: %d != %d", len(srcs), len(dsts)))
	}
	if !s.Connected() {
		return griderrors.New("cp", griderrors.ErrConnection)
	}

	list, err := writeTransferList(srcs, dsts)
	if err != nil {
		return griderrors.New("cp", err)
	}
	defer os.Remove(list)

	cmdArgs := append([]string{"cp"}, args...)
	cmdArgs = append(cmdArgs, "-input", list)
	if _, err := b.run.run(ctx, b.tool, cmdArgs...); err != nil {
		return &griderrors.Error{
			Op:  "cp",
			Err: fmt.Errorf("%w: %v", griderrors.ErrTransfer, err),
		}
	}
	return nil
}

func writeTransferList(srcs, dsts []string) (string, error) {
	f, err := os.CreateTemp("", "gridfetch-batch-*.list")
	if err != nil {
		return "", fmt.Errorf("failed to create transfer list: %w", err)
	}
	defer f.Close()

	for i := range srcs {
		if _, err := fmt.Fprintf(f, "%s %s\n", srcs[i], dsts[i]); err != nil {
			os.Remove(f.Name())
			return "", fmt.Errorf("failed to write transfer list: %w", err)
		}
	}
	return f.Name(), nil
}
