// Package pathmap maps remote grid paths onto the local directory tree.
package pathmap

import (
	"fmt"
	"path/filepath"
	"strings"

	"gridfetch/internal/griderrors"
)

// Mapper derives local paths from remote grid paths. For a fixed
// OutputDir and KeepDepth the mapping is a pure function: the same
// remote path always yields the same local path.
type Mapper struct {
	// OutputDir is the root of the local tree.
	OutputDir string

	// KeepDepth is the number of trailing directory segments of the
	// remote path preserved under OutputDir. Nil preserves the full
	// remote hierarchy.
	KeepDepth *int
}

// Map returns the local path for a remote grid path.
func (m *Mapper) Map(remotePath string) (string, error) {
	parts := splitPath(remotePath)
	if len(parts) == 0 {
		return "", &griderrors.Error{
			Op:     "map",
			Remote: remotePath,
			Err:    fmt.Errorf("%w: no path segments", griderrors.ErrInvalidPath),
		}
	}

	if m.KeepDepth == nil {
		return filepath.Join(append([]string{m.OutputDir}, parts...)...), nil
	}

	filename := parts[len(parts)-1]
	dirs := parts[:len(parts)-1]
	keep := *m.KeepDepth
	if keep > len(dirs) {
		keep = len(dirs)
	}
	if keep < 0 {
		keep = 0
	}

	elems := append([]string{m.OutputDir}, dirs[len(dirs)-keep:]...)
	return filepath.Join(append(elems, filename)...), nil
}

// UniqueLocalPath maps a remote path into a flat OutputDir, joining
// trailing path segments with underscores at increasing depth until the
// name is unused. The caller owns seen and scopes it to one download
// run; names handed out are recorded in it. If all nine candidate
// depths collide the bare filename is returned.
func (m *Mapper) UniqueLocalPath(remotePath string, seen map[string]struct{}) (string, error) {
	parts := splitPath(remotePath)
	if len(parts) == 0 {
		return "", &griderrors.Error{
			Op:     "map",
			Remote: remotePath,
			Err:    fmt.Errorf("%w: no path segments", griderrors.ErrInvalidPath),
		}
	}

	for depth := 1; depth < 10; depth++ {
		start := len(parts) - depth
		if start < 0 {
			start = 0
		}
		name := strings.Join(parts[start:], "_")
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			return filepath.Join(m.OutputDir, name), nil
		}
	}

	return filepath.Join(m.OutputDir, parts[len(parts)-1]), nil
}

func splitPath(remotePath string) []string {
	var parts []string
	for _, p := range strings.Split(remotePath, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
