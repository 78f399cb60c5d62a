// Package grid wraps the external grid tools behind narrow client
// interfaces: session establishment, catalog search, batched copy and
// single-file copy. The default implementations shell out to the
// configured command-line tools.
package grid

import (
	"context"
	"fmt"
	"os/exec"

	"gridfetch/internal/griderrors"
)

// Session is an authenticated grid session handle. A Session is owned
// by exactly one execution context (a worker or the orchestrator) and
// must not be shared across concurrent contexts.
type Session struct {
	tool string
	open bool
}

// NewSession returns an open session handle bound to the given tool.
// Connectors call this once authentication succeeds.
func NewSession(tool string) *Session {
	return &Session{tool: tool, open: true}
}

// Connected reports whether the session is usable.
func (s *Session) Connected() bool {
	return s != nil && s.open
}

// Close releases the session. Closing a nil or closed session is a no-op.
func (s *Session) Close() {
	if s != nil {
		s.open = false
	}
}

// Connector establishes grid sessions.
type Connector interface {
	Connect(ctx context.Context) (*Session, error)
}

// ToolConnector establishes sessions through the grid client tool,
// which authenticates from the ambient environment (token files, proxy
// certificates).
type ToolConnector struct {
	tool string
	run  runner
}

// NewToolConnector verifies the grid client tool is on PATH and
// returns a connector using it.
func NewToolConnector(tool string) (*ToolConnector, error) {
	if _, err := exec.LookPath(tool); err != nil {
		return nil, fmt.Errorf("grid client %q not found: %w", tool, err)
	}
	return &ToolConnector{tool: tool, run: execRunner{}}, nil
}

// Connect probes the grid with a cheap catalog command and returns a
// live session on success.
func (c *ToolConnector) Connect(ctx context.Context) (*Session, error) {
	if _, err := c.run.run(ctx, c.tool, "pwd"); err != nil {
		return nil, &griderrors.Error{
			Op:  "connect",
			Err: fmt.Errorf("%w: %v", griderrors.ErrConnection, err),
		}
	}
	return NewSession(c.tool), nil
}
