package backend

import (
	"context"

	"gridfetch/internal/grid"
	"gridfetch/internal/griderrors"
)

// ConnectionCache lazily dials a grid session on first use and reuses
// it for the lifetime of its owner. Each worker owns exactly one cache;
// the cache and its session never cross worker boundaries, so no
// locking is needed.
type ConnectionCache struct {
	connector grid.Connector
	session   *grid.Session
}

// NewConnectionCache returns an empty cache dialing through connector.
func NewConnectionCache(connector grid.Connector) *ConnectionCache {
	return &ConnectionCache{connector: connector}
}

// Get returns the cached session, dialing on first call. A failed dial
// or a dead handle is never cached, so the next call retries.
func (c *ConnectionCache) Get(ctx context.Context) (*grid.Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	s, err := c.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Connected() {
		return nil, griderrors.New("connect", griderrors.ErrConnection)
	}
	c.session = s
	return s, nil
}

// Close releases the cached session, if any.
func (c *ConnectionCache) Close() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}
