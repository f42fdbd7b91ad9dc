package fetch

// Guard hands out identity tokens for attempt contexts and decides whether a
// late result still belongs to the live one.
type Guard struct {
	current  uint64
	disposed bool
}

// Bind issues the token for a new attempt context. Every earlier token
// becomes stale.
func (g *Guard) Bind() uint64 {
	g.current++
	return g.current
}

// IsStale reports whether seq no longer identifies the active context.
func (g *Guard) IsStale(seq uint64) bool {
	return g.disposed || seq == 0 || seq != g.current
}

// Disposed reports whether Dispose has been called.
func (g *Guard) Disposed() bool {
	return g.disposed
}

// Dispose marks every outstanding token stale. It returns true only on the
// first call.
func (g *Guard) Dispose() bool {
	if g.disposed {
		return false
	}
	g.disposed = true
	g.current++
	return true
}
