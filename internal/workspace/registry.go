package workspace

import (
	"context"
	"sync"
	"time"
)

// Option configures the registry
type Option func(*Registry)

// WithIdleTimeout sets how long an unused workspace is kept
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) { r.idleTimeout = d }
}

// WithSweepInterval sets how often idle workspaces are looked for
func WithSweepInterval(d time.Duration) Option {
	return func(r *Registry) { r.sweepInterval = d }
}

// WithMaxWorkspaces caps how many workspaces are held. When full, the least
// recently used workspace is evicted to make room.
func WithMaxWorkspaces(n int) Option {
	return func(r *Registry) { r.maxWorkspaces = n }
}

// Registry owns the workspaces by session id and evicts idle ones
type Registry struct {
	deps          Dependencies
	idleTimeout   time.Duration
	sweepInterval time.Duration
	maxWorkspaces int
	now           func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
	running    bool
	cancel     context.CancelFunc
}

// NewRegistry creates an empty registry
func NewRegistry(deps Dependencies, opts ...Option) *Registry {
	r := &Registry{
		deps:          deps,
		idleTimeout:   2 * time.Hour,
		sweepInterval: 5 * time.Minute,
		maxWorkspaces: 10000,
		now:           time.Now,
		workspaces:    make(map[string]*Workspace),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the workspace for id, creating it on first use
func (r *Registry) Get(id string) *Workspace {
	r.mu.Lock()
	now := r.now()
	if w, ok := r.workspaces[id]; ok {
		w.touch(now)
		r.mu.Unlock()
		return w
	}

	var evicted *Workspace
	if r.maxWorkspaces > 0 && len(r.workspaces) >= r.maxWorkspaces {
		evicted = r.evictOldestLocked()
	}
	w := newWorkspace(id, r.deps, now)
	r.workspaces[id] = w
	r.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		log.WithField("workspace", evicted.ID).Info("Workspace evicted, registry is full")
	}
	log.WithField("workspace", id).Debug("Workspace created")
	return w
}

func (r *Registry) evictOldestLocked() *Workspace {
	var oldest *Workspace
	for _, w := range r.workspaces {
		if oldest == nil || w.idleSince().Before(oldest.idleSince()) {
			oldest = w
		}
	}
	if oldest != nil {
		delete(r.workspaces, oldest.ID)
	}
	return oldest
}

// Len returns how many workspaces are held
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Sweep closes and forgets workspaces idle for longer than the timeout
func (r *Registry) Sweep() int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.idleTimeout)
	var evicted []*Workspace
	for id, w := range r.workspaces {
		if w.idleSince().Before(cutoff) {
			evicted = append(evicted, w)
			delete(r.workspaces, id)
		}
	}
	r.mu.Unlock()

	for _, w := range evicted {
		w.Close()
	}
	if len(evicted) > 0 {
		log.WithField("evicted", len(evicted)).Info("Idle workspaces evicted")
	}
	return len(evicted)
}

// Start runs the idle sweeper in the background. Non-blocking.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	childCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	go r.loop(childCtx)
}

// Stop ends the sweeper and closes every workspace
func (r *Registry) Stop() {
	r.mu.Lock()
	if r.running {
		r.cancel()
		r.running = false
	}
	all := r.workspaces
	r.workspaces = make(map[string]*Workspace)
	r.mu.Unlock()

	for _, w := range all {
		w.Close()
	}
}

func (r *Registry) loop(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
