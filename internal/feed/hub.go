package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
)

// ErrStreamClosed is returned by Recv after Close
var ErrStreamClosed = errors.New("feed stream closed")

// SnapshotFunc builds the current snapshot for an owner; an empty owner
// means the public feed.
type SnapshotFunc func(ctx context.Context, owner string) (models.FeedSnapshot, error)

// Hub is the in-process transport for the local kitchen. Every Notify
// wakes all open streams, which then push a freshly built snapshot.
type Hub struct {
	source SnapshotFunc
	seq    atomic.Uint64

	mu      sync.Mutex
	streams map[*hubStream]struct{}
}

func NewHub(source SnapshotFunc) *Hub {
	return &Hub{
		source:  source,
		streams: make(map[*hubStream]struct{}),
	}
}

// Dialer returns a dialer for the public feed (owner "") or an owner's feed
func (h *Hub) Dialer(owner string) Dialer {
	return DialerFunc(func(ctx context.Context) (Stream, error) {
		st := &hubStream{
			hub:    h,
			owner:  owner,
			wake:   make(chan struct{}, 1),
			closed: make(chan struct{}),
		}
		st.wake <- struct{}{}

		h.mu.Lock()
		h.streams[st] = struct{}{}
		h.mu.Unlock()
		return st, nil
	})
}

// Notify signals that orders changed
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for st := range h.streams {
		select {
		case st.wake <- struct{}{}:
		default:
		}
	}
}

// Streams returns how many subscriptions are open
func (h *Hub) Streams() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams)
}

type hubStream struct {
	hub    *Hub
	owner  string
	wake   chan struct{}
	closed chan struct{}
	once   sync.Once
}

func (st *hubStream) Recv(ctx context.Context) (models.FeedSnapshot, error) {
	select {
	case <-ctx.Done():
		return models.FeedSnapshot{}, ctx.Err()
	case <-st.closed:
		return models.FeedSnapshot{}, ErrStreamClosed
	case <-st.wake:
	}

	snap, err := st.hub.source(ctx, st.owner)
	if err != nil {
		return models.FeedSnapshot{}, err
	}
	snap.Sequence = st.hub.seq.Add(1)
	snap.ReceivedAt = time.Now()
	return snap, nil
}

func (st *hubStream) Close() error {
	st.once.Do(func() {
		st.hub.mu.Lock()
		delete(st.hub.streams, st)
		st.hub.mu.Unlock()
		close(st.closed)
	})
	return nil
}
