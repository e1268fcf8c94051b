// Package feed keeps live order feeds in sync with server pushes.
//
// A Synchronizer owns one feed (the public one or a user's own orders) and
// runs the connection state machine
//
//	idle -> connecting -> online
//	any  -> error      (transport failure)
//	any  -> idle       (Disconnect)
//
// Every push replaces the held snapshot as a whole. Errors are terminal
// for the connection: the caller retries with Disconnect followed by
// Connect. The last good snapshot stays readable and is flagged stale
// whenever the feed is not online.
package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrDisconnectFirst is returned by Connect on a feed in the error state
var ErrDisconnectFirst = errors.New("feed is in error state, disconnect before reconnecting")

// Status is the connection state of a feed
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusOnline     Status = "online"
	StatusError      Status = "error"
)

// Stream delivers full snapshots. Recv blocks until the next push, a
// transport error, or ctx cancellation.
type Stream interface {
	Recv(ctx context.Context) (models.FeedSnapshot, error)
	Close() error
}

// Dialer opens a subscription
type Dialer interface {
	Dial(ctx context.Context) (Stream, error)
}

// DialerFunc adapts a function to Dialer
type DialerFunc func(ctx context.Context) (Stream, error)

func (f DialerFunc) Dial(ctx context.Context) (Stream, error) {
	return f(ctx)
}

// View is what consumers read
type View struct {
	Name     string              `json:"name"`
	Status   Status              `json:"status"`
	Stale    bool                `json:"stale"`
	Error    string              `json:"error,omitempty"`
	Snapshot models.FeedSnapshot `json:"snapshot"`
}

// Synchronizer maintains one live feed
type Synchronizer struct {
	name   string
	dialer Dialer
	log    *logrus.Entry

	mu          sync.RWMutex
	status      Status
	snapshot    models.FeedSnapshot
	hasData     bool
	lastSeq     uint64
	err         string
	generation  uint64
	cancel      context.CancelFunc
	subscribers map[uint64]chan View
	nextSub     uint64
}

// NewSynchronizer creates an idle feed named name
func NewSynchronizer(name string, dialer Dialer) *Synchronizer {
	return &Synchronizer{
		name:        name,
		dialer:      dialer,
		log:         logrus.WithFields(logrus.Fields{"component": "feed", "feed": name}),
		status:      StatusIdle,
		snapshot:    models.FeedSnapshot{Orders: []models.Order{}},
		subscribers: make(map[uint64]chan View),
	}
}

// Connect starts the subscription. It is a no-op on a feed that is already
// connecting or online and fails with ErrDisconnectFirst after an error.
// The subscription outlives ctx's cancellation; only Disconnect stops it.
func (s *Synchronizer) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusConnecting, StatusOnline:
		return nil
	case StatusError:
		return ErrDisconnectFirst
	}

	s.generation++
	s.status = StatusConnecting
	s.err = ""
	s.lastSeq = 0

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.run(runCtx, s.generation)

	s.log.Info("Connecting feed")
	s.broadcast()
	return nil
}

// Disconnect stops the subscription and returns to idle. It is safe to call
// at any time, repeatedly. Pushes already in transit are discarded.
func (s *Synchronizer) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.status == StatusIdle {
		return
	}
	s.status = StatusIdle
	s.err = ""
	s.log.Info("Feed disconnected")
	s.broadcast()
}

func (s *Synchronizer) run(ctx context.Context, gen uint64) {
	stream, err := s.dialer.Dial(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.fail(gen, err)
		}
		return
	}
	defer stream.Close()

	for {
		snap, err := stream.Recv(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.fail(gen, err)
			}
			return
		}
		s.apply(gen, snap)
	}
}

// apply replaces the held snapshot. Pushes from an old connection, pushes
// after Disconnect and pushes older than the held one are dropped.
func (s *Synchronizer) apply(gen uint64, snap models.FeedSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || (s.status != StatusConnecting && s.status != StatusOnline) {
		s.log.Debug("Dropping push for a closed connection")
		return false
	}
	if snap.Sequence != 0 && snap.Sequence <= s.lastSeq {
		s.log.WithFields(logrus.Fields{
			"sequence": snap.Sequence,
			"held":     s.lastSeq,
		}).Debug("Dropping out-of-order push")
		return false
	}

	if snap.Orders == nil {
		snap.Orders = []models.Order{}
	}
	if snap.ReceivedAt.IsZero() {
		snap.ReceivedAt = time.Now()
	}
	s.snapshot = snap
	s.hasData = true
	s.lastSeq = snap.Sequence
	if s.status != StatusOnline {
		s.log.Info("Feed online")
	}
	s.status = StatusOnline
	s.err = ""
	s.broadcast()
	return true
}

func (s *Synchronizer) fail(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.status = StatusError
	s.err = err.Error()
	s.log.WithError(err).Warn("Feed transport error")
	s.broadcast()
}

// View returns the current state of the feed
func (s *Synchronizer) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view()
}

func (s *Synchronizer) view() View {
	snap := s.snapshot
	snap.Orders = make([]models.Order, len(s.snapshot.Orders))
	copy(snap.Orders, s.snapshot.Orders)
	return View{
		Name:     s.name,
		Status:   s.status,
		Stale:    s.hasData && s.status != StatusOnline,
		Error:    s.err,
		Snapshot: snap,
	}
}

// Status returns the connection state
func (s *Synchronizer) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Lookup finds an order in the held snapshot by number
func (s *Synchronizer) Lookup(number int) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, order := range s.snapshot.Orders {
		if order.Number == number {
			return order, true
		}
	}
	return models.Order{}, false
}

// Subscribe returns a channel receiving the view after every change. The
// channel keeps only the latest view; slow readers skip intermediate ones.
// The returned function unsubscribes and closes the channel.
func (s *Synchronizer) Subscribe() (<-chan View, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan View, 1)
	ch <- s.view()
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// broadcast must be called with s.mu held
func (s *Synchronizer) broadcast() {
	if len(s.subscribers) == 0 {
		return
	}
	v := s.view()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}
