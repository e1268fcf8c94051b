// Package workspace holds the per-browser state containers: the burger
// constructor, the order submission lifecycle, the order history and the
// profile feed.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/builder"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/feed"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/orders"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "workspace")

// ErrCannotSubmit rejects submitting a constructor without a bun and a topping
var ErrCannotSubmit = errors.New("constructor needs a bun and at least one topping")

// Dependencies are shared by every workspace
type Dependencies struct {
	Submitter orders.Submitter
	Finder    orders.Finder
	Lister    orders.Lister
	// ProfileDialer opens the own-orders feed for a token
	ProfileDialer func(token string) feed.Dialer
}

// Workspace is the state of one browser session
type Workspace struct {
	ID          string
	Constructor *builder.Constructor
	Orders      *orders.Lifecycle
	History     *orders.History

	deps Dependencies

	mu           sync.Mutex
	profile      *feed.Synchronizer
	profileUser  string
	profileToken string
	lastSeen     time.Time
}

func newWorkspace(id string, deps Dependencies, now time.Time) *Workspace {
	return &Workspace{
		ID:          id,
		Constructor: builder.New(),
		Orders:      orders.NewLifecycle(deps.Submitter, deps.Finder),
		History:     orders.NewHistory(deps.Lister),
		deps:        deps,
		lastSeen:    now,
	}
}

// PlaceOrder submits the constructor's burger and empties the constructor
// once the kitchen accepted it. A failed submission leaves the constructor
// untouched so the user can retry.
func (w *Workspace) PlaceOrder(ctx context.Context, token string) (models.Order, error) {
	if !w.Constructor.CanSubmit() {
		return models.Order{}, ErrCannotSubmit
	}

	order, err := w.Orders.Submit(ctx, token, w.Constructor.IngredientIDs())
	if err != nil {
		return models.Order{}, err
	}
	w.Constructor.Clear()
	log.WithFields(logrus.Fields{
		"workspace": w.ID,
		"number":    order.Number,
	}).Debug("Constructor cleared after order")
	return order, nil
}

// ClearConstructor empties the constructor unless its order is being
// submitted
func (w *Workspace) ClearConstructor() error {
	if w.Orders.Outcome().State == orders.StateSubmitting {
		return orders.ErrSubmissionInFlight
	}
	w.Constructor.Clear()
	return nil
}

// Profile returns the own-orders feed for user, creating it on first use.
// A different user replaces the previous user's feed. The feed always
// dials with the latest token seen for its user.
func (w *Workspace) Profile(user models.User, token string) *feed.Synchronizer {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.profileToken = token
	if w.profile != nil && w.profileUser == user.ID {
		return w.profile
	}
	if w.profile != nil {
		w.profile.Disconnect()
		w.History.Clear()
	}
	w.profile = feed.NewSynchronizer("profile", feed.DialerFunc(w.dialProfile))
	w.profileUser = user.ID
	return w.profile
}

func (w *Workspace) dialProfile(ctx context.Context) (feed.Stream, error) {
	w.mu.Lock()
	token := w.profileToken
	w.mu.Unlock()
	return w.deps.ProfileDialer(token).Dial(ctx)
}

// Lookup finds an order in the profile feed, if one is held
func (w *Workspace) Lookup(number int) (models.Order, bool) {
	w.mu.Lock()
	profile := w.profile
	w.mu.Unlock()
	if profile == nil {
		return models.Order{}, false
	}
	return profile.Lookup(number)
}

// Close disconnects the workspace's live feeds
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.profile != nil {
		w.profile.Disconnect()
	}
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}
