// Package orders tracks order submission and order lookups.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "orders")

var (
	// ErrSubmissionInFlight rejects a second submission while one is pending
	ErrSubmissionInFlight = errors.New("an order submission is already in flight")
	// ErrNotFound is the normal outcome of looking up an unknown order number
	ErrNotFound = errors.New("order not found")
	// ErrNoIngredients rejects an empty submission
	ErrNoIngredients = errors.New("order has no ingredients")
)

// State of the submission state machine
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateFulfilled  State = "fulfilled"
	StateFailed     State = "failed"
)

// Submitter places an order with the kitchen. ingredientIDs carry the bun
// id at both ends.
type Submitter interface {
	Submit(ctx context.Context, token string, ingredientIDs []string) (models.Order, error)
}

// Finder looks up a single order. Unknown numbers return ErrNotFound.
type Finder interface {
	OrderByNumber(ctx context.Context, number int) (models.Order, error)
}

// Lister returns the orders of the token's owner
type Lister interface {
	OwnOrders(ctx context.Context, token string) ([]models.Order, error)
}

// Outcome is a read-only view of the submission state
type Outcome struct {
	State       State         `json:"state"`
	Order       *models.Order `json:"order,omitempty"`
	Error       string        `json:"error,omitempty"`
	SubmittedAt time.Time     `json:"submittedAt,omitempty"`
	CompletedAt time.Time     `json:"completedAt,omitempty"`
}

// Lifecycle is the submission state machine:
// idle -> submitting -> fulfilled | failed, back to idle on Clear or on the
// next submission. At most one submission is in flight at a time.
type Lifecycle struct {
	submitter Submitter
	finder    Finder

	mu          sync.Mutex
	state       State
	order       *models.Order
	err         string
	submittedAt time.Time
	completedAt time.Time
}

// NewLifecycle creates an idle lifecycle
func NewLifecycle(submitter Submitter, finder Finder) *Lifecycle {
	return &Lifecycle{
		submitter: submitter,
		finder:    finder,
		state:     StateIdle,
	}
}

// Submit sends the ingredient ids to the kitchen and blocks until it
// answers. The call is detached from ctx cancellation: a caller that goes
// away does not abort an order already on its way.
//
// Submit does not clear the constructor. The caller does that after a nil
// error, and leaves it intact on failure so the user can retry.
func (l *Lifecycle) Submit(ctx context.Context, token string, ingredientIDs []string) (models.Order, error) {
	if len(ingredientIDs) == 0 {
		return models.Order{}, ErrNoIngredients
	}

	l.mu.Lock()
	if l.state == StateSubmitting {
		l.mu.Unlock()
		return models.Order{}, ErrSubmissionInFlight
	}
	l.state = StateSubmitting
	l.order = nil
	l.err = ""
	l.submittedAt = time.Now()
	l.completedAt = time.Time{}
	l.mu.Unlock()

	ids := make([]string, len(ingredientIDs))
	copy(ids, ingredientIDs)

	log.WithField("ingredients", len(ids)).Debug("Submitting order")
	order, err := l.submitter.Submit(context.WithoutCancel(ctx), token, ids)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.completedAt = time.Now()
	if err != nil {
		l.state = StateFailed
		l.err = err.Error()
		log.WithError(err).Warn("Order submission failed")
		return models.Order{}, fmt.Errorf("submitting order: %w", err)
	}

	l.state = StateFulfilled
	l.order = &order
	log.WithFields(logrus.Fields{
		"number": order.Number,
		"name":   order.Name,
	}).Info("Order submitted")
	return order, nil
}

// Outcome returns the current submission state
func (l *Lifecycle) Outcome() Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := Outcome{
		State:       l.state,
		Error:       l.err,
		SubmittedAt: l.submittedAt,
		CompletedAt: l.completedAt,
	}
	if l.order != nil {
		order := *l.order
		out.Order = &order
	}
	return out
}

// Clear acknowledges a finished submission and returns to idle. It cannot
// interrupt a submission in flight and returns false in that case.
func (l *Lifecycle) Clear() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateSubmitting {
		return false
	}
	l.state = StateIdle
	l.order = nil
	l.err = ""
	l.submittedAt = time.Time{}
	l.completedAt = time.Time{}
	return true
}

// FetchByNumber looks an order up for a detail view. It does not touch
// the submission state.
func (l *Lifecycle) FetchByNumber(ctx context.Context, number int) (models.Order, error) {
	if number <= 0 {
		return models.Order{}, fmt.Errorf("%w: %d", ErrNotFound, number)
	}
	return l.finder.OrderByNumber(ctx, number)
}
