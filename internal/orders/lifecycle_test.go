package orders

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
	gotCtx  context.Context
	gotIDs  []string
}

func (f *fakeSubmitter) Submit(ctx context.Context, token string, ids []string) (models.Order, error) {
	f.calls.Add(1)
	f.gotCtx = ctx
	f.gotIDs = ids
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return models.Order{}, f.err
	}
	return models.Order{Number: 1000 + int(f.calls.Load()), Name: "Space burger", Status: models.OrderCreated, Ingredients: ids}, nil
}

type fakeFinder struct {
	orders map[int]models.Order
	err    error
	calls  int
}

func (f *fakeFinder) OrderByNumber(ctx context.Context, number int) (models.Order, error) {
	f.calls++
	if f.err != nil {
		return models.Order{}, f.err
	}
	order, ok := f.orders[number]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return order, nil
}

var burgerIDs = []string{"bun-1", "main-1", "sauce-1", "bun-1"}

func TestSubmitSuccess(t *testing.T) {
	sub := &fakeSubmitter{}
	l := NewLifecycle(sub, &fakeFinder{})
	assert.Equal(t, StateIdle, l.Outcome().State)

	order, err := l.Submit(context.Background(), "token", burgerIDs)
	require.NoError(t, err)
	assert.Equal(t, 1001, order.Number)
	assert.Equal(t, burgerIDs, sub.gotIDs)

	out := l.Outcome()
	assert.Equal(t, StateFulfilled, out.State)
	require.NotNil(t, out.Order)
	assert.Equal(t, 1001, out.Order.Number)
	assert.Empty(t, out.Error)
	assert.False(t, out.CompletedAt.IsZero())
}

func TestSubmitFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("kitchen closed")}
	l := NewLifecycle(sub, &fakeFinder{})

	_, err := l.Submit(context.Background(), "token", burgerIDs)
	require.Error(t, err)

	out := l.Outcome()
	assert.Equal(t, StateFailed, out.State)
	assert.Nil(t, out.Order)
	assert.Equal(t, "kitchen closed", out.Error)

	// A new submission supersedes the failure
	sub.err = nil
	_, err = l.Submit(context.Background(), "token", burgerIDs)
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, l.Outcome().State)
	assert.Empty(t, l.Outcome().Error)
}

func TestSubmitRejectsEmptyOrder(t *testing.T) {
	sub := &fakeSubmitter{}
	l := NewLifecycle(sub, &fakeFinder{})

	_, err := l.Submit(context.Background(), "token", nil)
	assert.ErrorIs(t, err, ErrNoIngredients)
	assert.Equal(t, StateIdle, l.Outcome().State)
	assert.Equal(t, int32(0), sub.calls.Load())
}

func TestSubmitAtMostOneInFlight(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{})}
	l := NewLifecycle(sub, &fakeFinder{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := l.Submit(context.Background(), "token", burgerIDs)
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		return l.Outcome().State == StateSubmitting
	}, time.Second, time.Millisecond)

	_, err := l.Submit(context.Background(), "token", burgerIDs)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.False(t, l.Clear(), "clear must not interrupt a submission")

	close(sub.release)
	wg.Wait()

	assert.Equal(t, int32(1), sub.calls.Load())
	assert.Equal(t, StateFulfilled, l.Outcome().State)
}

func TestSubmitSurvivesCallerCancellation(t *testing.T) {
	sub := &fakeSubmitter{}
	l := NewLifecycle(sub, &fakeFinder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Submit(ctx, "token", burgerIDs)
	require.NoError(t, err)
	assert.NoError(t, sub.gotCtx.Err())
}

func TestClear(t *testing.T) {
	l := NewLifecycle(&fakeSubmitter{}, &fakeFinder{})
	_, err := l.Submit(context.Background(), "token", burgerIDs)
	require.NoError(t, err)

	assert.True(t, l.Clear())
	out := l.Outcome()
	assert.Equal(t, StateIdle, out.State)
	assert.Nil(t, out.Order)
	assert.True(t, out.SubmittedAt.IsZero())
}

func TestFetchByNumber(t *testing.T) {
	finder := &fakeFinder{orders: map[int]models.Order{
		42: {Number: 42, Status: models.OrderDone},
	}}
	l := NewLifecycle(&fakeSubmitter{}, finder)

	order, err := l.FetchByNumber(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDone, order.Status)
	assert.Equal(t, StateIdle, l.Outcome().State)

	_, err = l.FetchByNumber(context.Background(), 7)
	assert.True(t, IsNotFound(err))

	_, err = l.FetchByNumber(context.Background(), 0)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 2, finder.calls)

	finder.err = errors.New("gateway timeout")
	_, err = l.FetchByNumber(context.Background(), 42)
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}
