package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	orders []models.Order
	err    error
	token  string
}

func (f *fakeLister) OwnOrders(ctx context.Context, token string) ([]models.Order, error) {
	f.token = token
	return f.orders, f.err
}

func TestHistory(t *testing.T) {
	lister := &fakeLister{orders: []models.Order{{Number: 1}, {Number: 2}}}
	h := NewHistory(lister)
	assert.Equal(t, HistoryIdle, h.State().Status)

	require.NoError(t, h.Refresh(context.Background(), "access"))
	assert.Equal(t, "access", lister.token)
	state := h.State()
	assert.Equal(t, HistoryReady, state.Status)
	assert.Len(t, state.Orders, 2)

	lister.err = errors.New("token expired")
	require.Error(t, h.Refresh(context.Background(), "access"))
	state = h.State()
	assert.Equal(t, HistoryError, state.Status)
	assert.Equal(t, "token expired", state.Error)
	assert.Len(t, state.Orders, 2, "previous orders stay visible")

	h.Clear()
	assert.Equal(t, HistoryIdle, h.State().Status)
	assert.Empty(t, h.State().Orders)
}

type gatedLister struct {
	started chan string
	release map[string]chan []models.Order
}

func newGatedLister(tokens ...string) *gatedLister {
	g := &gatedLister{started: make(chan string, len(tokens)), release: make(map[string]chan []models.Order)}
	for _, token := range tokens {
		g.release[token] = make(chan []models.Order, 1)
	}
	return g
}

func (g *gatedLister) OwnOrders(ctx context.Context, token string) ([]models.Order, error) {
	g.started <- token
	return <-g.release[token], nil
}

func TestHistoryDropsOvertakenFetches(t *testing.T) {
	t.Run("clear discards a fetch in flight", func(t *testing.T) {
		lister := newGatedLister("alice")
		h := NewHistory(lister)

		done := make(chan error, 1)
		go func() { done <- h.Refresh(context.Background(), "alice") }()
		<-lister.started

		h.Clear()
		lister.release["alice"] <- []models.Order{{Number: 1}}
		require.NoError(t, <-done)

		state := h.State()
		assert.Equal(t, HistoryIdle, state.Status)
		assert.Empty(t, state.Orders)
	})

	t.Run("a later refresh wins regardless of completion order", func(t *testing.T) {
		lister := newGatedLister("old", "new")
		h := NewHistory(lister)

		oldDone := make(chan error, 1)
		go func() { oldDone <- h.Refresh(context.Background(), "old") }()
		require.Equal(t, "old", <-lister.started)

		newDone := make(chan error, 1)
		go func() { newDone <- h.Refresh(context.Background(), "new") }()
		require.Equal(t, "new", <-lister.started)

		lister.release["new"] <- []models.Order{{Number: 2}}
		require.NoError(t, <-newDone)
		lister.release["old"] <- []models.Order{{Number: 1}}
		require.NoError(t, <-oldDone)

		state := h.State()
		assert.Equal(t, HistoryReady, state.Status)
		require.Len(t, state.Orders, 1)
		assert.Equal(t, 2, state.Orders[0].Number)
	})
}
