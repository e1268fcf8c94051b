package orders

import (
	"context"
	"sync"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
)

// HistoryStatus is the fetch state of the own-orders list
type HistoryStatus string

const (
	HistoryIdle    HistoryStatus = "idle"
	HistoryLoading HistoryStatus = "loading"
	HistoryReady   HistoryStatus = "ready"
	HistoryError   HistoryStatus = "error"
)

// HistoryState is a read-only view of History
type HistoryState struct {
	Status HistoryStatus  `json:"status"`
	Orders []models.Order `json:"orders"`
	Error  string         `json:"error,omitempty"`
}

// History holds the authenticated user's own orders
type History struct {
	lister Lister

	mu         sync.Mutex
	generation uint64
	status     HistoryStatus
	orders     []models.Order
	err        string
}

func NewHistory(lister Lister) *History {
	return &History{lister: lister, status: HistoryIdle, orders: []models.Order{}}
}

// Refresh refetches the list. A failure keeps the previous orders. A fetch
// overtaken by a later Refresh or by Clear is discarded.
func (h *History) Refresh(ctx context.Context, token string) error {
	h.mu.Lock()
	h.generation++
	gen := h.generation
	h.status = HistoryLoading
	h.err = ""
	h.mu.Unlock()

	orders, err := h.lister.OwnOrders(ctx, token)

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.generation {
		return nil
	}
	if err != nil {
		h.status = HistoryError
		h.err = err.Error()
		return err
	}
	h.status = HistoryReady
	h.orders = orders
	if h.orders == nil {
		h.orders = []models.Order{}
	}
	return nil
}

func (h *History) State() HistoryState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.Order, len(h.orders))
	copy(out, h.orders)
	return HistoryState{Status: h.status, Orders: out, Error: h.err}
}

// Clear drops the list, e.g. on logout
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.generation++
	h.status = HistoryIdle
	h.orders = []models.Order{}
	h.err = ""
}
