package feed

import (
	"testing"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordersWithStatus(status models.OrderStatus, numbers ...int) []models.Order {
	var out []models.Order
	for _, n := range numbers {
		out = append(out, models.Order{Number: n, Status: status})
	}
	return out
}

func TestBuildBoardStrict(t *testing.T) {
	snap := models.FeedSnapshot{Total: 30000, TotalToday: 120}
	snap.Orders = append(snap.Orders, ordersWithStatus(models.OrderDone, 10, 9, 8, 7, 6, 5)...)
	snap.Orders = append(snap.Orders, ordersWithStatus(models.OrderPending, 11)...)
	snap.Orders = append(snap.Orders, ordersWithStatus(models.OrderCreated, 12)...)

	board := BuildBoard(snap, StrictPartition, 5)

	assert.Equal(t, []int{10, 9, 8, 7, 6}, board.Ready)
	assert.Equal(t, []int{11, 12}, board.InWork)
	assert.Equal(t, 30000, board.Total, "totals are informational, not derived from the orders")
	assert.Equal(t, 120, board.TotalToday)
}

func TestBuildBoardEmpty(t *testing.T) {
	board := BuildBoard(models.FeedSnapshot{}, nil, 5)
	assert.NotNil(t, board.Ready)
	assert.NotNil(t, board.InWork)
	assert.Empty(t, board.Ready)
}

func TestBuildBoardCapsCandidates(t *testing.T) {
	var numbers []int
	for i := 0; i < 50; i++ {
		numbers = append(numbers, i)
	}
	snap := models.FeedSnapshot{Orders: ordersWithStatus(models.OrderDone, numbers...)}

	board := BuildBoard(snap, StrictPartition, 100)
	assert.Len(t, board.Ready, MaxBoardCandidates)
}

func TestSplitWhenNoPending(t *testing.T) {
	testCases := []struct {
		name           string
		ready, inWork  []int
		expectedReady  []int
		expectedInWork []int
	}{
		{
			name:           "splits odd count with the larger half in work",
			ready:          []int{1, 2, 3, 4, 5},
			expectedReady:  []int{4, 5},
			expectedInWork: []int{1, 2, 3},
		},
		{
			name:           "caps both halves",
			ready:          []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14},
			expectedReady:  []int{8, 9, 10, 11, 12},
			expectedInWork: []int{1, 2, 3, 4, 5},
		},
		{
			name:           "behaves strictly when something is in work",
			ready:          []int{1, 2},
			inWork:         []int{3},
			expectedReady:  []int{1, 2},
			expectedInWork: []int{3},
		},
		{
			name:           "nothing at all",
			expectedReady:  nil,
			expectedInWork: nil,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			r, w := SplitWhenNoPending(tt.ready, tt.inWork, 5)
			assert.Equal(t, tt.expectedReady, r)
			assert.Equal(t, tt.expectedInWork, w)
		})
	}
}

func TestPolicyByName(t *testing.T) {
	for _, name := range []string{"", "strict", "split"} {
		p, err := PolicyByName(name)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
	_, err := PolicyByName("half")
	assert.Error(t, err)
}
