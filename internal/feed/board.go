package feed

import (
	"fmt"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
)

// MaxBoardCandidates caps how many numbers per column are considered
// before a policy picks what to show.
const MaxBoardCandidates = 20

// Board is the "ready / in work" summary shown next to a feed
type Board struct {
	Ready      []int `json:"ready"`
	InWork     []int `json:"inWork"`
	Total      int   `json:"total"`
	TotalToday int   `json:"totalToday"`
}

// PartitionPolicy decides which candidate numbers are shown in each column
type PartitionPolicy func(ready, inWork []int, limit int) ([]int, []int)

// StrictPartition shows each column as is, capped at limit
func StrictPartition(ready, inWork []int, limit int) ([]int, []int) {
	return head(ready, limit), head(inWork, limit)
}

// SplitWhenNoPending fills an empty in-work column with the first half of
// the ready numbers and shows the second half as ready.
func SplitWhenNoPending(ready, inWork []int, limit int) ([]int, []int) {
	if len(inWork) > 0 || len(ready) == 0 {
		return StrictPartition(ready, inWork, limit)
	}
	half := (len(ready) + 1) / 2
	return head(ready[half:], limit), head(ready[:half], limit)
}

// PolicyByName maps a configuration value to a policy
func PolicyByName(name string) (PartitionPolicy, error) {
	switch name {
	case "", "strict":
		return StrictPartition, nil
	case "split":
		return SplitWhenNoPending, nil
	default:
		return nil, fmt.Errorf("unknown feed board policy %q (supported: strict, split)", name)
	}
}

// BuildBoard partitions a snapshot into done and in-work order numbers.
// Created and pending orders both count as in work. The totals are copied
// as reported and are not derived from the visible orders.
func BuildBoard(snap models.FeedSnapshot, policy PartitionPolicy, limit int) Board {
	if policy == nil {
		policy = StrictPartition
	}
	var ready, inWork []int
	for _, order := range snap.Orders {
		switch order.Status {
		case models.OrderDone:
			if len(ready) < MaxBoardCandidates {
				ready = append(ready, order.Number)
			}
		case models.OrderCreated, models.OrderPending:
			if len(inWork) < MaxBoardCandidates {
				inWork = append(inWork, order.Number)
			}
		}
	}

	r, w := policy(ready, inWork, limit)
	return Board{
		Ready:      nonNil(r),
		InWork:     nonNil(w),
		Total:      snap.Total,
		TotalToday: snap.TotalToday,
	}
}

func head(numbers []int, limit int) []int {
	if limit >= 0 && len(numbers) > limit {
		return numbers[:limit]
	}
	return numbers
}

func nonNil(numbers []int) []int {
	if numbers == nil {
		return []int{}
	}
	return numbers
}
