package builder

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testBun   = models.Ingredient{ID: "bun-1", Name: "Crater bun N-200i", Type: models.CategoryBun, Price: 1255}
	testMain  = models.Ingredient{ID: "main-1", Name: "Martian Magnolia biopatty", Type: models.CategoryMain, Price: 424}
	testSauce = models.Ingredient{ID: "sauce-1", Name: "Spicy-X sauce", Type: models.CategorySauce, Price: 90}
	cheapBun  = models.Ingredient{ID: "bun-2", Name: "Fluorescent bun R2-D3", Type: models.CategoryBun, Price: 1000}
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("placement-%d", n)
	})
}

func placements(c *Constructor) []string {
	var ids []string
	for _, e := range c.Snapshot().Ingredients {
		ids = append(ids, e.PlacementID)
	}
	return ids
}

// expectedPrice recomputes the total independently of the constructor
func expectedPrice(s Snapshot) int64 {
	var total int64
	if s.Bun != nil {
		total += s.Bun.Price * 2
	}
	for _, e := range s.Ingredients {
		total += e.Price
	}
	return total
}

func TestInitialState(t *testing.T) {
	c := New()
	snap := c.Snapshot()

	assert.Nil(t, snap.Bun)
	assert.Empty(t, snap.Ingredients)
	assert.Equal(t, int64(0), snap.TotalPrice)
	assert.False(t, snap.CanSubmit)
}

func TestPriceScenario(t *testing.T) {
	c := New()

	c.Add(testBun)
	assert.Equal(t, int64(2510), c.TotalPrice())

	c.Add(testMain)
	assert.Equal(t, int64(2934), c.TotalPrice())

	c.Add(testSauce)
	assert.Equal(t, int64(3024), c.TotalPrice())

	c.Add(cheapBun)
	assert.Equal(t, int64(1000*2+424+90), c.TotalPrice())
}

func TestAddBunReplacesExistingBun(t *testing.T) {
	c := New(sequentialIDs())

	for i := 0; i < 5; i++ {
		c.Add(testBun)
	}
	entry := c.Add(cheapBun)

	snap := c.Snapshot()
	require.NotNil(t, snap.Bun)
	assert.Equal(t, "bun-2", snap.Bun.ID)
	assert.Equal(t, entry.PlacementID, snap.Bun.PlacementID)
	assert.Equal(t, "placement-6", snap.Bun.PlacementID)
	assert.Empty(t, snap.Ingredients)
	assert.Equal(t, int64(2000), snap.TotalPrice)
}

func TestAddToppingsKeepsInsertionOrder(t *testing.T) {
	c := New(sequentialIDs())

	c.Add(testMain)
	c.Add(testSauce)
	c.Add(testMain)

	assert.Equal(t, []string{"placement-1", "placement-2", "placement-3"}, placements(c))
	snap := c.Snapshot()
	assert.Equal(t, "main-1", snap.Ingredients[0].ID)
	assert.Equal(t, "sauce-1", snap.Ingredients[1].ID)
	assert.Equal(t, "main-1", snap.Ingredients[2].ID)
}

func TestRemove(t *testing.T) {
	c := New(sequentialIDs())
	c.Add(testBun)
	c.Add(testMain)
	c.Add(testSauce)

	t.Run("unknown placement is a no-op", func(t *testing.T) {
		before := c.Snapshot()
		assert.False(t, c.Remove("placement-404"))
		assert.Equal(t, before, c.Snapshot())
	})

	t.Run("removes by placement id", func(t *testing.T) {
		assert.True(t, c.Remove("placement-2"))
		assert.Equal(t, []string{"placement-3"}, placements(c))
		assert.Equal(t, int64(2510+90), c.TotalPrice())
	})

	t.Run("bun cannot be removed as a topping", func(t *testing.T) {
		assert.False(t, c.Remove("placement-1"))
		assert.NotNil(t, c.Snapshot().Bun)
	})
}

func TestMove(t *testing.T) {
	testCases := []struct {
		name     string
		from, to int
		err      error
		expected []string
	}{
		{name: "same index", from: 1, to: 1, expected: []string{"placement-1", "placement-2", "placement-3", "placement-4"}},
		{name: "forward", from: 0, to: 2, expected: []string{"placement-2", "placement-3", "placement-1", "placement-4"}},
		{name: "backward", from: 3, to: 0, expected: []string{"placement-4", "placement-1", "placement-2", "placement-3"}},
		{name: "to past the end is clamped", from: 0, to: 99, expected: []string{"placement-2", "placement-3", "placement-4", "placement-1"}},
		{name: "negative to is clamped", from: 2, to: -3, expected: []string{"placement-3", "placement-1", "placement-2", "placement-4"}},
		{name: "from past the end", from: 4, to: 0, err: ErrOutOfRange, expected: []string{"placement-1", "placement-2", "placement-3", "placement-4"}},
		{name: "negative from", from: -1, to: 0, err: ErrOutOfRange, expected: []string{"placement-1", "placement-2", "placement-3", "placement-4"}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			c := New(sequentialIDs())
			c.Add(testMain)
			c.Add(testSauce)
			c.Add(testMain)
			c.Add(testSauce)
			price := c.TotalPrice()

			err := c.Move(tt.from, tt.to)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, placements(c))
			assert.Equal(t, price, c.TotalPrice())
		})
	}
}

func TestMoveOnEmptyStack(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.Move(0, 0), ErrOutOfRange)
	assert.Empty(t, c.Snapshot().Ingredients)
}

func TestMoveUpAndDown(t *testing.T) {
	c := New(sequentialIDs())
	c.Add(testMain)
	c.Add(testSauce)
	c.Add(testMain)

	assert.False(t, c.MoveUp("placement-1"))
	assert.False(t, c.MoveDown("placement-3"))
	assert.False(t, c.MoveUp("missing"))

	assert.True(t, c.MoveUp("placement-3"))
	assert.Equal(t, []string{"placement-1", "placement-3", "placement-2"}, placements(c))

	assert.True(t, c.MoveDown("placement-1"))
	assert.Equal(t, []string{"placement-3", "placement-1", "placement-2"}, placements(c))
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(testBun)
	c.Add(testMain)

	c.Clear()

	snap := c.Snapshot()
	assert.Nil(t, snap.Bun)
	assert.Empty(t, snap.Ingredients)
	assert.Equal(t, int64(0), snap.TotalPrice)
}

func TestCanSubmit(t *testing.T) {
	testCases := []struct {
		name     string
		add      []models.Ingredient
		expected bool
	}{
		{name: "empty", expected: false},
		{name: "bun only", add: []models.Ingredient{testBun}, expected: false},
		{name: "toppings only", add: []models.Ingredient{testMain, testSauce}, expected: false},
		{name: "bun and topping", add: []models.Ingredient{testBun, testSauce}, expected: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			for _, ing := range tt.add {
				c.Add(ing)
			}
			assert.Equal(t, tt.expected, c.CanSubmit())
			assert.Equal(t, tt.expected, c.Snapshot().CanSubmit)
		})
	}
}

func TestIngredientIDs(t *testing.T) {
	c := New()
	c.Add(testMain)
	assert.Equal(t, []string{"main-1"}, c.IngredientIDs())

	c.Add(testBun)
	c.Add(testSauce)
	assert.Equal(t, []string{"bun-1", "main-1", "sauce-1", "bun-1"}, c.IngredientIDs())
}

func TestCounts(t *testing.T) {
	c := New()
	c.Add(testBun)
	c.Add(testMain)
	c.Add(testMain)
	c.Add(testSauce)

	assert.Equal(t, map[string]int{"bun-1": 2, "main-1": 2, "sauce-1": 1}, c.Counts())
}

func TestSnapshotIsDetached(t *testing.T) {
	c := New()
	c.Add(testBun)
	c.Add(testMain)

	snap := c.Snapshot()
	snap.Ingredients[0].Price = 1
	snap.Bun.Price = 1

	assert.Equal(t, int64(2510+424), c.TotalPrice())
	assert.Equal(t, int64(424), c.Snapshot().Ingredients[0].Price)
}

func TestPriceNeverDrifts(t *testing.T) {
	pool := []models.Ingredient{testBun, testMain, testSauce, cheapBun,
		{ID: "main-2", Type: models.CategoryMain, Price: 3000},
		{ID: "sauce-2", Type: models.CategorySauce, Price: 15},
	}
	rng := rand.New(rand.NewSource(42))
	c := New()

	for step := 0; step < 2000; step++ {
		snap := c.Snapshot()
		switch rng.Intn(4) {
		case 0, 1:
			c.Add(pool[rng.Intn(len(pool))])
		case 2:
			if len(snap.Ingredients) > 0 {
				c.Remove(snap.Ingredients[rng.Intn(len(snap.Ingredients))].PlacementID)
			} else {
				c.Remove("nothing")
			}
		case 3:
			_ = c.Move(rng.Intn(10)-2, rng.Intn(10)-2)
		}

		after := c.Snapshot()
		require.Equal(t, expectedPrice(after), after.TotalPrice, "step %d", step)
	}
}
