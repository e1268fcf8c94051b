// Package builder holds the burger constructor: one bun slot, an ordered
// stack of toppings and the derived total price.
package builder

import (
	"errors"
	"slices"
	"sync"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/google/uuid"
)

// ErrOutOfRange is returned by Move when the source index does not point
// at a topping. The stack is left untouched.
var ErrOutOfRange = errors.New("topping index out of range")

// Option configures a Constructor.
type Option func(*Constructor)

// WithIDGenerator replaces the placement id generator (uuid by default).
func WithIDGenerator(gen func() string) Option {
	return func(c *Constructor) {
		c.newID = gen
	}
}

// Constructor is the builder state container. Every exported method is a
// single atomic transition; the total price is recomputed from scratch
// after each one so it can never drift from the contents.
type Constructor struct {
	mu         sync.RWMutex
	bun        *models.ConstructorEntry
	toppings   []models.ConstructorEntry
	totalPrice int64
	newID      func() string
}

// Snapshot is a read-only copy of the constructor
type Snapshot struct {
	Bun         *models.ConstructorEntry  `json:"bun"`
	Ingredients []models.ConstructorEntry `json:"ingredients"`
	TotalPrice  int64                     `json:"totalPrice"`
	CanSubmit   bool                      `json:"canSubmit"`
}

// New creates an empty constructor.
func New(opts ...Option) *Constructor {
	c := &Constructor{
		toppings: []models.ConstructorEntry{},
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add places an ingredient. A bun replaces the current bun; anything else
// is appended to the end of the topping stack. Add always succeeds.
func (c *Constructor) Add(ingredient models.Ingredient) models.ConstructorEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := models.ConstructorEntry{PlacementID: c.newID(), Ingredient: ingredient}
	if ingredient.Type == models.CategoryBun {
		c.bun = &entry
	} else {
		c.toppings = append(c.toppings, entry)
	}
	c.recompute()
	return entry
}

// Remove drops the topping with the given placement id. Unknown ids are a
// no-op; the return value reports whether anything was removed.
func (c *Constructor) Remove(placementID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(placementID)
	if i < 0 {
		return false
	}
	c.toppings = slices.Delete(slices.Clone(c.toppings), i, i+1)
	c.recompute()
	return true
}

// Move relocates the topping at from to position to, shifting the entries
// in between. A from outside the stack returns ErrOutOfRange and changes
// nothing; a to outside the stack is clamped to the nearest end.
func (c *Constructor) Move(from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.move(from, to)
}

// MoveUp swaps a topping with the one above it. No-op at the top.
func (c *Constructor) MoveUp(placementID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(placementID)
	if i <= 0 {
		return false
	}
	return c.move(i, i-1) == nil
}

// MoveDown swaps a topping with the one below it. No-op at the bottom.
func (c *Constructor) MoveDown(placementID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(placementID)
	if i < 0 || i >= len(c.toppings)-1 {
		return false
	}
	return c.move(i, i+1) == nil
}

func (c *Constructor) move(from, to int) error {
	n := len(c.toppings)
	if from < 0 || from >= n {
		return ErrOutOfRange
	}
	to = max(0, min(to, n-1))
	if from == to {
		return nil
	}

	entry := c.toppings[from]
	out := slices.Delete(slices.Clone(c.toppings), from, from+1)
	c.toppings = slices.Insert(out, to, entry)
	c.recompute()
	return nil
}

// Clear empties the bun slot and the topping stack.
func (c *Constructor) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bun = nil
	c.toppings = []models.ConstructorEntry{}
	c.totalPrice = 0
}

// CanSubmit is true iff a bun and at least one topping are placed.
func (c *Constructor) CanSubmit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canSubmit()
}

func (c *Constructor) canSubmit() bool {
	return c.bun != nil && len(c.toppings) > 0
}

// TotalPrice returns the derived price of the current contents
func (c *Constructor) TotalPrice() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalPrice
}

// Snapshot returns a copy of the current state
func (c *Constructor) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Ingredients: slices.Clone(c.toppings),
		TotalPrice:  c.totalPrice,
		CanSubmit:   c.canSubmit(),
	}
	if c.bun != nil {
		bun := *c.bun
		snap.Bun = &bun
	}
	return snap
}

// IngredientIDs returns the catalog ids in submission order: the bun, the
// toppings top to bottom, then the bun again. Without a bun only the
// toppings are listed.
func (c *Constructor) IngredientIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.toppings)+2)
	if c.bun != nil {
		ids = append(ids, c.bun.ID)
	}
	for _, entry := range c.toppings {
		ids = append(ids, entry.ID)
	}
	if c.bun != nil {
		ids = append(ids, c.bun.ID)
	}
	return ids
}

// Counts returns how many times each catalog ingredient is used. The bun
// counts twice.
func (c *Constructor) Counts() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int, len(c.toppings)+1)
	if c.bun != nil {
		counts[c.bun.ID] = 2
	}
	for _, entry := range c.toppings {
		counts[entry.ID]++
	}
	return counts
}

func (c *Constructor) indexOf(placementID string) int {
	return slices.IndexFunc(c.toppings, func(e models.ConstructorEntry) bool {
		return e.PlacementID == placementID
	})
}

func (c *Constructor) recompute() {
	c.totalPrice = Price(c.bun, c.toppings)
}

// Price computes bun price twice plus every topping's price.
func Price(bun *models.ConstructorEntry, toppings []models.ConstructorEntry) int64 {
	var total int64
	if bun != nil {
		total = bun.Price * 2
	}
	for _, entry := range toppings {
		total += entry.Price
	}
	return total
}
