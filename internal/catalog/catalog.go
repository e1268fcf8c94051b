// Package catalog holds the ingredient list fetched once per session.
//
// The catalog is loaded in bulk from a Source and is immutable afterwards:
// records are never mutated and the insertion order of the fetch is kept
// for category-grouped display. A failed load leaves the catalog in the
// error state until Reload is called explicitly.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "catalog")

var (
	ErrNotFound     = errors.New("ingredient not found")
	ErrLoadInFlight = errors.New("catalog load already in flight")
	ErrInvalidData  = errors.New("invalid ingredient data")
)

// Status is the loading state of the catalog
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Source fetches the full ingredient list
type Source interface {
	Ingredients(ctx context.Context) ([]models.Ingredient, error)
}

// State is a read-only view of the catalog's loading state
type State struct {
	Status   Status    `json:"status"`
	Error    string    `json:"error,omitempty"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
}

// Catalog is an identity-keyed, insertion-ordered ingredient collection
type Catalog struct {
	source   Source
	validate *validator.Validate

	mu       sync.RWMutex
	status   Status
	items    []models.Ingredient
	byID     map[string]int
	err      string
	lastErr  error
	loadedAt time.Time
}

// New creates an idle catalog backed by source
func New(source Source) *Catalog {
	return &Catalog{
		source:   source,
		validate: validator.New(),
		status:   StatusIdle,
		byID:     make(map[string]int),
	}
}

// Load fetches the ingredient list unless the catalog is already ready.
// A catalog in the error state stays there; use Reload to retry.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.RLock()
	status := c.status
	c.mu.RUnlock()

	switch status {
	case StatusReady:
		return nil
	case StatusError:
		c.mu.RLock()
		err := c.lastErr
		c.mu.RUnlock()
		return fmt.Errorf("catalog failed to load: %w", err)
	}
	return c.Reload(ctx)
}

// Reload restarts the load at the loading state regardless of the current
// state. The previous items stay visible until the new fetch succeeds.
func (c *Catalog) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusLoading {
		c.mu.Unlock()
		return ErrLoadInFlight
	}
	c.status = StatusLoading
	c.err = ""
	c.mu.Unlock()

	log.Info("Loading ingredient catalog")
	items, err := c.source.Ingredients(ctx)
	if err == nil {
		err = c.check(items)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = StatusError
		c.err = err.Error()
		c.lastErr = err
		log.WithError(err).Error("Ingredient catalog load failed")
		return err
	}

	c.items = make([]models.Ingredient, len(items))
	copy(c.items, items)
	c.byID = make(map[string]int, len(items))
	for i, item := range c.items {
		c.byID[item.ID] = i
	}
	c.status = StatusReady
	c.loadedAt = time.Now()
	log.WithField("count", len(items)).Info("Ingredient catalog ready")
	return nil
}

// check validates every record and rejects duplicate identities
func (c *Catalog) check(items []models.Ingredient) error {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if err := c.validate.Struct(item); err != nil {
			return fmt.Errorf("%w: record %d (%q): %v", ErrInvalidData, i, item.ID, err)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidData, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// State returns the current loading state
func (c *Catalog) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Status:   c.status,
		Error:    c.err,
		Count:    len(c.items),
		LoadedAt: c.loadedAt,
	}
}

// All returns a copy of every ingredient in fetch order
func (c *Catalog) All() []models.Ingredient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Ingredient, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the ingredient with the given catalog id
func (c *Catalog) Get(id string) (models.Ingredient, error) {
	item, ok := c.Lookup(id)
	if !ok {
		return models.Ingredient{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}

// Lookup is Get without the error value
func (c *Catalog) Lookup(id string) (models.Ingredient, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return models.Ingredient{}, false
	}
	return c.items[i], true
}

// ByCategory returns the ingredients of one category in fetch order
func (c *Catalog) ByCategory(category models.Category) []models.Ingredient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Ingredient
	for _, item := range c.items {
		if item.Type == category {
			out = append(out, item)
		}
	}
	return out
}
