package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/orders"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.WithField("component", "kitchen")

var (
	// ErrInvalidOrder rejects a composition the kitchen cannot cook
	ErrInvalidOrder = errors.New("invalid order composition")
	// ErrInvalidTransition rejects a status change out of sequence
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrUnauthenticated rejects a token that identifies nobody
	ErrUnauthenticated = errors.New("token does not identify a user")
)

// OwnerResolver maps a bearer token to the id of the user who owns orders
type OwnerResolver func(token string) (string, error)

// Notifier is told whenever orders change
type Notifier interface {
	Notify()
}

// KitchenService is the local backend: it persists the catalog and the
// orders placed against it and builds the live feed snapshots.
type KitchenService interface {
	// Ingredients returns the catalog in display order
	Ingredients(ctx context.Context) ([]models.Ingredient, error)
	// Submit validates and stores a new order owned by the token's user
	Submit(ctx context.Context, token string, ingredientIDs []string) (models.Order, error)
	// OrderByNumber retrieves an order, orders.ErrNotFound when unknown
	OrderByNumber(ctx context.Context, number int) (models.Order, error)
	// OwnOrders lists the token user's orders, newest first
	OwnOrders(ctx context.Context, token string) ([]models.Order, error)
	// AdvanceStatus moves an order one step along created -> pending -> done
	AdvanceStatus(ctx context.Context, number int, status models.OrderStatus) (models.Order, error)
	// Snapshot builds the feed for owner, or the public feed when owner is empty
	Snapshot(ctx context.Context, owner string) (models.FeedSnapshot, error)
}

// kitchenService is the implementation of the KitchenService interface
type kitchenService struct {
	db        *gorm.DB
	owner     OwnerResolver
	notifier  Notifier
	maxOrders int
	now       func() time.Time

	// numbers are assigned as max+1 inside the insert transaction; the
	// mutex keeps two inserts from reading the same max
	mu sync.Mutex
}

// NewKitchenService creates a new instance of KitchenService. notifier may
// be nil.
func NewKitchenService(db *gorm.DB, owner OwnerResolver, notifier Notifier, maxOrders int) KitchenService {
	if maxOrders <= 0 {
		maxOrders = 50
	}
	return &kitchenService{
		db:        db,
		owner:     owner,
		notifier:  notifier,
		maxOrders: maxOrders,
		now:       time.Now,
	}
}

func (s *kitchenService) Ingredients(ctx context.Context) ([]models.Ingredient, error) {
	var items []models.Ingredient
	if err := s.db.WithContext(ctx).Order("position").Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	return items, nil
}

func (s *kitchenService) Submit(ctx context.Context, token string, ingredientIDs []string) (models.Order, error) {
	owner, err := s.resolve(token)
	if err != nil {
		return models.Order{}, err
	}

	byID, err := s.ingredientsByID(ctx, ingredientIDs)
	if err != nil {
		return models.Order{}, err
	}
	if err := checkComposition(ingredientIDs, byID); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		ID:          uuid.NewString(),
		Name:        burgerName(ingredientIDs, byID),
		Status:      models.OrderCreated,
		Ingredients: append([]string(nil), ingredientIDs...),
		Owner:       owner,
	}

	s.mu.Lock()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&models.Order{}).Select("COALESCE(MAX(number), 0)").Scan(&last).Error; err != nil {
			return err
		}
		order.Number = last + 1
		return tx.Create(&order).Error
	})
	s.mu.Unlock()
	if err != nil {
		return models.Order{}, fmt.Errorf("storing order: %w", err)
	}

	log.WithFields(logrus.Fields{
		"number": order.Number,
		"owner":  owner,
	}).Info("Order created")
	s.notify()
	return order, nil
}

func (s *kitchenService) OrderByNumber(ctx context.Context, number int) (models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("number = ?", number).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, fmt.Errorf("%w: %d", orders.ErrNotFound, number)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("finding order %d: %w", number, err)
	}
	return order, nil
}

func (s *kitchenService) OwnOrders(ctx context.Context, token string) ([]models.Order, error) {
	owner, err := s.resolve(token)
	if err != nil {
		return nil, err
	}
	var list []models.Order
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Order("number desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return list, nil
}

func (s *kitchenService) AdvanceStatus(ctx context.Context, number int, status models.OrderStatus) (models.Order, error) {
	order, err := s.OrderByNumber(ctx, number)
	if err != nil {
		return models.Order{}, err
	}
	if !order.Status.CanTransition(status) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	order.Status = status
	if err := s.db.WithContext(ctx).Model(&order).Update("status", status).Error; err != nil {
		return models.Order{}, fmt.Errorf("updating order %d: %w", number, err)
	}

	log.WithFields(logrus.Fields{
		"number": number,
		"status": status,
	}).Info("Order status changed")
	s.notify()
	return order, nil
}

func (s *kitchenService) Snapshot(ctx context.Context, owner string) (models.FeedSnapshot, error) {
	db := s.db.WithContext(ctx)

	query := db.Model(&models.Order{})
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}
	var list []models.Order
	if err := query.Order("number desc").Limit(s.maxOrders).Find(&list).Error; err != nil {
		return models.FeedSnapshot{}, fmt.Errorf("loading feed: %w", err)
	}

	var total, today int64
	if err := db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return models.FeedSnapshot{}, fmt.Errorf("counting orders: %w", err)
	}
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.Order{}).Where("created_at >= ?", midnight).Count(&today).Error; err != nil {
		return models.FeedSnapshot{}, fmt.Errorf("counting today's orders: %w", err)
	}

	return models.FeedSnapshot{
		Orders:     list,
		Total:      int(total),
		TotalToday: int(today),
	}, nil
}

func (s *kitchenService) resolve(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	owner, err := s.owner(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return owner, nil
}

func (s *kitchenService) ingredientsByID(ctx context.Context, ids []string) (map[string]models.Ingredient, error) {
	var items []models.Ingredient
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("loading ingredients: %w", err)
	}
	byID := make(map[string]models.Ingredient, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

func (s *kitchenService) notify() {
	if s.notifier != nil {
		s.notifier.Notify()
	}
}

// checkComposition requires known ids, one bun at both ends and only
// toppings in between.
func checkComposition(ids []string, byID map[string]models.Ingredient) error {
	if len(ids) < 2 {
		return fmt.Errorf("%w: a burger needs a bun at both ends", ErrInvalidOrder)
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return fmt.Errorf("%w: unknown ingredient %q", ErrInvalidOrder, id)
		}
	}

	first, last := byID[ids[0]], byID[ids[len(ids)-1]]
	if first.Type != models.CategoryBun || first.ID != last.ID {
		return fmt.Errorf("%w: a burger needs the same bun at both ends", ErrInvalidOrder)
	}
	for _, id := range ids[1 : len(ids)-1] {
		if !byID[id].Type.IsTopping() {
			return fmt.Errorf("%w: %q is not a topping", ErrInvalidOrder, id)
		}
	}
	return nil
}

// burgerName builds a display name from the bun and the distinct toppings
func burgerName(ids []string, byID map[string]models.Ingredient) string {
	seen := make(map[string]bool)
	var words []string
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if fields := strings.Fields(byID[id].Name); len(fields) > 0 {
			words = append(words, strings.ToLower(fields[0]))
		}
	}
	if len(words) == 0 {
		return "Burger"
	}
	sort.Strings(words[1:])
	first, size := utf8.DecodeRuneInString(words[0])
	words[0] = string(unicode.ToUpper(first)) + words[0][size:]
	return strings.Join(append(words, "burger"), " ")
}
