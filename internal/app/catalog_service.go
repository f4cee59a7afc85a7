package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pk210607/foodie-hub/internal/clock"
	"github.com/pk210607/foodie-hub/internal/domain"
)

// CatalogRepository is the storage contract for managing the menu itself.
type CatalogRepository interface {
	CreateItem(ctx context.Context, item domain.MenuItem) error
	ListItems(ctx context.Context) ([]domain.MenuItem, error)
	AddItemStock(ctx context.Context, itemID string, amount int, now time.Time) (domain.MenuItem, error)
}

// CatalogService manages menu items and their stock replenishment. Taking
// stock out of the pool is the cart service's job; the catalog only adds.
type CatalogService struct {
	repo     CatalogRepository
	clock    clock.Clock
	logger   *zap.Logger
	notifier StockNotifier
}

// NewCatalogService wires a catalog service. notifier may be nil.
func NewCatalogService(repo CatalogRepository, clk clock.Clock, logger *zap.Logger, notifier StockNotifier) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, clock: clk, logger: logger, notifier: notifier}
}

// CreateItemInput describes a new menu item. InitialStock may be zero.
type CreateItemInput struct {
	Name         string
	InitialStock int
}

// CreateItem registers a new menu item with its opening stock.
func (s *CatalogService) CreateItem(ctx context.Context, in CreateItemInput) (domain.MenuItem, error) {
	if in.Name == "" {
		return domain.MenuItem{}, domain.ErrItemNameRequired
	}
	if in.InitialStock < 0 {
		return domain.MenuItem{}, domain.ErrInvalidStock
	}

	item := domain.MenuItem{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Available: in.InitialStock,
		UpdatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.MenuItem{}, err
	}

	s.logger.Info("menu item created",
		zap.String("itemId", item.ID),
		zap.String("name", item.Name),
		zap.Int("available", item.Available),
	)
	s.publishStockUpdate(ctx, item)
	return item, nil
}

// Restock adds amount units to an item's available pool and returns the
// updated snapshot. Amount must be positive.
func (s *CatalogService) Restock(ctx context.Context, itemID string, amount int) (domain.MenuItem, error) {
	if amount <= 0 {
		return domain.MenuItem{}, domain.ErrInvalidStock
	}

	item, err := s.repo.AddItemStock(ctx, itemID, amount, s.clock.Now())
	if err != nil {
		return domain.MenuItem{}, err
	}

	s.logger.Info("stock replenished",
		zap.String("itemId", item.ID),
		zap.Int("amount", amount),
		zap.Int("available", item.Available),
	)
	s.publishStockUpdate(ctx, item)
	return item, nil
}

// ListItems returns the whole menu, oldest first.
func (s *CatalogService) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.ListItems(ctx)
}

func (s *CatalogService) publishStockUpdate(ctx context.Context, item domain.MenuItem) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishStockUpdate(ctx, item); err != nil {
		s.logger.Warn("stock update not published",
			zap.String("itemId", item.ID),
			zap.Error(err),
		)
	}
}
