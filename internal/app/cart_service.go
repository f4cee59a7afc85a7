package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pk210607/foodie-hub/internal/clock"
	"github.com/pk210607/foodie-hub/internal/domain"
)

// CartRepository is the storage contract the cart service depends on. Every
// mutating call happens inside WithTx, and the ForUpdate getters must hold
// their row locks until the transaction ends.
type CartRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetItemForUpdate(ctx context.Context, itemID string) (domain.MenuItem, error)
	SetItemStock(ctx context.Context, itemID string, available int, now time.Time) error
	FindLineByOwnerAndItem(ctx context.Context, ownerID, itemID string) (*domain.CartLine, error)
	GetLineForUpdate(ctx context.Context, lineID string) (domain.CartLine, error)
	CreateLine(ctx context.Context, line domain.CartLine) error
	UpdateLineQuantity(ctx context.Context, lineID string, quantity int, now time.Time) error
	DeleteLine(ctx context.Context, lineID string) error
	ListLinesByOwner(ctx context.Context, ownerID string) ([]domain.CartLine, error)
}

// StockNotifier receives the fresh stock snapshot after a commit. Delivery is
// best effort and must never affect the already-committed operation.
type StockNotifier interface {
	PublishStockUpdate(ctx context.Context, item domain.MenuItem) error
}

// CartService coordinates cart lines with the shared stock counters. Units
// only ever move between an item's available pool and the cart lines that
// reference it; no operation creates or destroys units.
type CartService struct {
	repo     CartRepository
	clock    clock.Clock
	logger   *zap.Logger
	notifier StockNotifier
}

// NewCartService wires a cart service. notifier may be nil, in which case
// stock updates are not published anywhere.
func NewCartService(repo CartRepository, clk clock.Clock, logger *zap.Logger, notifier StockNotifier) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{repo: repo, clock: clk, logger: logger, notifier: notifier}
}

// ReserveInput describes a reservation request. Amount must be positive.
type ReserveInput struct {
	OwnerID string
	ItemID  string
	Amount  int
}

// ReleaseResult reports how many units a removed line returned to the pool.
type ReleaseResult struct {
	LineID         string
	ItemID         string
	RestoredAmount int
}

// ResyncResult reports the outcome of setting a line to an absolute quantity.
// When the requested quantity was zero or negative the line is removed
// instead: Released is true and RestoredAmount carries the release outcome.
type ResyncResult struct {
	LineID         string
	ItemID         string
	NewQuantity    int
	Delta          int
	Released       bool
	RestoredAmount int
}

// Reserve moves amount units from the item's available pool into the owner's
// cart line for that item, creating the line when none exists yet. The
// whole move commits or nothing does.
func (s *CartService) Reserve(ctx context.Context, in ReserveInput) (domain.CartLine, error) {
	if in.OwnerID == "" {
		return domain.CartLine{}, domain.ErrOwnerRequired
	}
	if in.Amount <= 0 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	var (
		line domain.CartLine
		item domain.MenuItem
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		item, err = s.adjustStock(txCtx, in.ItemID, -in.Amount, now)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindLineByOwnerAndItem(txCtx, in.OwnerID, in.ItemID)
		if err != nil {
			return err
		}
		if existing != nil {
			line = *existing
			line.Quantity += in.Amount
			line.UpdatedAt = now
			return s.repo.UpdateLineQuantity(txCtx, line.ID, line.Quantity, now)
		}

		line = domain.CartLine{
			ID:        uuid.NewString(),
			OwnerID:   in.OwnerID,
			ItemID:    in.ItemID,
			Quantity:  in.Amount,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.repo.CreateLine(txCtx, line)
	})
	if err != nil {
		return domain.CartLine{}, err
	}

	s.logger.Info("stock reserved",
		zap.String("itemId", in.ItemID),
		zap.String("ownerId", in.OwnerID),
		zap.Int("amount", in.Amount),
		zap.Int("available", item.Available),
	)
	s.publishStockUpdate(ctx, item)
	return line, nil
}

// Release deletes a cart line and returns its whole quantity to the item's
// available pool.
func (s *CartService) Release(ctx context.Context, lineID string) (ReleaseResult, error) {
	now := s.clock.Now()
	var (
		result ReleaseResult
		item   domain.MenuItem
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		line, err := s.repo.GetLineForUpdate(txCtx, lineID)
		if err != nil {
			return err
		}

		item, err = s.adjustStock(txCtx, line.ItemID, line.Quantity, now)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteLine(txCtx, line.ID); err != nil {
			return err
		}

		result = ReleaseResult{LineID: line.ID, ItemID: line.ItemID, RestoredAmount: line.Quantity}
		return nil
	})
	if err != nil {
		return ReleaseResult{}, err
	}

	s.logger.Info("stock released",
		zap.String("lineId", result.LineID),
		zap.String("itemId", result.ItemID),
		zap.Int("restored", result.RestoredAmount),
		zap.Int("available", item.Available),
	)
	s.publishStockUpdate(ctx, item)
	return result, nil
}

// Resync sets a cart line to an absolute quantity and settles the difference
// against the item's pool. A target of zero or less means the line should not
// exist: the whole call is handed to Release and its outcome reported.
func (s *CartService) Resync(ctx context.Context, lineID string, quantity int) (ResyncResult, error) {
	if quantity <= 0 {
		released, err := s.Release(ctx, lineID)
		if err != nil {
			return ResyncResult{}, err
		}
		return ResyncResult{
			LineID:         released.LineID,
			ItemID:         released.ItemID,
			Released:       true,
			RestoredAmount: released.RestoredAmount,
		}, nil
	}

	now := s.clock.Now()
	var (
		result ResyncResult
		item   domain.MenuItem
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		line, err := s.repo.GetLineForUpdate(txCtx, lineID)
		if err != nil {
			return err
		}

		delta := quantity - line.Quantity
		item, err = s.adjustStock(txCtx, line.ItemID, -delta, now)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateLineQuantity(txCtx, line.ID, quantity, now); err != nil {
			return err
		}

		result = ResyncResult{LineID: line.ID, ItemID: line.ItemID, NewQuantity: quantity, Delta: delta}
		return nil
	})
	if err != nil {
		return ResyncResult{}, err
	}

	s.logger.Info("cart line resynced",
		zap.String("lineId", result.LineID),
		zap.String("itemId", result.ItemID),
		zap.Int("quantity", result.NewQuantity),
		zap.Int("delta", result.Delta),
		zap.Int("available", item.Available),
	)
	s.publishStockUpdate(ctx, item)
	return result, nil
}

// ListCart returns the owner's cart lines, oldest first.
func (s *CartService) ListCart(ctx context.Context, ownerID string) ([]domain.CartLine, error) {
	if ownerID == "" {
		return nil, domain.ErrOwnerRequired
	}
	return s.repo.ListLinesByOwner(ctx, ownerID)
}

// adjustStock applies a signed delta to an item's available counter while
// holding the item's row lock, and returns the updated snapshot. The counter
// never goes below zero: a delta that would breach that fails with
// ErrInsufficientStock before anything is written. Every counter mutation in
// this service goes through here.
func (s *CartService) adjustStock(txCtx context.Context, itemID string, delta int, now time.Time) (domain.MenuItem, error) {
	item, err := s.repo.GetItemForUpdate(txCtx, itemID)
	if err != nil {
		return domain.MenuItem{}, err
	}

	candidate := item.Available + delta
	if candidate < 0 {
		return domain.MenuItem{}, domain.ErrInsufficientStock
	}

	if err := s.repo.SetItemStock(txCtx, itemID, candidate, now); err != nil {
		return domain.MenuItem{}, err
	}

	item.Available = candidate
	item.UpdatedAt = now
	return item, nil
}

func (s *CartService) publishStockUpdate(ctx context.Context, item domain.MenuItem) {
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
