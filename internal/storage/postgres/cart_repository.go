package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pk210607/foodie-hub/internal/domain"
)

// CartRepository persists cart lines and the stock counters they draw from.
type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// WithTx runs fn inside a single transaction.
func (r *CartRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetItemForUpdate loads a menu item and keeps its row locked until the
// surrounding transaction ends.
func (r *CartRepository) GetItemForUpdate(ctx context.Context, itemID string) (domain.MenuItem, error) {
	const query = `
SELECT id, name, available, updated_at
FROM menu_items
WHERE id = $1
FOR UPDATE`

	var item domain.MenuItem
	err := r.queryRow(ctx, query, itemID).Scan(&item.ID, &item.Name, &item.Available, &item.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.MenuItem{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MenuItem{}, domain.ErrItemNotFound
		}
		return domain.MenuItem{}, fmt.Errorf("get menu item for update: %w", err)
	}
	return item, nil
}

// SetItemStock writes an absolute available value. The table's non-negative
// check backs up the caller's own arithmetic.
func (r *CartRepository) SetItemStock(ctx context.Context, itemID string, available int, now time.Time) error {
	const stmt = `
UPDATE menu_items
SET available = $2, updated_at = $3
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, itemID, available, now)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("set item stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// FindLineByOwnerAndItem returns nil without error when the owner has no
// line for the item yet.
func (r *CartRepository) FindLineByOwnerAndItem(ctx context.Context, ownerID, itemID string) (*domain.CartLine, error) {
	const query = `
SELECT id, owner_id, item_id, quantity, created_at, updated_at
FROM cart_lines
WHERE owner_id = $1 AND item_id = $2`

	var line domain.CartLine
	err := r.queryRow(ctx, query, ownerID, itemID).Scan(
		&line.ID, &line.OwnerID, &line.ItemID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart line: %w", err)
	}
	return &line, nil
}

// GetLineForUpdate loads a cart line and keeps its row locked until the
// surrounding transaction ends.
func (r *CartRepository) GetLineForUpdate(ctx context.Context, lineID string) (domain.CartLine, error) {
	const query = `
SELECT id, owner_id, item_id, quantity, created_at, updated_at
FROM cart_lines
WHERE id = $1
FOR UPDATE`

	var line domain.CartLine
	err := r.queryRow(ctx, query, lineID).Scan(
		&line.ID, &line.OwnerID, &line.ItemID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.CartLine{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CartLine{}, domain.ErrCartLineNotFound
		}
		return domain.CartLine{}, fmt.Errorf("get cart line for update: %w", err)
	}
	return line, nil
}

func (r *CartRepository) CreateLine(ctx context.Context, line domain.CartLine) error {
	const stmt = `
INSERT INTO cart_lines (id, owner_id, item_id, quantity, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	// The (owner_id, item_id) unique index cannot fire here while the item
	// row lock is held; a violation would mean a caller skipped the lock.
	_, err := r.exec(ctx, stmt, line.ID, line.OwnerID, line.ItemID, line.Quantity, line.CreatedAt, line.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("create cart line: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateLineQuantity(ctx context.Context, lineID string, quantity int, now time.Time) error {
	const stmt = `
UPDATE cart_lines
SET quantity = $2, updated_at = $3
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, lineID, quantity, now)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidQuantity
		}
		return fmt.Errorf("update cart line quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartLineNotFound
	}
	return nil
}

func (r *CartRepository) DeleteLine(ctx context.Context, lineID string) error {
	const stmt = `DELETE FROM cart_lines WHERE id = $1`

	tag, err := r.exec(ctx, stmt, lineID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartLineNotFound
	}
	return nil
}

func (r *CartRepository) ListLinesByOwner(ctx context.Context, ownerID string) ([]domain.CartLine, error) {
	const query = `
SELECT id, owner_id, item_id, quantity, created_at, updated_at
FROM cart_lines
WHERE owner_id = $1
ORDER BY created_at`

	rows, err := r.query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ID, &line.OwnerID, &line.ItemID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

func (r *CartRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *CartRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *CartRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}
