package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pk210607/foodie-hub/internal/domain"
)

// CatalogRepository persists the menu itself. All of its operations are
// single statements, so it needs no transaction plumbing.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateItem(ctx context.Context, item domain.MenuItem) error {
	const stmt = `
INSERT INTO menu_items (id, name, available, updated_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, stmt, item.ID, item.Name, item.Available, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrItemAlreadyExists
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidStock
		}
		return fmt.Errorf("create menu item: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	const query = `
SELECT id, name, available, updated_at
FROM menu_items
ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Available, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}
	return items, nil
}

// AddItemStock adds amount to the available pool in one statement and
// returns the updated row.
func (r *CatalogRepository) AddItemStock(ctx context.Context, itemID string, amount int, now time.Time) (domain.MenuItem, error) {
	const stmt = `
UPDATE menu_items
SET available = available + $2, updated_at = $3
WHERE id = $1
RETURNING id, name, available, updated_at`

	var item domain.MenuItem
	err := r.pool.QueryRow(ctx, stmt, itemID, amount, now).Scan(&item.ID, &item.Name, &item.Available, &item.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.MenuItem{}, domain.ErrInvalidID
		}
		if isCheckViolation(err) {
			return domain.MenuItem{}, domain.ErrInvalidStock
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MenuItem{}, domain.ErrItemNotFound
		}
		return domain.MenuItem{}, fmt.Errorf("add item stock: %w", err)
	}
	return item, nil
}
