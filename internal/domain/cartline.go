package domain

import "time"

// CartLine is one user's reserved quantity of a single menu item, pending
// checkout. A user holds at most one line per item.
type CartLine struct {
	ID        string
	OwnerID   string
	ItemID    string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
