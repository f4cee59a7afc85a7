package domain

import "time"

// MenuItem tracks how many units of a dish remain available to reserve.
type MenuItem struct {
	ID        string
	Name      string
	Available int
	UpdatedAt time.Time
}
