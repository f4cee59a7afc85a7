package domain

import "errors"

var (
	ErrItemNotFound      = errors.New("menu item not found")
	ErrCartLineNotFound  = errors.New("cart line not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidStock      = errors.New("invalid stock amount")
	ErrOwnerRequired     = errors.New("owner id required")
	ErrItemNameRequired  = errors.New("item name required")
	ErrItemAlreadyExists = errors.New("menu item already exists")
	ErrInvalidID         = errors.New("invalid id")
)
