package orders

import "errors"

var (
	// ErrNilOrder is returned when appending a nil order.
	ErrNilOrder = errors.New("orders: nil order")
	// ErrEmptyUsername is returned when the username is missing.
	ErrEmptyUsername = errors.New("orders: empty username")
	// ErrOrderNotFound is returned when an order does not exist.
	ErrOrderNotFound = errors.New("orders: not found")
)
