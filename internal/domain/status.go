package domain

import "strings"

// OrderStatus is an order's lifecycle state.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderDispatched OrderStatus = "dispatched"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	OrderPending:    true,
	OrderInProgress: true,
	OrderDispatched: true,
	OrderDelivered:  true,
	OrderCancelled:  true,
}

// ParseOrderStatus returns the status for a given label (case-insensitive).
func ParseOrderStatus(label string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(label)))
	return status, orderStatuses[status]
}

// Editable reports whether the order's line set may still be changed.
// Dispatched and delivered orders are immutable for reconciliation.
func (s OrderStatus) Editable() bool {
	return s == OrderPending || s == OrderInProgress
}

// ConsumesStock reports whether orders in this state hold reserved stock.
func (s OrderStatus) ConsumesStock() bool {
	return s != OrderCancelled
}

// Completed reports whether the order reached the end of its lifecycle and
// counts toward profitability.
func (s OrderStatus) Completed() bool {
	return s == OrderDispatched || s == OrderDelivered
}
