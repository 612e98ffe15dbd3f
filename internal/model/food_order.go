package model

import "time"

// FoodOrderPlaced is the status of a freshly created order.
const FoodOrderPlaced = "PLACED"

// FoodItem is one line of a food order.
type FoodItem struct {
	Name           string `json:"name"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint32 `json:"unitPriceCents"`
}

// FoodOrder is a concession order, optionally attached to a booking.
type FoodOrder struct {
	ID         uint64     `json:"id"`
	UserID     uint64     `json:"userId"`
	BookingID  *uint64    `json:"bookingId,omitempty"`
	Items      []FoodItem `json:"items"`
	TotalCents uint32     `json:"totalCents"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Total returns the sum of quantity * unit price over all items.
func (o FoodOrder) Total() uint32 {
	var total uint32
	for _, it := range o.Items {
		total += it.Quantity * it.UnitPriceCents
	}
	return total
}
