// Package checkout removes stock one scan at a time and raises restock
// notifications when an item runs low.
package checkout

import (
	"fmt"

	"github.com/printroom/stockroom/internal/model"
	"github.com/printroom/stockroom/internal/notify"
)

// Decrement returns the count an item would have after one unit is removed.
// A nil item is unknown; a count that would drop below zero is refused.
func Decrement(item *model.Item) (int, error) {
	if item == nil {
		return 0, model.ErrNotFound
	}
	next := item.Count - 1
	if next < 0 {
		return 0, model.ErrCountBelowZero
	}
	return next, nil
}

// RestockMessage builds the low-stock notification for an item.
func RestockMessage(item model.Item) notify.Message {
	return notify.Message{
		Subject: "Low stock: " + item.Name,
		Body:    fmt.Sprintf("%s - %s is at %d. Please restock this item.", item.Name, item.Description, item.Count),
	}
}
