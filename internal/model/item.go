package model

import (
	"strings"
	"time"
)

// LowStockThreshold is the count at or below which a restock
// notification is due.
const LowStockThreshold = 2

// Item is a stocked product identified by its scan code.
type Item struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Count       int       `json:"count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LowStock reports whether the item is at or below the restock threshold.
func (i *Item) LowStock() bool {
	return i.Count <= LowStockThreshold
}

// ItemDetails holds the editable descriptive fields of an item.
type ItemDetails struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Trim returns the details with surrounding whitespace removed.
func (d ItemDetails) Trim() ItemDetails {
	return ItemDetails{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Location:    strings.TrimSpace(d.Location),
	}
}

// Validate checks that every descriptive field is filled in.
func (d ItemDetails) Validate() error {
	switch {
	case d.Name == "":
		return &ValidationError{Field: "name"}
	case d.Description == "":
		return &ValidationError{Field: "description"}
	case d.Location == "":
		return &ValidationError{Field: "location"}
	}
	return nil
}

// ValidateNewItem checks the fields required to add an item.
func ValidateNewItem(code string, d ItemDetails) error {
	if strings.TrimSpace(code) == "" {
		return &ValidationError{Field: "code"}
	}
	return d.Validate()
}
