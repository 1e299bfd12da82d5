package store

import (
	"context"
	"errors"
	"testing"

	"github.com/printroom/stockroom/internal/db"
	"github.com/printroom/stockroom/internal/model"
)

var pen = model.ItemDetails{Name: "Pen", Description: "Blue ink", Location: "Shelf3"}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, "A1", pen)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Code != "A1" || item.Name != "Pen" || item.Location != "Shelf3" {
		t.Errorf("unexpected item: %+v", item)
	}
	if item.Count != 0 {
		t.Errorf("expected new item count 0, got %d", item.Count)
	}

	missing, err := GetItem(ctx, database, "nope")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown code, got %+v", missing)
	}
}

func TestCreateItemDuplicateCode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "A1", pen)
	SetItemCount(ctx, database, "A1", 7)

	_, err := CreateItem(ctx, database, "A1", model.ItemDetails{Name: "Other", Description: "x", Location: "y"})
	if !errors.Is(err, model.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}

	got, _ := GetItem(ctx, database, "A1")
	if got.Name != "Pen" || got.Count != 7 {
		t.Errorf("duplicate insert changed the stored item: %+v", got)
	}
}

func TestListItemsInsertionOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, code := range []string{"Z9", "A1", "M5"} {
		if _, err := CreateItem(ctx, database, code, pen); err != nil {
			t.Fatalf("CreateItem %s: %v", code, err)
		}
	}

	items, err := ListItems(ctx, database)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, code := range []string{"Z9", "A1", "M5"} {
		if items[i].Code != code {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Code, code)
		}
	}
}

func TestUpdateItemDetails(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "A1", pen)
	SetItemCount(ctx, database, "A1", 4)

	err := UpdateItemDetails(ctx, database, "A1", model.ItemDetails{Name: "Pen", Description: "Red ink", Location: "Shelf4"})
	if err != nil {
		t.Fatalf("UpdateItemDetails: %v", err)
	}

	got, _ := GetItem(ctx, database, "A1")
	if got.Description != "Red ink" || got.Location != "Shelf4" {
		t.Errorf("details not updated: %+v", got)
	}
	if got.Count != 4 {
		t.Errorf("editing details changed the count to %d", got.Count)
	}

	if err := UpdateItemDetails(ctx, database, "B2", pen); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetItemCount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "A1", pen)

	if err := SetItemCount(ctx, database, "A1", 3); err != nil {
		t.Fatalf("SetItemCount: %v", err)
	}
	got, _ := GetItem(ctx, database, "A1")
	if got.Count != 3 {
		t.Errorf("expected count 3, got %d", got.Count)
	}

	if err := SetItemCount(ctx, database, "A1", -1); !errors.Is(err, model.ErrCountBelowZero) {
		t.Errorf("expected ErrCountBelowZero, got %v", err)
	}
	got, _ = GetItem(ctx, database, "A1")
	if got.Count != 3 {
		t.Errorf("rejected count changed the item to %d", got.Count)
	}

	if err := SetItemCount(ctx, database, "nope", 1); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyCounts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "A1", pen)
	CreateItem(ctx, database, "B2", pen)
	SetItemCount(ctx, database, "A1", 2)

	if err := ApplyCounts(ctx, database, map[string]int{"A1": 3, "B2": 1}); err != nil {
		t.Fatalf("ApplyCounts: %v", err)
	}

	a, _ := GetItem(ctx, database, "A1")
	b, _ := GetItem(ctx, database, "B2")
	if a.Count != 5 || b.Count != 1 {
		t.Errorf("expected counts 5 and 1, got %d and %d", a.Count, b.Count)
	}
}

func TestApplyCountsUnknownCodeRollsBack(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "A1", pen)

	err := ApplyCounts(ctx, database, map[string]int{"A1": 3, "ghost": 1})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	a, _ := GetItem(ctx, database, "A1")
	if a.Count != 0 {
		t.Errorf("expected rollback to leave count 0, got %d", a.Count)
	}
}

func TestApplyCountsRearmsAlert(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "A1", pen)
	CreateItem(ctx, database, "B2", pen)
	RecordLowStockAlert(ctx, database, "A1", 1)
	RecordLowStockAlert(ctx, database, "B2", 0)

	// A1 ends at 3, above the threshold; B2 ends at 1 and stays alerted.
	if err := ApplyCounts(ctx, database, map[string]int{"A1": 3, "B2": 1}); err != nil {
		t.Fatalf("ApplyCounts: %v", err)
	}

	if alerted, _ := LowStockAlerted(ctx, database, "A1"); alerted {
		t.Error("expected A1 alert to be cleared")
	}
	if alerted, _ := LowStockAlerted(ctx, database, "B2"); !alerted {
		t.Error("expected B2 alert to remain")
	}
}
