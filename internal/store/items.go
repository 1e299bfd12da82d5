package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/printroom/stockroom/internal/model"
)

const itemColumns = `code, name, description, location, count, created_at, updated_at`

// CreateItem inserts a new item with a zero count.
// It fails with model.ErrDuplicateCode if the code is already taken.
func CreateItem(ctx context.Context, db *sql.DB, code string, d model.ItemDetails) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM items WHERE code = ?)`, code,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking item code: %w", err)
	}
	if exists {
		return nil, model.ErrDuplicateCode
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (code, name, description, location, count) VALUES (?, ?, ?, ?, 0)`,
		code, d.Name, d.Description, d.Location,
	)
	if isConstraintError(err) {
		return nil, model.ErrDuplicateCode
	}
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}

	return GetItem(ctx, db, code)
}

// GetItem returns the item with the given scan code, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, code string) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE code = ?`, code,
	).Scan(&item.Code, &item.Name, &item.Description, &item.Location, &item.Count, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns every item in insertion order.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.Code, &item.Name, &item.Description, &item.Location, &item.Count, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItemDetails replaces an item's name, description and location.
// The scan code itself is never changed.
func UpdateItemDetails(ctx context.Context, db *sql.DB, code string, d model.ItemDetails) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, location = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE code = ?`,
		d.Name, d.Description, d.Location, code,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return requireRow(result, "updating item", model.ErrNotFound)
}

// SetItemCount stores a new count for an item.
func SetItemCount(ctx context.Context, db *sql.DB, code string, count int) error {
	if count < 0 {
		return model.ErrCountBelowZero
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET count = ?, updated_at = CURRENT_TIMESTAMP WHERE code = ?`,
		count, code,
	)
	if err != nil {
		return fmt.Errorf("setting item count: %w", err)
	}
	return requireRow(result, "setting item count", model.ErrNotFound)
}

// ApplyCounts adds each tally to the matching item's count in a single
// transaction. An unknown code aborts the whole batch. Items left above the
// low-stock threshold have their alert cleared so they can notify again.
func ApplyCounts(ctx context.Context, db *sql.DB, tallies map[string]int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for code, delta := range tallies {
		var count int
		err := tx.QueryRowContext(ctx,
			`UPDATE items SET count = count + ?, updated_at = CURRENT_TIMESTAMP
			 WHERE code = ? RETURNING count`,
			delta, code,
		).Scan(&count)
		if err == sql.ErrNoRows {
			return fmt.Errorf("applying count for %q: %w", code, model.ErrNotFound)
		}
		if isConstraintError(err) {
			return fmt.Errorf("applying count for %q: %w", code, model.ErrCountBelowZero)
		}
		if err != nil {
			return fmt.Errorf("applying count for %q: %w", code, err)
		}

		if count > model.LowStockThreshold {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM low_stock_alerts WHERE code = ?`, code,
			); err != nil {
				return fmt.Errorf("re-arming low stock alert: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing counts: %w", err)
	}
	return nil
}

// requireRow returns notFound when the statement touched no rows.
func requireRow(result sql.Result, op string, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// isConstraintError reports whether err is a SQLite constraint violation.
func isConstraintError(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
