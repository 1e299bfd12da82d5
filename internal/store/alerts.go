package store

import (
	"context"
	"database/sql"
	"fmt"
)

// LowStockAlerted reports whether a restock notification has already been
// sent for the item since it last rose above the threshold.
func LowStockAlerted(ctx context.Context, db *sql.DB, code string) (bool, error) {
	var alerted bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM low_stock_alerts WHERE code = ?)`, code,
	).Scan(&alerted)
	if err != nil {
		return false, fmt.Errorf("checking low stock alert: %w", err)
	}
	return alerted, nil
}

// RecordLowStockAlert marks the item as notified at the given count.
func RecordLowStockAlert(ctx context.Context, db *sql.DB, code string, count int) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO low_stock_alerts (code, count) VALUES (?, ?)
		 ON CONFLICT (code) DO UPDATE SET count = excluded.count, notified_at = CURRENT_TIMESTAMP`,
		code, count,
	)
	if err != nil {
		return fmt.Errorf("recording low stock alert: %w", err)
	}
	return nil
}

// ClearLowStockAlert re-arms notifications for the item.
func ClearLowStockAlert(ctx context.Context, db *sql.DB, code string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM low_stock_alerts WHERE code = ?`, code,
	)
	if err != nil {
		return fmt.Errorf("clearing low stock alert: %w", err)
	}
	return nil
}
