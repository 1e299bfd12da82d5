package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/printroom/stockroom/internal/model"
	"github.com/printroom/stockroom/internal/notify"
	"github.com/printroom/stockroom/internal/store"
)

// NotifyOutcome records what happened to the restock notification for one
// removal.
type NotifyOutcome string

const (
	// NotifySkipped: the item is still above the threshold.
	NotifySkipped NotifyOutcome = "skipped"
	// NotifySuppressed: the policy has already notified for this item.
	NotifySuppressed NotifyOutcome = "suppressed"
	// NotifySent: the notifier accepted the message.
	NotifySent NotifyOutcome = "sent"
	// NotifyFailed: the notifier returned an error, which was logged.
	NotifyFailed NotifyOutcome = "failed"
)

// Result describes a completed removal.
type Result struct {
	Item   model.Item
	Notify NotifyOutcome
}

// Service runs the remove-one-unit flow against the item store.
type Service struct {
	DB       *sql.DB
	Log      *RemovalLog
	Notifier notify.Notifier
	Policy   Policy
	Now      func() time.Time

	notifiedOnce atomic.Bool
}

// Remove takes one unit of the item with the given scan code out of stock.
//
// Unknown codes fail with model.ErrNotFound and an empty item fails with
// model.ErrCountBelowZero; neither changes anything. Otherwise the new count
// is stored and logged, and a restock notification is attempted if the item
// is now low. Notification problems are logged and never undo the removal.
// A removal-log failure is returned alongside the (already stored) result.
func (s *Service) Remove(ctx context.Context, code string) (*Result, error) {
	item, err := store.GetItem(ctx, s.DB, code)
	if err != nil {
		return nil, fmt.Errorf("looking up item: %w", err)
	}

	count, err := Decrement(item)
	if err != nil {
		return nil, err
	}

	if err := store.SetItemCount(ctx, s.DB, code, count); err != nil {
		return nil, fmt.Errorf("storing count: %w", err)
	}
	item.Count = count

	result := &Result{Item: *item, Notify: NotifySkipped}

	logErr := s.Log.Append(s.now(), *item)
	if logErr != nil {
		slog.Error("failed to append removal log", "code", code, "path", s.Log.Path(), "error", logErr)
	}

	if item.LowStock() {
		result.Notify = s.notifyLow(ctx, *item)
	}

	slog.Info("item removed", "code", code, "name", item.Name, "count", item.Count, "notify", string(result.Notify))
	return result, logErr
}

func (s *Service) notifyLow(ctx context.Context, item model.Item) NotifyOutcome {
	allowed, err := s.claim(ctx, item)
	if err != nil {
		slog.Error("failed to check notification state", "code", item.Code, "error", err)
		return NotifyFailed
	}
	if !allowed {
		return NotifySuppressed
	}

	if err := s.notifier().Notify(ctx, RestockMessage(item)); err != nil {
		slog.Error("failed to send restock notification", "code", item.Code, "error", fmt.Errorf("sending notification: %w", err))
		return NotifyFailed
	}
	return NotifySent
}

// claim reports whether the policy lets this item notify now, and records
// that it did. The mark is taken before the send is attempted.
func (s *Service) claim(ctx context.Context, item model.Item) (bool, error) {
	switch s.Policy {
	case PolicyEvery:
		return true, nil
	case PolicyOnce:
		return s.notifiedOnce.CompareAndSwap(false, true), nil
	default:
		alerted, err := store.LowStockAlerted(ctx, s.DB, item.Code)
		if err != nil || alerted {
			return false, err
		}
		if err := store.RecordLowStockAlert(ctx, s.DB, item.Code, item.Count); err != nil {
			return false, err
		}
		return true, nil
	}
}

func (s *Service) notifier() notify.Notifier {
	if s.Notifier == nil {
		return notify.ConsoleNotifier{}
	}
	return s.Notifier
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
