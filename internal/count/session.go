// Package count runs bulk stock counts: scans are tallied in memory and
// added to the item counts in one batch when the session is applied.
package count

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/printroom/stockroom/internal/model"
	"github.com/printroom/stockroom/internal/store"
)

var (
	// ErrNoEntry is returned when removing a scan entry that does not exist.
	ErrNoEntry = errors.New("scan entry not found")
	// ErrSessionClosed is returned for any use of an applied or cancelled session.
	ErrSessionClosed = errors.New("count session closed")
)

// Entry is one scan as shown in the session list.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
	// Seq is how many times the code had been scanned, this scan included.
	Seq int `json:"seq"`
}

// Label renders the entry the way the count list shows it.
func (e Entry) Label() string {
	return fmt.Sprintf("%s (Scanned %d times)", e.Name, e.Seq)
}

// Tally is the running total for one code.
type Tally struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Session is a single bulk count in progress.
type Session struct {
	ID        string
	CreatedBy string
	CreatedAt time.Time

	db       *sql.DB
	mu       sync.Mutex
	entries  []Entry
	tallies  map[string]int
	order    []string
	closed   bool
	lastUsed time.Time
}

// NewSession starts an empty count against db.
func NewSession(id, createdBy string, db *sql.DB, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedBy: createdBy,
		CreatedAt: now,
		db:        db,
		tallies:   make(map[string]int),
		lastUsed:  now,
	}
}

// Scan records one unit of the item with the given code. Unknown codes are
// rejected with model.ErrNotFound and leave the session unchanged.
func (s *Session) Scan(ctx context.Context, code string) (Entry, error) {
	item, err := store.GetItem(ctx, s.db, code)
	if err != nil {
		return Entry{}, fmt.Errorf("looking up item: %w", err)
	}
	if item == nil {
		return Entry{}, model.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Entry{}, ErrSessionClosed
	}

	if _, seen := s.tallies[code]; !seen {
		s.order = append(s.order, code)
	}
	s.tallies[code]++
	e := Entry{Code: code, Name: item.Name, Seq: s.tallies[code]}
	s.entries = append(s.entries, e)
	s.lastUsed = time.Now()
	return e, nil
}

// Entries returns the scans in the order they were made.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// RemoveEntry drops the i-th scan and takes it off its code's tally.
func (s *Session) RemoveEntry(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if i < 0 || i >= len(s.entries) {
		return ErrNoEntry
	}

	code := s.entries[i].Code
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.tallies[code]--
	if s.tallies[code] == 0 {
		delete(s.tallies, code)
		for j, c := range s.order {
			if c == code {
				s.order = append(s.order[:j], s.order[j+1:]...)
				break
			}
		}
	}
	s.lastUsed = time.Now()
	return nil
}

// Tallies returns the per-code totals in first-scan order.
func (s *Session) Tallies() []Tally {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make(map[string]string, len(s.order))
	for _, e := range s.entries {
		names[e.Code] = e.Name
	}
	out := make([]Tally, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, Tally{Code: code, Name: names[code], Count: s.tallies[code]})
	}
	return out
}

// Apply adds every tally to its item's count in one transaction and closes
// the session. If the store rejects the batch nothing is changed and the
// session stays open.
func (s *Session) Apply(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	tallies := make(map[string]int, len(s.tallies))
	for code, n := range s.tallies {
		tallies[code] = n
	}
	if err := store.ApplyCounts(ctx, s.db, tallies); err != nil {
		return fmt.Errorf("applying count: %w", err)
	}
	s.closed = true
	return nil
}

// Cancel discards the session.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether the session was applied or cancelled.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
