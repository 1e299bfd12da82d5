package checkout

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/printroom/stockroom/internal/model"
)

// TimestampLayout is the removal log's timestamp format (dd/mm/yyyy@HH:MM:SS).
const TimestampLayout = "02/01/2006@15:04:05"

// FormatRemoval renders one removal log line, including the trailing newline.
func FormatRemoval(t time.Time, item model.Item) string {
	return fmt.Sprintf("%s - Removed %s (%s) from %s. Current count: %d\n",
		t.Local().Format(TimestampLayout), item.Name, item.Description, item.Location, item.Count)
}

// RemovalLog is an append-only text file with one line per removed unit.
type RemovalLog struct {
	path string
	mu   sync.Mutex
}

// NewRemovalLog returns a log that appends to path, creating it on first write.
func NewRemovalLog(path string) *RemovalLog {
	return &RemovalLog{path: path}
}

// Path returns the log file location.
func (l *RemovalLog) Path() string {
	return l.path
}

// Append writes one line for the item's post-removal state.
func (l *RemovalLog) Append(t time.Time, item model.Item) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening removal log: %w", err)
	}
	if _, err := f.WriteString(FormatRemoval(t, item)); err != nil {
		f.Close()
		return fmt.Errorf("writing removal log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing removal log: %w", err)
	}
	return nil
}
