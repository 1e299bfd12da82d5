package checkout

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/printroom/stockroom/internal/model"
)

// Station is the scan-station front end: one scan code per line in, one
// status line per scan out. Barcode scanners type the code and press Enter.
type Station struct {
	Service *Service
	In      io.Reader
	Out     io.Writer
	Prompt  string
}

// Run processes scans until the input ends or ctx is cancelled.
func (st *Station) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(st.In)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	st.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading scans: %w", err)
					}
				default:
				}
				return nil
			}
			if code := strings.TrimSpace(line); code != "" {
				st.Scan(ctx, code)
			}
			st.prompt()
		}
	}
}

// Scan handles a single scan code and reports the outcome to Out.
func (st *Station) Scan(ctx context.Context, code string) {
	res, err := st.Service.Remove(ctx, code)
	switch {
	case errors.Is(err, model.ErrNotFound):
		fmt.Fprintln(st.Out, "Item not found.")
		return
	case errors.Is(err, model.ErrCountBelowZero):
		fmt.Fprintln(st.Out, "Item count cannot go below zero.")
		return
	case res == nil:
		fmt.Fprintf(st.Out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(st.Out, "Removed %s from %s. Current count: %d\n", res.Item.Name, res.Item.Location, res.Item.Count)
	if err != nil {
		fmt.Fprintf(st.Out, "Warning: %v\n", err)
	}
}

func (st *Station) prompt() {
	if st.Prompt != "" {
		fmt.Fprint(st.Out, st.Prompt)
	}
}
