package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recordingNotifier) sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

type blockingNotifier struct {
	release chan struct{}
}

func (b *blockingNotifier) Notify(ctx context.Context, _ Message) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestConsoleNotifierLogs(t *testing.T) {
	var buf bytes.Buffer
	n := ConsoleNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, n.Notify(context.Background(), Message{Subject: "Low stock: Pen", Body: "restock"}))
	assert.Contains(t, buf.String(), "Low stock: Pen")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, 4, time.Second)

	go d.Run(context.Background())

	require.NoError(t, d.Notify(context.Background(), Message{Body: "one"}))
	require.NoError(t, d.Notify(context.Background(), Message{Body: "two"}))
	d.Close()
	d.Wait()

	msgs := rec.sent()
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Body)
	assert.Equal(t, "two", msgs[1].Body)
}

func TestDispatcherSwallowsTransportErrors(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("relay down")}
	d := NewDispatcher(rec, 1, time.Second)

	go d.Run(context.Background())

	require.NoError(t, d.Notify(context.Background(), Message{Body: "x"}))
	d.Close()
	d.Wait()

	assert.Len(t, rec.sent(), 1)
}

func TestDispatcherQueueFull(t *testing.T) {
	blocker := &blockingNotifier{release: make(chan struct{})}
	d := NewDispatcher(blocker, 1, time.Second)

	// Without a running worker the single slot fills immediately.
	require.NoError(t, d.Notify(context.Background(), Message{Body: "first"}))
	assert.ErrorIs(t, d.Notify(context.Background(), Message{Body: "second"}), ErrQueueFull)

	close(blocker.release)
	go d.Run(context.Background())
	d.Close()
	d.Wait()
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(&recordingNotifier{}, 1, 0)
	d.Close()
	d.Close()

	assert.ErrorIs(t, d.Notify(context.Background(), Message{}), ErrClosed)
}

func TestDispatcherStopsOnCancel(t *testing.T) {
	blocker := &blockingNotifier{release: make(chan struct{})}
	d := NewDispatcher(blocker, 2, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	require.NoError(t, d.Notify(ctx, Message{Body: "stuck"}))
	cancel()

	done := make(chan struct{})
	go func() { d.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewSMTPNotifierValidation(t *testing.T) {
	base := SMTPConfig{Host: "mail.example.com", Port: 587, From: "stock@example.com", To: []string{"owner@example.com"}}

	_, err := NewSMTPNotifier(SMTPConfig{})
	assert.Error(t, err)

	noFrom := base
	noFrom.From = ""
	_, err = NewSMTPNotifier(noFrom)
	assert.Error(t, err)

	noTo := base
	noTo.To = nil
	_, err = NewSMTPNotifier(noTo)
	assert.Error(t, err)

	n, err := NewSMTPNotifier(base)
	require.NoError(t, err)
	assert.NotNil(t, n)
}

func TestSMTPNotifierBuildMessage(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{
		Host: "mail.example.com", Port: 587,
		From: "stock@example.com", To: []string{"5550100@mms.example.net"},
		Username: "stock@example.com", Password: "secret",
	})
	require.NoError(t, err)

	m, err := n.buildMessage(Message{Subject: "Low stock: Pen", Body: "Pen - Blue ink is at 2. Please restock this item."})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "stock@example.com")
	assert.Contains(t, raw, "5550100@mms.example.net")
	assert.Contains(t, raw, "Low stock: Pen")
	assert.True(t, strings.Contains(raw, "Please restock this item."), "body missing from %q", raw)
}

func TestSMTPNotifierRejectsBadRecipient(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{Host: "mail.example.com", Port: 587, From: "stock@example.com", To: []string{"not an address"}})
	require.NoError(t, err)

	_, err = n.buildMessage(Message{Body: "x"})
	assert.Error(t, err)
}
