package reminder

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

var ErrQueueFull = errors.New("reminder queue full")

// Channel hands payloads to a consumer such as the TUI event loop.
type Channel struct {
	ch      chan Payload
	granted atomic.Bool
}

func NewChannel(buffer int, granted bool) *Channel {
	c := &Channel{ch: make(chan Payload, buffer)}
	c.granted.Store(granted)
	return c
}

func (c *Channel) Available() bool { return true }

func (c *Channel) PermissionGranted() bool { return c.granted.Load() }

// Grant turns delivery on or off at runtime.
func (c *Channel) Grant(v bool) { c.granted.Store(v) }

// C is the receive side.
func (c *Channel) C() <-chan Payload { return c.ch }

func (c *Channel) Emit(p Payload) error {
	select {
	case c.ch <- p:
		return nil
	default:
		return fmt.Errorf("%w: dropped reminder for %s", ErrQueueFull, p.TaskID)
	}
}

// Writer prints reminders as lines, ringing the terminal bell first.
type Writer struct {
	mu   sync.Mutex
	w    io.Writer
	bell bool
}

func NewWriter(w io.Writer, bell bool) *Writer {
	return &Writer{w: w, bell: bell}
}

func (w *Writer) Available() bool { return w.w != nil }

func (w *Writer) PermissionGranted() bool { return true }

func (w *Writer) Emit(p Payload) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefix := ""
	if w.bell {
		prefix = "\a"
	}
	_, err := fmt.Fprintf(w.w, "%s%s: %s\n", prefix, p.Title, p.Body)
	return err
}

// Disabled never delivers; used when reminders are switched off in config.
type Disabled struct{}

func (Disabled) Available() bool         { return false }
func (Disabled) PermissionGranted() bool { return false }
func (Disabled) Emit(Payload) error      { return nil }
