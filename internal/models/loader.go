package models

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Loader is a single-line terminal spinner for operations that run long
// enough to look stuck, like a full project scan. ANSI terminals get a
// braille spinner on an erased line; everything else gets a plain
// carriage-return fallback.
//
// Typical usage:
//
//	l := models.NewLoader(os.Stdout, "Scanning project...")
//	l.Start()
//	// do work
//	l.SetMessage("Almost done")
//	l.StopWithMessage("✅ Scan complete")
type Loader struct {
	mu           sync.Mutex
	msg          string
	frames       []string
	interval     time.Duration
	out          io.Writer
	stopCh       chan struct{}
	doneCh       chan struct{}
	active       bool
	supportsANSI bool
	color        string
	hideCursor   bool
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithFrames sets custom spinner frames.
func WithFrames(frames []string) LoaderOption {
	return func(l *Loader) { l.frames = append([]string(nil), frames...) }
}

// WithInterval sets the frame interval.
func WithInterval(d time.Duration) LoaderOption { return func(l *Loader) { l.interval = d } }

// WithANSI forces ANSI handling on or off, mainly for tests.
func WithANSI(enabled bool) LoaderOption { return func(l *Loader) { l.supportsANSI = enabled } }

// WithColor sets the spinner's ANSI color code, e.g. "36" for cyan.
func WithColor(code string) LoaderOption { return func(l *Loader) { l.color = code } }

// NewLoader creates a loader writing to out; nil means os.Stdout.
func NewLoader(out io.Writer, message string, opts ...LoaderOption) *Loader {
	l := &Loader{
		msg:          message,
		frames:       []string{"⠋", "⠙", "⠚", "⠞", "⠖", "⠦", "⠴", "⠲", "⠳", "⠓"},
		interval:     90 * time.Millisecond,
		out:          out,
		supportsANSI: runtime.GOOS != "windows",
		color:        "36",
		hideCursor:   true,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	for _, opt := range opts {
		opt(l)
	}
	if !l.supportsANSI {
		l.frames = []string{"-", "\\", "|", "/"}
	}
	return l
}

// Start begins the spinner. Calling it on a running loader is a no-op.
func (l *Loader) Start() {
	l.mu.Lock()
	if l.active {
		l.mu.Unlock()
		return
	}
	l.active = true
	stopCh := l.stopCh
	doneCh := l.doneCh
	msg := l.msg
	supports := l.supportsANSI
	hideCursor := l.hideCursor && supports
	out := l.out
	interval := l.interval
	frames := append([]string(nil), l.frames...)
	color := l.color
	l.mu.Unlock()

	if hideCursor {
		fmt.Fprint(out, "\x1b[?25l")
	}

	go func() {
		defer close(doneCh)
		i := 0
		for {
			select {
			case <-stopCh:
				if supports {
					fmt.Fprint(out, "\r\x1b[2K")
					if hideCursor {
						fmt.Fprint(out, "\x1b[?25h")
					}
				} else {
					fmt.Fprint(out, "\r"+strings.Repeat(" ", len(msg)+4)+"\r")
				}
				return
			default:
				frame := frames[i%len(frames)]
				i++
				l.mu.Lock()
				msg = l.msg
				l.mu.Unlock()
				if supports {
					fmt.Fprintf(out, "\r\x1b[2K\x1b[%sm%s\x1b[0m %s", color, frame, msg)
				} else {
					fmt.Fprintf(out, "\r%s %s", frame, msg)
				}
				time.Sleep(interval)
			}
		}
	}()
}

// Stop halts the spinner, clears its line and restores the cursor.
func (l *Loader) Stop() {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	l.active = false
	close(l.stopCh)
	done := l.doneCh
	l.mu.Unlock()
	<-done
}

// StopWithMessage stops the spinner and prints a final line in its place.
func (l *Loader) StopWithMessage(finalMsg string) {
	l.Stop()
	if strings.TrimSpace(finalMsg) != "" {
		fmt.Fprintln(l.out, finalMsg)
	}
}

// SetMessage updates the text shown next to the spinner.
func (l *Loader) SetMessage(m string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msg = m
}
