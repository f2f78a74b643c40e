// Package spinner draws a progress indicator with elapsed time while a
// solver runs.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Start displays an animated spinner with the given message and the time
// elapsed since the call on w.
// Call the returned function to stop the spinner and clear the line.
func Start(w io.Writer, message string) (stop func()) {
	return start(w, message, time.Now)
}

// StartIfTerminal is Start when w is a terminal and a no-op otherwise, so
// redirected output stays free of control characters.
func StartIfTerminal(w io.Writer, message string) (stop func()) {
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}
	return Start(w, message)
}

func start(w io.Writer, message string, now func() time.Time) (stop func()) {
	began := now()
	done := make(chan struct{})
	cleared := make(chan struct{})
	var stopOnce sync.Once
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		i, width := 0, 0
		for {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
				close(cleared)
				return
			case <-ticker.C:
				line := fmt.Sprintf("%s %s (%s)", frames[i%len(frames)], message, formatElapsed(now().Sub(began)))
				width = max(width, runewidth.StringWidth(line))
				fmt.Fprintf(w, "\r%s", line) //nolint:errcheck
				i++
			}
		}
	}()
	return func() {
		stopOnce.Do(func() {
			close(done)
		})
		<-cleared
	}
}

func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Truncate(time.Second).String()
}
