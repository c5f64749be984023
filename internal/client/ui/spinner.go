package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Spinner animates a single "working" line until Stop is called.
type Spinner struct {
	w     io.Writer
	label string

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartSpinner draws label with an animated frame on w.
func StartSpinner(w io.Writer, label string) *Spinner {
	s := &Spinner{
		w:     w,
		label: label,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer close(s.done)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		frame := CursorStyle.Render(spinnerFrames[i%len(spinnerFrames)])
		fmt.Fprintf(s.w, "\r\033[K%s %s", frame, s.label)

		select {
		case <-s.stop:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

// Stop clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
}
