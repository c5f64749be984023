package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/kamikazebr/iskra-desktop/internal/client/usage"
)

// RenderCredits formats the remaining-requests indicator, red once the quota
// is used up.
func RenderCredits(d usage.Display) string {
	text := fmt.Sprintf("✦ Requests left: %d/%d", d.Remaining, d.Total)
	if d.Exhausted {
		return ExhaustedStyle.Render(text)
	}
	return CreditsStyle.Render(text)
}

// CreditsTooltip is the longer description shown on demand.
func CreditsTooltip(d usage.Display) string {
	return fmt.Sprintf("Used today: %d of %d\nRemaining: %d\nPlan: %s", d.Used, d.Total, d.Remaining, d.Tier)
}

// LineIndicator rewrites a single terminal line. It only writes when the
// rendered text changes.
type LineIndicator struct {
	w io.Writer

	mu      sync.Mutex
	last    string
	visible bool
}

func NewLineIndicator(w io.Writer) *LineIndicator {
	return &LineIndicator{w: w}
}

func (l *LineIndicator) Show(d usage.Display) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := RenderCredits(d)
	if l.visible && line == l.last {
		return
	}
	fmt.Fprintf(l.w, "\r\033[K%s", line)
	l.last, l.visible = line, true
}

func (l *LineIndicator) Hide() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.visible {
		return
	}
	fmt.Fprint(l.w, "\r\033[K")
	l.last, l.visible = "", false
}
