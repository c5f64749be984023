package usage

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

const (
	DefaultRefreshInterval = 3 * time.Minute
	DefaultDisplayInterval = 1 * time.Second
)

// ErrNoSession is returned by a Source refresh when there is no token.
var ErrNoSession = errors.New("no active session")

// Source is the cached profile plus a way to refresh it from the backend.
type Source interface {
	// CachedProfile re-reads the locally persisted profile. nil when logged out.
	CachedProfile() *models.User
	// RefreshProfile fetches /auth/me, reconciles and persists the result.
	RefreshProfile(ctx context.Context) (*models.User, error)
}

// Indicator renders the remaining quota.
type Indicator interface {
	Show(Display)
	Hide()
}

type Poller struct {
	Source          Source
	Indicator       Indicator
	RefreshInterval time.Duration
	DisplayInterval time.Duration
	Log             logrus.FieldLogger

	// Subscribe, when set, registers for auth changes; each change re-renders
	// right away instead of on the next display tick.
	Subscribe func(fn func(*models.User)) (unsubscribe func())
}

// Handle controls a running poller.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the poller and waits for it to exit. Safe to call repeatedly.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}

// Done is closed once the poller goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start refreshes once right away, then keeps the indicator current until ctx
// is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		p.run(ctx)
	}()
	return h
}

func (p *Poller) run(ctx context.Context) {
	refreshEvery := p.RefreshInterval
	if refreshEvery <= 0 {
		refreshEvery = DefaultRefreshInterval
	}
	displayEvery := p.DisplayInterval
	if displayEvery <= 0 {
		displayEvery = DefaultDisplayInterval
	}

	refreshTicker := time.NewTicker(refreshEvery)
	defer refreshTicker.Stop()
	displayTicker := time.NewTicker(displayEvery)
	defer displayTicker.Stop()

	changed := make(chan struct{}, 1)
	if p.Subscribe != nil {
		unsubscribe := p.Subscribe(func(*models.User) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()
	}

	p.render()
	p.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			p.render()
		case <-refreshTicker.C:
			p.Refresh(ctx)
		case <-displayTicker.C:
			p.render()
		}
	}
}

// Refresh pulls the profile from the backend and updates the indicator. On
// failure the cached profile is shown as-is.
func (p *Poller) Refresh(ctx context.Context) {
	if _, err := p.Source.RefreshProfile(ctx); err != nil {
		if !errors.Is(err, ErrNoSession) && ctx.Err() == nil {
			p.logger().WithError(err).Warn("Failed to refresh usage")
		}
	}
	p.render()
}

func (p *Poller) render() {
	u := p.Source.CachedProfile()
	if u == nil {
		p.Indicator.Hide()
		return
	}
	p.Indicator.Show(DisplayFor(u))
}

func (p *Poller) logger() logrus.FieldLogger {
	if p.Log != nil {
		return p.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
