package reconciliation

import (
	"context"
	"fmt"
	"time"

	"ms-registration/internal/logger"
)

// Poller refreshes watched events on a fixed interval.
type Poller struct {
	View       *View
	EventCodes []string
	Interval   time.Duration
	Logger     *logger.Logger
}

func NewPoller(view *View, codes []string, interval time.Duration, l *logger.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{View: view, EventCodes: codes, Interval: interval, Logger: l}
}

// Run refreshes once immediately, then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.Logger.Info("RECONCILE", fmt.Sprintf("Poller started, interval %s", p.Interval))

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	p.refreshAll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("RECONCILE", "Poller stopped")
			return
		case <-ticker.C:
			p.refreshAll(ctx)
		}
	}
}

// codes is the configured list plus anything an operator has opened since.
func (p *Poller) codes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, code := range append(append([]string{}, p.EventCodes...), p.View.ActiveCodes()...) {
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out
}

func (p *Poller) refreshAll(ctx context.Context) {
	for _, code := range p.codes() {
		if ctx.Err() != nil {
			return
		}
		if _, err := p.View.Refresh(ctx, code); err != nil {
			p.Logger.Warn("RECONCILE", fmt.Sprintf("refresh %s failed: %v", code, err))
		}
	}
}
