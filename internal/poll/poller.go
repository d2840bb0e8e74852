package poll

import (
	"context"
	"log"
	"time"
)

const (
	defaultInterval = 2 * time.Second
	maxBackoff      = 30 * time.Second
)

// Poller runs one cycle function on a fixed cadence in its own goroutine.
// Cycles report success; consecutive failures stretch the wait with
// exponential backoff so a dead engine is not hammered every tick. Kick
// forces the next cycle immediately, which the action dispatcher uses to
// converge the UI right after a mutation.
type Poller struct {
	name     string
	interval time.Duration
	cycle    func(ctx context.Context) bool
	kick     chan struct{}
}

// New builds a poller; Start must be called to schedule it.
func New(name string, interval time.Duration, cycle func(ctx context.Context) bool) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		name:     name,
		interval: interval,
		cycle:    cycle,
		kick:     make(chan struct{}, 1),
	}
}

// Start launches the polling goroutine and returns immediately. The
// goroutine stops when ctx is cancelled; it is not awaited on shutdown.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		failures := 0
		for {
			if p.runCycle(ctx) {
				failures = 0
			} else {
				failures++
			}

			timer := time.NewTimer(calculateBackoff(failures, p.interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-p.kick:
				timer.Stop()
			case <-timer.C:
			}
		}
	}()
}

// Kick schedules an immediate cycle. Repeated kicks before the cycle runs
// coalesce into one.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// runCycle guards against panics: a broken cycle logs and keeps its
// schedule, and never takes the other pollers down with it.
func (p *Poller) runCycle(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("poller %s: cycle panicked: %v", p.name, r)
			ok = false
		}
	}()
	return p.cycle(ctx)
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff. Zero failures means the plain interval.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
