package quiz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTickInterval is one countdown second of wall-clock time.
const DefaultTickInterval = time.Second

// ErrDriverStarted is returned when Start is called on a driver that already ran.
var ErrDriverStarted = errors.New("timer driver already started")

// TickObserver receives the session snapshot after every counted tick.
type TickObserver func(v View, outcome TickOutcome)

// Driver feeds one tick per interval into a session while it is active.
// A driver runs at most once: it stops for good on Stop, context cancellation, or session finish.
type Driver struct {
	session  *Session
	interval time.Duration
	observe  TickObserver
	logger   zerolog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewDriver binds a driver to a session. interval <= 0 uses DefaultTickInterval; observe may be nil.
func NewDriver(session *Session, interval time.Duration, observe TickObserver, logger zerolog.Logger) *Driver {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Driver{
		session:  session,
		interval: interval,
		observe:  observe,
		logger: logger.With().
			Str("component", "timer_driver").
			Str("session_id", session.ID().String()).
			Logger(),
		done: make(chan struct{}),
	}
}

// Start launches the tick loop. It returns immediately.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return ErrDriverStarted
	}
	d.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	go d.run(loopCtx)
	return nil
}

// Stop cancels the loop and waits for it to exit. No tick is applied after Stop returns.
// Safe to call more than once, and before Start.
func (d *Driver) Stop() {
	d.mu.Lock()
	started := d.started
	cancel := d.cancel
	d.started = true
	d.mu.Unlock()

	if !started {
		// never ran; make Done observable anyway
		d.closeDone()
		return
	}
	if cancel != nil {
		cancel()
	}
	<-d.done
}

// Done is closed once the loop has exited.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

func (d *Driver) run(ctx context.Context) {
	defer d.closeDone()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.session.Done():
			return
		case <-ticker.C:
			// a tick that raced with cancellation is dropped
			if ctx.Err() != nil {
				return
			}
			outcome := d.session.Tick()
			if outcome == TickIgnored {
				return
			}
			if d.observe != nil {
				d.observe(d.session.View(), outcome)
			}
			if outcome == TickExpired {
				d.logger.Info().Msg("session time expired")
				return
			}
		}
	}
}

func (d *Driver) closeDone() {
	d.mu.Lock()
	defer d.mu.Unlock()
	select {
	case <-d.done:
	default:
		close(d.done)
	}
}
