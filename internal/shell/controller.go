package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/subject-quiz/internal/bank"
	"github.com/gokatarajesh/subject-quiz/internal/quiz"
)

var (
	// ErrNoSession is returned when an intent needs a session and none is active.
	ErrNoSession = errors.New("no active session")
	// ErrSessionMismatch is returned when an intent names a session that was already replaced or discarded.
	ErrSessionMismatch = errors.New("session is no longer current")
)

// Theme is the presentational colour scheme. It never touches session state.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ControllerOptions carries the per-process quiz constants.
type ControllerOptions struct {
	TotalSeconds  int
	QuestionLimit int
	TickInterval  time.Duration
	DefaultTheme  Theme
}

// Controller owns at most one active session and its timer driver.
type Controller struct {
	provider bank.Provider
	preparer *quiz.Preparer
	opts     ControllerOptions
	listener Listener
	metrics  *Metrics
	logger   zerolog.Logger

	mu      sync.Mutex
	session *quiz.Session
	driver  *quiz.Driver
	theme   Theme
}

// NewController wires a controller. listener and metrics may be nil.
func NewController(provider bank.Provider, preparer *quiz.Preparer, opts ControllerOptions, listener Listener, metrics *Metrics, logger zerolog.Logger) *Controller {
	if opts.DefaultTheme != ThemeDark {
		opts.DefaultTheme = ThemeLight
	}
	if listener == nil {
		listener = nopListener{}
	}
	return &Controller{
		provider: provider,
		preparer: preparer,
		opts:     opts,
		listener: listener,
		metrics:  metrics,
		logger:   logger.With().Str("component", "shell").Logger(),
		theme:    opts.DefaultTheme,
	}
}

// Subjects lists the banks a session can be started for.
func (c *Controller) Subjects(ctx context.Context) ([]bank.Subject, error) {
	return c.provider.Subjects(ctx)
}

// Start builds a fresh session for the subject and replaces whatever session was active.
func (c *Controller) Start(ctx context.Context, subjectID string) (quiz.View, error) {
	templates, err := c.provider.Bank(ctx, subjectID)
	if err != nil {
		return quiz.View{}, fmt.Errorf("load bank %q: %w", subjectID, err)
	}

	var questions []quiz.PreparedQuestion
	if c.opts.QuestionLimit > 0 {
		questions = c.preparer.Prepare(templates, c.opts.QuestionLimit)
	} else {
		questions = c.preparer.PrepareDefault(templates)
	}
	session := quiz.NewSession(subjectID, questions, c.opts.TotalSeconds)
	driver := quiz.NewDriver(session, c.opts.TickInterval, c.observeTick, c.logger)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.discardLocked()
	c.session = session
	c.driver = driver
	// drivers outlive the request that started them; Close and Discard stop them
	if err := driver.Start(context.Background()); err != nil {
		c.session, c.driver = nil, nil
		return quiz.View{}, fmt.Errorf("start timer: %w", err)
	}

	view := session.View()
	c.metrics.sessionStarted(subjectID)
	c.logger.Info().
		Str("session_id", session.ID().String()).
		Str("subject", subjectID).
		Int("questions", len(questions)).
		Int("total_seconds", session.TotalSeconds()).
		Msg("session started")
	c.listener.Publish(Event{Kind: EventSessionState, SessionID: session.ID(), View: &view})
	return view, nil
}

// View returns a snapshot of the active session.
func (c *Controller) View() (quiz.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return quiz.View{}, ErrNoSession
	}
	return c.session.View(), nil
}

// Select records an answer on the active session. On a finished session it changes nothing.
func (c *Controller) Select(id uuid.UUID, questionIndex, optionIndex int) (quiz.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.currentLocked(id)
	if err != nil {
		return quiz.View{}, err
	}

	recorded, err := session.SelectAnswer(questionIndex, optionIndex)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("session_id", id.String()).
			Int("question", questionIndex).
			Int("option", optionIndex).
			Msg("answer rejected")
		return quiz.View{}, err
	}

	view := session.View()
	if recorded {
		c.metrics.answerSelected()
		c.listener.Publish(Event{Kind: EventSessionState, SessionID: id, View: &view})
	}
	return view, nil
}

// Finish submits the active session. Finishing twice returns the same result.
func (c *Controller) Finish(id uuid.UUID) (quiz.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.currentLocked(id)
	if err != nil {
		return quiz.View{}, err
	}

	wasFinished := session.Finished()
	session.Finish()
	c.driver.Stop()

	view := session.View()
	// a concurrent timeout is reported by the tick observer
	if !wasFinished && view.Reason == quiz.ReasonSubmitted {
		c.reportFinished(view)
	}
	return view, nil
}

// Discard drops the active session and stops its timer. Without a session it does nothing.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discardLocked()
}

// Close stops any running timer. Used on shutdown.
func (c *Controller) Close() {
	c.Discard()
}

func (c *Controller) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// ToggleTheme flips between light and dark and returns the new theme.
func (c *Controller) ToggleTheme() Theme {
	c.mu.Lock()
	if c.theme == ThemeDark {
		c.theme = ThemeLight
	} else {
		c.theme = ThemeDark
	}
	theme := c.theme
	c.mu.Unlock()

	c.listener.Publish(Event{Kind: EventThemeChanged, Theme: theme})
	return theme
}

func (c *Controller) currentLocked(id uuid.UUID) (*quiz.Session, error) {
	if c.session == nil {
		return nil, ErrNoSession
	}
	if c.session.ID() != id {
		return nil, ErrSessionMismatch
	}
	return c.session, nil
}

func (c *Controller) discardLocked() {
	if c.session == nil {
		return
	}
	// Stop blocks until the tick loop is gone, so nothing fires for the old session afterwards.
	c.driver.Stop()

	id := c.session.ID()
	if !c.session.Finished() {
		c.metrics.sessionAbandoned()
	}
	c.logger.Info().
		Str("session_id", id.String()).
		Str("subject", c.session.Subject()).
		Msg("session discarded")
	c.session, c.driver = nil, nil
	c.listener.Publish(Event{Kind: EventSessionDiscarded, SessionID: id})
}

// observeTick runs on the driver goroutine. It must not take c.mu: Stop waits for this loop while holding it.
func (c *Controller) observeTick(v quiz.View, outcome quiz.TickOutcome) {
	switch outcome {
	case quiz.TickCounted:
		c.listener.Publish(Event{Kind: EventTick, SessionID: v.ID, View: &v})
	case quiz.TickExpired:
		c.reportFinished(v)
	}
}

func (c *Controller) reportFinished(v quiz.View) {
	var correct, total int
	if v.Result != nil {
		correct, total = v.Result.Correct, v.Result.Total
	}
	c.metrics.sessionFinished(v.Reason, v.Result)
	c.logger.Info().
		Str("session_id", v.ID.String()).
		Str("reason", string(v.Reason)).
		Int("correct", correct).
		Int("total", total).
		Str("elapsed", v.Elapsed).
		Msg("session finished")
	c.listener.Publish(Event{Kind: EventSessionFinished, SessionID: v.ID, View: &v})
}
