// Package poller drives the homework status notification cycle: fetch the
// latest submissions, turn the most recent one into a chat message, deliver it
// when it differs from the previous one, and report failures at most once per
// streak.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/homework-bot/internal/domain/homework"
	"github.com/alem-hub/homework-bot/internal/domain/notification"
	"github.com/alem-hub/homework-bot/internal/infrastructure/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Source fetches raw submission payloads from the review API.
type Source interface {
	FetchSubmissions(ctx context.Context, since int64) (any, error)
}

// Notifier delivers a text message to the configured chat.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Lease guarantees that only one process notifies the chat.
type Lease interface {
	// Acquire takes or extends the lease. false means another holder owns it.
	Acquire(ctx context.Context) (bool, error)

	// Release gives the lease up if this process holds it.
	Release(ctx context.Context) error
}

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the Poller.
type Config struct {
	// Period is the wait between cycles and the query window width.
	Period time.Duration

	// Logger for structured logging.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *metrics.Metrics

	// Journal receives one entry per delivered message; optional.
	Journal notification.Journal

	// Lease is optional; without it every cycle runs.
	Lease Lease

	// Now and Sleep are replaceable for tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Period: DefaultPeriod,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE
// ══════════════════════════════════════════════════════════════════════════════

// State is the mutable cycle state. Only the loop reads or writes it.
type State struct {
	// LastMessage is the last message delivered as a status update.
	LastMessage string `json:"last_message"`

	// ErrorFlag is set once the current failure streak has been reported.
	ErrorFlag bool `json:"error_flag"`

	// Since is the Unix timestamp the next cycle queries from.
	Since int64 `json:"since"`
}

// Snapshot is a read-only copy of the loop state published after each cycle.
type Snapshot struct {
	State

	Schedule    string     `json:"schedule"`
	Cycles      int64      `json:"cycles"`
	Failures    int64      `json:"failures"`
	LastCycleID string     `json:"last_cycle_id,omitempty"`
	LastCycleAt *time.Time `json:"last_cycle_at,omitempty"`
	LastOutcome string     `json:"last_outcome,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// POLLER
// ══════════════════════════════════════════════════════════════════════════════

// Poller runs the notification cycle.
type Poller struct {
	source   Source
	notifier Notifier
	schedule *IntervalSchedule
	logger   *slog.Logger
	metrics  *metrics.Metrics
	journal  notification.Journal
	lease    Lease
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	state State

	mu       sync.RWMutex
	snapshot Snapshot
}

// New creates a Poller.
func New(source Source, notifier Notifier, config Config) *Poller {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Sleep == nil {
		config.Sleep = sleep
	}

	schedule := NewIntervalSchedule(config.Period)
	return &Poller{
		source:   source,
		notifier: notifier,
		schedule: schedule,
		logger:   config.Logger.With("component", "poller"),
		metrics:  config.Metrics,
		journal:  config.Journal,
		lease:    config.Lease,
		now:      config.Now,
		sleep:    config.Sleep,
		snapshot: Snapshot{Schedule: schedule.String()},
	}
}

// Run executes cycles until ctx is cancelled. It returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	p.state.Since = p.schedule.WindowStart(p.now())
	p.logger.Info("poller started", "schedule", p.schedule.String(), "since", p.state.Since)

	defer p.releaseLease()

	for {
		_, _ = p.RunCycle(ctx)
		if ctx.Err() != nil {
			break
		}

		p.state.Since = p.schedule.WindowStart(p.now())
		p.publish(func(s *Snapshot) { s.State = p.state })

		if err := p.sleep(ctx, p.schedule.Interval); err != nil {
			break
		}
	}

	p.logger.Info("poller stopped")
	return nil
}

// RunCycle performs one fetch-validate-notify pass and returns its outcome.
// The returned error is the failure the cycle handled, if any.
func (p *Poller) RunCycle(ctx context.Context) (string, error) {
	if p.state.Since == 0 {
		p.state.Since = p.schedule.WindowStart(p.now())
	}

	cycleID := uuid.NewString()
	log := p.logger.With("cycle_id", cycleID)

	if p.lease != nil {
		held, err := p.lease.Acquire(ctx)
		if err != nil || !held {
			log.Warn("cycle skipped, lease not held", "error", err)
			p.finish(cycleID, metrics.OutcomeSkipped, nil)
			return metrics.OutcomeSkipped, nil
		}
	}

	outcome, err := p.deliverStatus(ctx, log, cycleID)
	switch {
	case err != nil && ctx.Err() != nil:
		// Shutdown interrupted the cycle; the streak state stays as it was.
		log.Info("cycle interrupted by shutdown", "error", err)
		outcome, err = metrics.OutcomeSkipped, nil
	case err != nil:
		p.handleFailure(ctx, log, cycleID, err)
		outcome = metrics.OutcomeFailed
	default:
		p.state.ErrorFlag = false
	}

	p.finish(cycleID, outcome, err)
	return outcome, err
}

// State returns the loop state. It must be called from the loop's goroutine;
// other goroutines use Snapshot.
func (p *Poller) State() State {
	return p.state
}

// Snapshot returns the state published after the last cycle.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// ══════════════════════════════════════════════════════════════════════════════
// CYCLE STEPS
// ══════════════════════════════════════════════════════════════════════════════

func (p *Poller) deliverStatus(ctx context.Context, log *slog.Logger, cycleID string) (string, error) {
	payload, err := p.source.FetchSubmissions(ctx, p.state.Since)
	if err != nil {
		return "", err
	}

	resp, err := homework.ExtractResponse(payload)
	if err != nil {
		return "", err
	}
	log.Debug("submissions received", "count", len(resp.Submissions), "current_date", resp.CurrentDate)

	message, err := homework.MessageFor(resp.Submissions)
	if err != nil {
		return "", err
	}

	if message == p.state.LastMessage {
		log.Debug("status unchanged, nothing to send")
		return metrics.OutcomeUnchanged, nil
	}

	if err := p.notifier.Notify(ctx, message); err != nil {
		return "", err
	}
	p.state.LastMessage = message

	entry := notification.NewEntry(cycleID, notification.KindNoUpdates, message, p.now())
	if len(resp.Submissions) > 0 {
		entry.Kind = notification.KindStatus
		entry.HomeworkName = resp.Submissions[0].Name
		entry.Status = resp.Submissions[0].Status.String()
	}
	p.delivered(ctx, log, entry)

	return metrics.OutcomeDelivered, nil
}

func (p *Poller) handleFailure(ctx context.Context, log *slog.Logger, cycleID string, cause error) {
	kind := homework.KindOf(cause)
	log.Error("cycle failed", "kind", kind, "error", cause, "since", p.state.Since)

	if p.state.ErrorFlag {
		log.Info("error notification suppressed, streak already reported")
		p.metrics.ErrorObserved(kind, true)
		return
	}
	p.metrics.ErrorObserved(kind, false)

	if err := p.notifier.Notify(ctx, homework.GenericErrorMessage); err != nil {
		log.Error("error notification not delivered", "error", err)
		return
	}
	p.state.ErrorFlag = true

	p.delivered(ctx, log, notification.NewEntry(cycleID, notification.KindError, homework.GenericErrorMessage, p.now()))
}

func (p *Poller) delivered(ctx context.Context, log *slog.Logger, entry notification.Entry) {
	log.Info("notification sent", "kind", entry.Kind, "text", entry.Text)
	p.metrics.NotificationSent(entry.Kind.String())

	if p.journal == nil {
		return
	}
	if err := p.journal.Record(ctx, entry); err != nil {
		log.Warn("journal record failed", "error", err)
	}
}

func (p *Poller) finish(cycleID, outcome string, err error) {
	p.metrics.CycleFinished(outcome)
	p.publish(func(s *Snapshot) {
		s.State = p.state
		s.Cycles++
		s.LastCycleID = cycleID
		at := p.now().UTC()
		s.LastCycleAt = &at
		s.LastOutcome = outcome
		s.LastError = ""
		if err != nil {
			s.Failures++
			s.LastError = err.Error()
		}
	})
}

func (p *Poller) publish(update func(s *Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	update(&p.snapshot)
}

func (p *Poller) releaseLease() {
	if p.lease == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.lease.Release(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("lease release failed", "error", err)
	}
}
