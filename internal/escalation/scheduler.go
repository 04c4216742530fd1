package escalation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// Default loop timings. The initial delay keeps a freshly restarted process
// from firing a burst of notifications before the restart guard state is
// meaningful.
const (
	DefaultPollInterval = 5 * time.Minute
	DefaultInitialDelay = 2 * time.Minute
	DefaultErrorBackoff = time.Minute
)

// Options tunes the scheduler loop.
type Options struct {
	PollInterval time.Duration
	InitialDelay time.Duration
	ErrorBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.InitialDelay < 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.ErrorBackoff <= 0 {
		o.ErrorBackoff = DefaultErrorBackoff
	}
	return o
}

// Dependencies bundles the collaborators the scheduler consumes.
type Dependencies struct {
	Tickets  TicketStore
	Config   ConfigStore
	Notifier NotificationSink
	// Events receives a ticket_escalated event after each committed
	// reassignment. Optional, like the notifier.
	Events  events.Dispatcher
	Clock   Clock
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

/// Scheduler is the auto-escalation loop: it periodically scans open
// tickets, applies the guard chain, and reassigns tickets whose handling
// has exceeded their priority's timeout to the configured escalation
// target.
type Scheduler struct {
	tickets  TicketStore
	config   ConfigStore
	notifier NotificationSink
	events   events.Dispatcher
	clock    Clock
	logger   *zap.Logger
	metrics  *observability.Metrics
	opts     Options
	guards   []guard

	// startedAt is recorded once at construction and feeds the restart
	// guard for this process lifetime.
	startedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a scheduler. The clock defaults to the system clock.
func New(deps Dependencies, opts Options) *Scheduler {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tickets:   deps.Tickets,
		config:    deps.Config,
		notifier:  deps.Notifier,
		events:    deps.Events,
		clock:     clock,
		logger:    logger,
		metrics:   deps.Metrics,
		opts:      opts.withDefaults(),
		guards:    escalationGuards(),
		startedAt: clock.Now(),
	}
}

// Start launches the loop goroutine. The loop runs until the given context
// is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.logger.Info("escalation scheduler started",
		zap.Duration("poll_interval", s.opts.PollInterval),
		zap.Duration("initial_delay", s.opts.InitialDelay))
	go s.run(ctx)
}

// Stop cancels the loop and waits for the in-flight cycle to finish. Safe
// to call even mid-cycle: every reassignment commits per ticket, so there
// is no partial multi-ticket state to lose.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("escalation scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	wait := s.opts.InitialDelay
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := s.runCycle(ctx); err != nil {
			// The loop must never terminate on a transient error; back off
			// briefly and retry.
			s.logger.Error("escalation cycle failed", zap.Error(err))
			wait = s.opts.ErrorBackoff
			continue
		}
		wait = s.opts.PollInterval
	}
}

// runCycle executes one poll cycle. A disabled or incomplete configuration
// is a soft no-op, not an error.
func (s *Scheduler) runCycle(ctx context.Context) error {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return fmt.Errorf("load escalation config: %w", err)
	}
	if s.metrics != nil {
		s.metrics.EscalationCycles.Inc()
	}
	if cfg == nil || !cfg.WorkflowEnabled || !cfg.EscalationEnabled {
		s.logger.Debug("escalation disabled, skipping cycle")
		return nil
	}
	if !cfg.HasEscalationTarget() {
		s.logger.Warn("escalation enabled but no target user or department configured")
		return nil
	}

	tickets, err := s.tickets.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("list open tickets: %w", err)
	}

	now := s.clock.Now()
	for i := range tickets {
		ticket := &tickets[i]
		escalated, err := s.processTicket(ctx, ticket, cfg, now)
		if err != nil {
			// One bad ticket must not abort the rest of the cycle.
			if s.metrics != nil {
				s.metrics.EscalationErrors.Inc()
			}
			s.logger.Error("escalation failed for ticket",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if escalated {
			s.logger.Info("ticket auto-reassigned after timeout",
				zap.String("ticket_id", ticket.ID),
				zap.String("priority", string(ticket.Priority)),
				zap.Int("escalation_count", ticket.EscalationCount))
		}
	}
	return nil
}

// processTicket runs the guard chain and, when every guard passes,
// reassigns the ticket to the escalation target and records the
// bookkeeping fields. The notification is emitted only after the
// reassignment committed, and its failure is logged rather than returned.
func (s *Scheduler) processTicket(ctx context.Context, ticket *domain.Ticket, cfg *domain.GeneralConfig, now time.Time) (bool, error) {
	in := guardInput{
		Ticket:    ticket,
		Config:    cfg,
		Timeout:   cfg.TimeoutFor(ticket.Priority),
		Now:       now,
		StartedAt: s.startedAt,
	}
	for _, g := range s.guards {
		if skip, reason := g.Skip(in); skip {
			if s.metrics != nil {
				s.metrics.EscalationSkips.WithLabelValues(g.Name).Inc()
			}
			s.logger.Debug("escalation skipped",
				zap.String("ticket_id", ticket.ID),
				zap.String("guard", g.Name),
				zap.String("reason", reason))
			return false, nil
		}
	}

	if cfg.EscalationTargetUserID != nil {
		ticket.AssigneeID = cfg.EscalationTargetUserID
	} else {
		ticket.DepartmentID = *cfg.EscalationTargetDepartmentID
		ticket.AssigneeID = nil
	}
	ticket.LastEscalationAt = &now
	ticket.EscalationCount++

	if err := s.tickets.ApplyEscalation(ctx, ticket); err != nil {
		return false, err
	}
	if s.metrics != nil {
		s.metrics.TicketsEscalated.Inc()
	}

	s.publishEscalated(ctx, ticket, now)
	s.notify(ctx, ticket, cfg)
	return true, nil
}

// publishEscalated emits the domain event for subscribers (audit, metrics
// consumers). Delivery failures never undo the committed reassignment.
func (s *Scheduler) publishEscalated(ctx context.Context, ticket *domain.Ticket, now time.Time) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketEscalated,
		TicketID:  ticket.ID,
		Actor:     events.Actor{System: true},
		Timestamp: now,
		Payload: events.TicketEscalatedPayload{
			AssigneeID:      ticket.AssigneeID,
			DepartmentID:    ticket.DepartmentID,
			EscalationCount: ticket.EscalationCount,
		},
	})
	if err != nil {
		s.logger.Error("escalated event publish failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (s *Scheduler) notify(ctx context.Context, ticket *domain.Ticket, cfg *domain.GeneralConfig) {
	if s.notifier == nil {
		return
	}
	n := domain.Notification{
		TicketID: ticket.ID,
		Kind:     domain.NotificationAutoReassigned,
		Title:    "Auto-reassigned: " + ticket.Title,
	}
	if cfg.EscalationTargetUserID != nil {
		n.RecipientUserID = cfg.EscalationTargetUserID
		n.Message = "This ticket was automatically assigned to you because its handling timed out."
	} else {
		n.RecipientDepartmentID = cfg.EscalationTargetDepartmentID
		n.Message = "This ticket was automatically routed to your department because its handling timed out."
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("escalation notification failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}
