package escalation

import (
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// MaxEscalationCount is the fixed ceiling on automatic reassignments per
// ticket; it prevents unbounded re-escalation loops.
const MaxEscalationCount = 3

// backlogWindow bounds how old a never-escalated ticket may be before it is
// considered stale backlog. Without it, flipping the escalation feature on
// would instantly flood the target with every aged open ticket.
const backlogWindow = 24 * time.Hour

// guardInput carries the precomputed values each guard evaluates against.
type guardInput struct {
	Ticket    *domain.Ticket
	Config    *domain.GeneralConfig
	Timeout   time.Duration
	Now       time.Time
	StartedAt time.Time
}

// guard is a single skip predicate. Skip returns a human-readable reason
// when the ticket must be left alone this cycle; the zero reason means the
// guard passed.
type guard struct {
	Name string
	Skip func(in guardInput) (bool, string)
}

// escalationGuards returns the guard chain in evaluation order. Each guard
// is independent; the scheduler short-circuits on the first skip.
func escalationGuards() []guard {
	return []guard{
		{Name: "already_at_target", Skip: skipAlreadyAtTarget},
		{Name: "max_escalations", Skip: skipMaxEscalations},
		{Name: "backlog", Skip: skipBacklog},
		{Name: "restart", Skip: skipRestart},
		{Name: "timeout_not_elapsed", Skip: skipTimeoutNotElapsed},
		{Name: "cooldown", Skip: skipCooldown},
	}
}

// skipAlreadyAtTarget keeps the cycle idempotent: a ticket already sitting
// at the escalation target is never re-escalated.
func skipAlreadyAtTarget(in guardInput) (bool, string) {
	cfg, t := in.Config, in.Ticket
	if cfg.EscalationTargetUserID != nil &&
		t.AssigneeID != nil && *t.AssigneeID == *cfg.EscalationTargetUserID {
		return true, "assignee is already the escalation target"
	}
	if cfg.EscalationTargetDepartmentID != nil && cfg.EscalationTargetUserID == nil &&
		t.DepartmentID == *cfg.EscalationTargetDepartmentID && t.AssigneeID == nil {
		return true, "ticket already sits unassigned in the escalation department"
	}
	return false, ""
}

func skipMaxEscalations(in guardInput) (bool, string) {
	if in.Ticket.EscalationCount >= MaxEscalationCount {
		return true, fmt.Sprintf("escalation ceiling reached (%d)", in.Ticket.EscalationCount)
	}
	return false, ""
}

// skipBacklog leaves never-escalated tickets older than the backlog window
// alone. Measured against created_at only, matching the observed behavior
// of the system this replaces.
func skipBacklog(in guardInput) (bool, string) {
	t := in.Ticket
	if t.LastEscalationAt == nil && in.Now.Sub(t.CreatedAt) > backlogWindow {
		return true, "stale backlog ticket, never escalated"
	}
	return false, ""
}

// skipRestart suppresses re-firing after a process restart: if the last
// escalation and its timeout deadline both predate this scheduler
// instance's start, the notification was already sent in a prior process
// lifetime.
func skipRestart(in guardInput) (bool, string) {
	t := in.Ticket
	if t.LastEscalationAt == nil {
		return false, ""
	}
	if t.LastEscalationAt.Before(in.StartedAt) &&
		t.LastEscalationAt.Add(in.Timeout).Before(in.StartedAt) {
		return true, "escalation deadline expired before this instance started"
	}
	return false, ""
}

func skipTimeoutNotElapsed(in guardInput) (bool, string) {
	t := in.Ticket
	base := t.CreatedAt
	if t.LastEscalationAt != nil {
		base = *t.LastEscalationAt
	}
	if elapsed := in.Now.Sub(base); elapsed <= in.Timeout {
		return true, fmt.Sprintf("timeout not elapsed (%s of %s)", elapsed, in.Timeout)
	}
	return false, ""
}

// skipCooldown prevents a second escalation within the same timeout window
// when poll cycles overlap the deadline.
func skipCooldown(in guardInput) (bool, string) {
	t := in.Ticket
	if t.LastEscalationAt != nil && in.Now.Sub(*t.LastEscalationAt) < in.Timeout {
		return true, "previous escalation within the current timeout window"
	}
	return false, ""
}
