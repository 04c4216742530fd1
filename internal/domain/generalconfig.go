package domain

import "time"

// Default escalation timeouts in minutes, keyed by priority.
const (
	DefaultTimeoutCritical = 60
	DefaultTimeoutHigh     = 240
	DefaultTimeoutMedium   = 480
	DefaultTimeoutLow      = 1440
)

// GeneralConfig is the singleton workflow/escalation configuration row.
// Zero-or-one instance exists; a missing row behaves as all features off.
type GeneralConfig struct {
	ID              string
	WorkflowEnabled bool

	// Triage routing: newly created tickets are funneled here when the
	// workflow is enabled.
	TriageUserID       *string
	TriageDepartmentID *string

	EscalationEnabled            bool
	EscalationTargetUserID       *string
	EscalationTargetDepartmentID *string

	// Per-priority escalation timeouts in minutes.
	TimeoutCritical int
	TimeoutHigh     int
	TimeoutMedium   int
	TimeoutLow      int

	UpdatedAt time.Time
}

// TimeoutFor returns the escalation timeout for a priority. Unrecognized
// priorities fall back to the medium timeout.
func (c *GeneralConfig) TimeoutFor(p TicketPriority) time.Duration {
	minutes := c.TimeoutMedium
	switch p {
	case TicketPriorityCritical:
		minutes = c.TimeoutCritical
	case TicketPriorityHigh:
		minutes = c.TimeoutHigh
	case TicketPriorityMedium:
		minutes = c.TimeoutMedium
	case TicketPriorityLow:
		minutes = c.TimeoutLow
	}
	return time.Duration(minutes) * time.Minute
}

// HasEscalationTarget reports whether at least one escalation target is
// configured.
func (c *GeneralConfig) HasEscalationTarget() bool {
	return c.EscalationTargetUserID != nil || c.EscalationTargetDepartmentID != nil
}
