package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketVisibility controls who may see a ticket beyond the named parties
// (creator, assignee, system admin).
type TicketVisibility string

const (
	VisibilityPublic     TicketVisibility = "PUBLIC"
	VisibilityDepartment TicketVisibility = "DEPARTMENT"
	VisibilityPrivate    TicketVisibility = "PRIVATE"
	VisibilityAdminOnly  TicketVisibility = "ADMIN_ONLY"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Visibility  TicketVisibility
	// IsPrivate mirrors Visibility == PRIVATE for older consumers of the
	// schema. SetVisibility keeps both in sync.
	IsPrivate        bool
	CreatorID        string
	AssigneeID       *string
	DepartmentID     string
	LastEscalationAt *time.Time
	EscalationCount  int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ClosedAt         *time.Time
}

// SetVisibility updates the visibility level and the legacy private flag
// together.
func (t *Ticket) SetVisibility(v TicketVisibility) {
	t.Visibility = v
	t.IsPrivate = v == VisibilityPrivate
}

// IsPersonal reports whether the ticket is assigned to a specific user,
// which narrows its visibility away from general department membership.
func (t *Ticket) IsPersonal() bool {
	return t.AssigneeID != nil
}
