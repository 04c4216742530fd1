package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketShared        EventType = "ticket_shared"
	EventTicketCommented     EventType = "ticket_commented"
)

// Actor encapsulates actor metadata for an event. A nil UserID means the
// system itself acted (the escalation scheduler).
type Actor struct {
	UserID *string `json:"user_id,omitempty"`
	System bool    `json:"system,omitempty"`
}

// Event represents a domain event emitted by services and the escalation
// worker.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	DepartmentID string                `json:"department_id"`
	AssigneeID   *string               `json:"assignee_id,omitempty"`
	Priority     domain.TicketPriority `json:"priority"`
	Title        string                `json:"title"`
	Triaged      bool                  `json:"triaged,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	CreatorID string              `json:"creator_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID   *string `json:"assignee_id,omitempty"`
	DepartmentID string  `json:"department_id"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	AssigneeID      *string `json:"assignee_id,omitempty"`
	DepartmentID    string  `json:"department_id"`
	EscalationCount int     `json:"escalation_count"`
}

// TicketCommentedPayload payload. Preview carries the comment's leading
// characters for notification titles.
type TicketCommentedPayload struct {
	CommentID    string  `json:"comment_id"`
	AuthorName   string  `json:"author_name"`
	Preview      string  `json:"preview"`
	AssigneeID   *string `json:"assignee_id,omitempty"`
	DepartmentID string  `json:"department_id"`
}

// TicketSharedPayload payload.
type TicketSharedPayload struct {
	UserIDs       []string `json:"user_ids,omitempty"`
	DepartmentIDs []string `json:"department_ids,omitempty"`
}
