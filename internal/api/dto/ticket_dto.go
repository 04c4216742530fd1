package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest is the payload for filing a ticket.
type CreateTicketRequest struct {
	DepartmentID string                  `json:"department_id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Priority     domain.TicketPriority   `json:"priority,omitempty"`
	Visibility   domain.TicketVisibility `json:"visibility,omitempty"`
}

// UpdateTicketRequest carries optional field changes; absent fields stay
// untouched.
type UpdateTicketRequest struct {
	Title        *string                  `json:"title,omitempty"`
	Description  *string                  `json:"description,omitempty"`
	Status       *domain.TicketStatus     `json:"status,omitempty"`
	Priority     *domain.TicketPriority   `json:"priority,omitempty"`
	Visibility   *domain.TicketVisibility `json:"visibility,omitempty"`
	DepartmentID *string                  `json:"department_id,omitempty"`
	AssigneeID   *string                  `json:"assignee_id,omitempty"`
}

// ShareTicketRequest lists share targets.
type ShareTicketRequest struct {
	UserIDs       []string `json:"user_ids,omitempty"`
	DepartmentIDs []string `json:"department_ids,omitempty"`
}

// TicketSummary is the wire representation of a ticket.
type TicketSummary struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Status           domain.TicketStatus     `json:"status"`
	Priority         domain.TicketPriority   `json:"priority"`
	Visibility       domain.TicketVisibility `json:"visibility"`
	IsPrivate        bool                    `json:"is_private"`
	CreatorID        string                  `json:"creator_id"`
	AssigneeID       *string                 `json:"assignee_id,omitempty"`
	DepartmentID     string                  `json:"department_id"`
	EscalationCount  int                     `json:"escalation_count"`
	LastEscalationAt *time.Time              `json:"last_escalation_at,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
	ClosedAt         *time.Time              `json:"closed_at,omitempty"`
}

// FromTicket maps a domain ticket to its wire form.
func FromTicket(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           t.Status,
		Priority:         t.Priority,
		Visibility:       t.Visibility,
		IsPrivate:        t.IsPrivate,
		CreatorID:        t.CreatorID,
		AssigneeID:       t.AssigneeID,
		DepartmentID:     t.DepartmentID,
		EscalationCount:  t.EscalationCount,
		LastEscalationAt: t.LastEscalationAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		ClosedAt:         t.ClosedAt,
	}
}
