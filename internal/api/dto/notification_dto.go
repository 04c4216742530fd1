package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationSummary is the wire representation of a notification.
type NotificationSummary struct {
	ID                    string                  `json:"id"`
	TicketID              string                  `json:"ticket_id"`
	RecipientUserID       *string                 `json:"recipient_user_id,omitempty"`
	RecipientDepartmentID *string                 `json:"recipient_department_id,omitempty"`
	Kind                  domain.NotificationKind `json:"kind"`
	Title                 string                  `json:"title"`
	Message               string                  `json:"message"`
	IsRead                bool                    `json:"is_read"`
	CreatedAt             time.Time               `json:"created_at"`
}

// FromNotification maps a domain notification to its wire form.
func FromNotification(n *domain.Notification) NotificationSummary {
	return NotificationSummary{
		ID:                    n.ID,
		TicketID:              n.TicketID,
		RecipientUserID:       n.RecipientUserID,
		RecipientDepartmentID: n.RecipientDepartmentID,
		Kind:                  n.Kind,
		Title:                 n.Title,
		Message:               n.Message,
		IsRead:                n.IsRead,
		CreatedAt:             n.CreatedAt,
	}
}
