package domain

import "time"

// NotificationKind classifies in-app notifications.
type NotificationKind string

const (
	NotificationTicketCreated   NotificationKind = "ticket_created"
	NotificationTicketUpdated   NotificationKind = "ticket_updated"
	NotificationTicketAssigned  NotificationKind = "ticket_assigned"
	NotificationTicketShared    NotificationKind = "ticket_shared"
	NotificationTicketCommented NotificationKind = "ticket_commented"
	NotificationAutoReassigned  NotificationKind = "auto_reassigned"
)

// Notification is a persisted in-app notification. Exactly one of
// RecipientUserID / RecipientDepartmentID is set; department-wide
// notifications fan out at read time.
type Notification struct {
	ID                    string
	TicketID              string
	RecipientUserID       *string
	RecipientDepartmentID *string
	Kind                  NotificationKind
	Title                 string
	Message               string
	IsRead                bool
	CreatedAt             time.Time
}
