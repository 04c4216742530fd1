package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// NotificationService persists in-app notifications for domain events and
// for the escalation worker. It satisfies the worker's NotificationSink,
// so a failed notification is logged by the caller and never blocks a
// ticket mutation.
type NotificationService struct {
	store      repository.NotificationRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(store repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Notify stores a notification row and logs the email-delivery stub.
// Called synchronously so tests can assert a notification was requested.
func (n *NotificationService) Notify(ctx context.Context, notification domain.Notification) error {
	if err := n.store.Create(ctx, &notification); err != nil {
		return err
	}
	n.logger.Debug("notification stored",
		zap.String("ticket_id", notification.TicketID),
		zap.String("kind", string(notification.Kind)))
	n.sendEmailStub(notification)
	return nil
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketShared, n.handleTicketShared)
	n.dispatcher.Subscribe(events.EventTicketCommented, n.handleTicketCommented)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	notification := domain.Notification{
		TicketID: event.TicketID,
		Kind:     domain.NotificationTicketCreated,
		Title:    "New ticket: " + payload.Title,
		Message:  "A new ticket was filed in your department.",
	}
	if payload.AssigneeID != nil {
		notification.Kind = domain.NotificationTicketAssigned
		notification.RecipientUserID = payload.AssigneeID
		notification.Message = "A new ticket was assigned to you."
	} else {
		notification.RecipientDepartmentID = &payload.DepartmentID
	}
	return n.Notify(ctx, notification)
}

// handleTicketStatusChanged notifies the creator about lifecycle changes
// to their ticket, unless the creator made the change themselves.
func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	if event.Actor.UserID != nil && *event.Actor.UserID == payload.CreatorID {
		return nil
	}
	creatorID := payload.CreatorID
	return n.Notify(ctx, domain.Notification{
		TicketID:        event.TicketID,
		RecipientUserID: &creatorID,
		Kind:            domain.NotificationTicketUpdated,
		Title:           "Ticket status changed",
		Message:         "Your ticket moved from " + string(payload.OldStatus) + " to " + string(payload.NewStatus) + ".",
	})
}

// handleTicketCommented notifies the assignee, or the ticket's department
// when unassigned. The commenter never notifies themselves.
func (n *NotificationService) handleTicketCommented(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentedPayload)
	if !ok {
		return nil
	}
	notification := domain.Notification{
		TicketID: event.TicketID,
		Kind:     domain.NotificationTicketCommented,
		Title:    "New comment: " + payload.Preview,
		Message:  payload.AuthorName + " commented on the ticket.",
	}
	if payload.AssigneeID != nil {
		if event.Actor.UserID != nil && *event.Actor.UserID == *payload.AssigneeID {
			return nil
		}
		notification.RecipientUserID = payload.AssigneeID
	} else {
		deptID := payload.DepartmentID
		notification.RecipientDepartmentID = &deptID
	}
	return n.Notify(ctx, notification)
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok || payload.AssigneeID == nil {
		return nil
	}
	return n.Notify(ctx, domain.Notification{
		TicketID:        event.TicketID,
		RecipientUserID: payload.AssigneeID,
		Kind:            domain.NotificationTicketAssigned,
		Title:           "Ticket assigned",
		Message:         "A ticket was assigned to you.",
	})
}

func (n *NotificationService) handleTicketShared(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketSharedPayload)
	if !ok {
		return nil
	}
	for i := range payload.UserIDs {
		userID := payload.UserIDs[i]
		if err := n.Notify(ctx, domain.Notification{
			TicketID:        event.TicketID,
			RecipientUserID: &userID,
			Kind:            domain.NotificationTicketShared,
			Title:           "Ticket shared with you",
			Message:         "A ticket was shared with you.",
		}); err != nil {
			n.logger.Error("share notification failed", zap.Error(err))
		}
	}
	for i := range payload.DepartmentIDs {
		deptID := payload.DepartmentIDs[i]
		if err := n.Notify(ctx, domain.Notification{
			TicketID:              event.TicketID,
			RecipientDepartmentID: &deptID,
			Kind:                  domain.NotificationTicketShared,
			Title:                 "Ticket shared with your department",
			Message:               "A ticket was shared with your department.",
		}); err != nil {
			n.logger.Error("share notification failed", zap.Error(err))
		}
	}
	return nil
}

// sendEmailStub logs where SMTP delivery would happen; mail transport is
// an external collaborator.
func (n *NotificationService) sendEmailStub(notification domain.Notification) {
	n.logger.Debug("email delivery stub",
		zap.String("ticket_id", notification.TicketID),
		zap.String("kind", string(notification.Kind)))
}
