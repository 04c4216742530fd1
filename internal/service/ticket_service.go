package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/access"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows. Every read and write runs
// through the access evaluator first; the store itself has no row-level
// security.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	config      repository.ConfigRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
	ConfigRepo     repository.ConfigRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	DepartmentID string
	Title        string
	Description  string
	Priority     domain.TicketPriority
	Visibility   domain.TicketVisibility
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
		config:      deps.ConfigRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket files a new ticket. When the workflow feature is enabled
// the ticket is routed to the configured triage user or department before
// normal department assignment.
func (s *TicketService) CreateTicket(ctx context.Context, creator *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if _, err := s.departments.GetByID(ctx, input.DepartmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": input.DepartmentID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusOpen,
		Priority:     input.Priority,
		CreatorID:    creator.ID,
		DepartmentID: input.DepartmentID,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	visibility := input.Visibility
	if visibility == "" {
		visibility = domain.VisibilityDepartment
	}
	ticket.SetVisibility(visibility)

	triaged, err := s.applyTriageRouting(ctx, ticket)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: &creator.ID},
		Payload: events.TicketCreatedPayload{
			DepartmentID: ticket.DepartmentID,
			AssigneeID:   ticket.AssigneeID,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
			Triaged:      triaged,
		},
	})
	return ticket, nil
}

func (s *TicketService) applyTriageRouting(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return false, err
	}
	if cfg == nil || !cfg.WorkflowEnabled {
		return false, nil
	}
	switch {
	case cfg.TriageUserID != nil:
		ticket.AssigneeID = cfg.TriageUserID
		return true, nil
	case cfg.TriageDepartmentID != nil:
		ticket.DepartmentID = *cfg.TriageDepartmentID
		return true, nil
	}
	return false, nil
}

// GetTicket loads a ticket the user is allowed to view. Denials surface as
// a forbidden error, never as a silent miss.
func (s *TicketService) GetTicket(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, dept, err := s.loadTicketWithDepartment(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := access.CanView(user, ticket, dept); !d.Allow {
		return nil, apperrors.NewForbidden("you are not allowed to view this ticket")
	}
	return ticket, nil
}

// ListTickets returns the subset of matching tickets the user may view.
// The evaluator runs per row over consistent department snapshots.
func (s *TicketService) ListTickets(ctx context.Context, user *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	depts := map[string]*domain.Department{}
	visible := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		ticket := &tickets[i]
		dept, ok := depts[ticket.DepartmentID]
		if !ok {
			dept, err = s.departments.GetByID(ctx, ticket.DepartmentID)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			depts[ticket.DepartmentID] = dept
		}
		if d := access.CanView(user, ticket, dept); d.Allow {
			visible = append(visible, *ticket)
		}
	}
	return visible, nil
}

// UpdateTicket applies a guarded update: the edit grant, then the
// status-gated restrictions, then the field changes.
func (s *TicketService) UpdateTicket(ctx context.Context, user *domain.User, ticketID string, change access.TicketChange) (*domain.Ticket, error) {
	ticket, _, err := s.loadTicketWithDepartment(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	isTriage := access.IsTriagePerson(user, cfg)

	if d := access.CanEdit(user, ticket); !d.Allow && !isTriage {
		return nil, apperrors.NewForbidden("you are not allowed to update this ticket")
	}
	if d := access.CheckUpdate(user, ticket, change, isTriage); !d.Allow {
		switch d.Rule {
		case access.RuleClosedLocked:
			return nil, apperrors.NewForbidden("ticket is closed; only a system administrator can change it")
		default:
			return nil, apperrors.NewForbidden("ticket is still open; move it to in-progress before editing")
		}
	}

	oldStatus := ticket.Status
	oldAssignee := ticket.AssigneeID

	if change.Title != nil {
		ticket.Title = strings.TrimSpace(*change.Title)
	}
	if change.Description != nil {
		ticket.Description = strings.TrimSpace(*change.Description)
	}
	if change.Priority != nil {
		ticket.Priority = *change.Priority
	}
	if change.Visibility != nil {
		ticket.SetVisibility(*change.Visibility)
	}
	if change.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *change.DepartmentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("department", map[string]any{"department_id": *change.DepartmentID})
			}
			return nil, apperrors.MapError(err)
		}
		ticket.DepartmentID = *change.DepartmentID
	}
	if change.AssigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *change.AssigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"user_id": *change.AssigneeID})
			}
			return nil, apperrors.MapError(err)
		}
		if !assignee.Active {
			return nil, apperrors.NewConflict("assignee inactive", map[string]any{"user_id": assignee.ID})
		}
		ticket.AssigneeID = &assignee.ID
	}
	if change.Status != nil {
		ticket.Status = *change.Status
		if ticket.Status == domain.TicketStatusClosed {
			now := time.Now()
			ticket.ClosedAt = &now
		} else {
			ticket.ClosedAt = nil
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if change.Status != nil && oldStatus != ticket.Status {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    events.Actor{UserID: &user.ID},
			Payload: events.TicketStatusChangedPayload{
				CreatorID: ticket.CreatorID,
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if change.AssigneeID != nil && !sameAssignee(oldAssignee, ticket.AssigneeID) {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Actor:    events.Actor{UserID: &user.ID},
			Payload: events.TicketAssignedPayload{
				AssigneeID:   ticket.AssigneeID,
				DepartmentID: ticket.DepartmentID,
			},
		})
	}
	return ticket, nil
}

// ShareTicket shares a non-private ticket with additional users or
// departments. Private tickets are unshareable for everyone, including the
// creator.
func (s *TicketService) ShareTicket(ctx context.Context, user *domain.User, ticketID string, userIDs, departmentIDs []string) error {
	ticket, _, err := s.loadTicketWithDepartment(ctx, ticketID)
	if err != nil {
		return err
	}
	if d := access.CanShare(user, ticket); !d.Allow {
		if d.Rule == access.RuleUnshareable {
			return apperrors.NewForbidden("private tickets cannot be shared")
		}
		return apperrors.NewForbidden("you are not allowed to share this ticket")
	}

	if len(userIDs) > 0 {
		if err := s.tickets.ShareWithUsers(ctx, ticket.ID, userIDs); err != nil {
			return apperrors.MapError(err)
		}
	}
	if len(departmentIDs) > 0 {
		if err := s.tickets.ShareWithDepartments(ctx, ticket.ID, departmentIDs); err != nil {
			return apperrors.MapError(err)
		}
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketShared,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: &user.ID},
		Payload: events.TicketSharedPayload{
			UserIDs:       userIDs,
			DepartmentIDs: departmentIDs,
		},
	})
	return nil
}

// AddComment appends a comment to the ticket's thread. The thread inherits
// the ticket's visibility, so the gate is the view grant, not the edit
// grant: anyone who can read the ticket may join the discussion.
func (s *TicketService) AddComment(ctx context.Context, user *domain.User, ticketID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body required", nil)
	}

	ticket, dept, err := s.loadTicketWithDepartment(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := access.CanView(user, ticket, dept); !d.Allow {
		return nil, apperrors.NewForbidden("you are not allowed to comment on this ticket")
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: user.ID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommented,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: &user.ID},
		Payload: events.TicketCommentedPayload{
			CommentID:    comment.ID,
			AuthorName:   authorDisplayName(user),
			Preview:      commentPreview(body),
			AssigneeID:   ticket.AssigneeID,
			DepartmentID: ticket.DepartmentID,
		},
	})
	return comment, nil
}

// ListComments returns the ticket's thread oldest-first, gated by the same
// view grant as the ticket itself.
func (s *TicketService) ListComments(ctx context.Context, user *domain.User, ticketID string) ([]domain.Comment, error) {
	ticket, dept, err := s.loadTicketWithDepartment(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := access.CanView(user, ticket, dept); !d.Allow {
		return nil, apperrors.NewForbidden("you are not allowed to view this ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

const commentPreviewLen = 30

func commentPreview(body string) string {
	runes := []rune(body)
	if len(runes) <= commentPreviewLen {
		return body
	}
	return string(runes[:commentPreviewLen]) + "..."
}

func authorDisplayName(user *domain.User) string {
	if user.FullName != "" {
		return user.FullName
	}
	return user.Username
}

func (s *TicketService) loadTicketWithDepartment(ctx context.Context, ticketID string) (*domain.Ticket, *domain.Department, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	dept, err := s.departments.GetByID(ctx, ticket.DepartmentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, dept, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
