package access

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Rules produced by the status gate.
const (
	RuleClosedLocked Rule = "closed_locked"
	RuleOpenLocked   Rule = "open_locked"
	RuleStatusOK     Rule = "status_ok"
)

// TicketChange describes the fields a caller wants to modify. Nil fields
// are untouched.
type TicketChange struct {
	Title        *string
	Description  *string
	Status       *domain.TicketStatus
	Priority     *domain.TicketPriority
	Visibility   *domain.TicketVisibility
	DepartmentID *string
	AssigneeID   *string
}

// StatusOnly reports whether the change touches nothing but the status
// field.
func (c TicketChange) StatusOnly() bool {
	return c.Status != nil &&
		c.Title == nil &&
		c.Description == nil &&
		c.Priority == nil &&
		c.Visibility == nil &&
		c.DepartmentID == nil &&
		c.AssigneeID == nil
}

// CheckUpdate applies the status-gated edit restrictions, evaluated after
// the CanEdit grant:
//
//   - a CLOSED ticket accepts no change at all (reopening included) except
//     by a system admin;
//   - an OPEN ticket accepts only a pure status transition until it is
//     moved to IN_PROGRESS, unless the actor is a system admin or the
//     configured triage person.
func CheckUpdate(user *domain.User, ticket *domain.Ticket, change TicketChange, isTriage bool) Decision {
	if ticket.Status == domain.TicketStatusClosed && !user.IsSystemAdmin() {
		return deny(RuleClosedLocked)
	}
	if ticket.Status == domain.TicketStatusOpen && !user.IsSystemAdmin() && !isTriage {
		if !change.StatusOnly() {
			return deny(RuleOpenLocked)
		}
	}
	return allow(RuleStatusOK)
}
