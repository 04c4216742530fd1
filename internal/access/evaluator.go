package access

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Rule identifies which access rule decided an evaluation. Exposing the
// deciding rule keeps denials explainable and lets tests pin the precedence
// order instead of just the outcome.
type Rule string

const (
	RuleSystemAdmin       Rule = "system_admin"
	RuleCreator           Rule = "creator"
	RuleAssignee          Rule = "assignee"
	RulePrivate           Rule = "private"
	RulePersonal          Rule = "personal"
	RuleDepartmentManager Rule = "department_manager"
	RuleDepartmentMember  Rule = "department_member"
	RuleDepartmentAdmin   Rule = "department_admin"
	RuleUnshareable       Rule = "private_unshareable"
	RuleNoGrant           Rule = "no_grant"
)

// Decision is the outcome of an access evaluation together with the rule
// that produced it.
type Decision struct {
	Allow bool
	Rule  Rule
}

func allow(r Rule) Decision { return Decision{Allow: true, Rule: r} }
func deny(r Rule) Decision  { return Decision{Allow: false, Rule: r} }

// CanView decides read access for a (user, ticket) pair. Rules are applied
// in strict precedence order; the first match decides. The department
// snapshot must be the ticket's department; callers fetch a consistent
// snapshot before evaluating, the function itself never touches a store.
//
// Privacy is checked before the personal-assignment and department grants
// so a private ticket never leaks past the three named parties, and the
// manager grant is checked before plain membership because it is broader:
// managers see personal tickets, members only general ones.
func CanView(user *domain.User, ticket *domain.Ticket, dept *domain.Department) Decision {
	if user.IsSystemAdmin() {
		return allow(RuleSystemAdmin)
	}
	if ticket.CreatorID == user.ID {
		return allow(RuleCreator)
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID == user.ID {
		return allow(RuleAssignee)
	}
	if restricted(ticket) {
		return deny(RulePrivate)
	}
	if ticket.IsPersonal() {
		if dept != nil && dept.IsManagedBy(user.ID) {
			return allow(RuleDepartmentManager)
		}
		return deny(RulePersonal)
	}
	if dept != nil && dept.IsManagedBy(user.ID) {
		return allow(RuleDepartmentManager)
	}
	if user.DepartmentID != nil && *user.DepartmentID == ticket.DepartmentID {
		return allow(RuleDepartmentMember)
	}
	return deny(RuleNoGrant)
}

// CanEdit decides write access. Independent of the view rules: a
// department member who can view a general ticket cannot necessarily edit
// it.
func CanEdit(user *domain.User, ticket *domain.Ticket) Decision {
	if user.IsSystemAdmin() {
		return allow(RuleSystemAdmin)
	}
	if ticket.CreatorID == user.ID {
		return allow(RuleCreator)
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID == user.ID {
		return allow(RuleAssignee)
	}
	if user.Role == domain.RoleDepartmentAdmin &&
		user.DepartmentID != nil && *user.DepartmentID == ticket.DepartmentID {
		return allow(RuleDepartmentAdmin)
	}
	return deny(RuleNoGrant)
}

// CanShare decides whether the user may share the ticket with additional
// users or departments. Private tickets are unshareable by anyone,
// including the creator.
func CanShare(user *domain.User, ticket *domain.Ticket) Decision {
	if restricted(ticket) {
		return deny(RuleUnshareable)
	}
	if user.IsSystemAdmin() {
		return allow(RuleSystemAdmin)
	}
	if ticket.CreatorID == user.ID {
		return allow(RuleCreator)
	}
	return deny(RuleNoGrant)
}

// restricted reports whether the ticket is limited to the named parties.
// The legacy IsPrivate flag and the PRIVATE/ADMIN_ONLY visibility levels
// restrict identically for evaluation purposes.
func restricted(t *domain.Ticket) bool {
	return t.IsPrivate || t.Visibility == domain.VisibilityPrivate || t.Visibility == domain.VisibilityAdminOnly
}

// IsTriagePerson reports whether the user is the configured triage handler:
// either the designated triage user, or a member of the triage department.
// Only meaningful while the workflow feature is enabled.
func IsTriagePerson(user *domain.User, cfg *domain.GeneralConfig) bool {
	if cfg == nil || !cfg.WorkflowEnabled {
		return false
	}
	if cfg.TriageUserID != nil && *cfg.TriageUserID == user.ID {
		return true
	}
	if cfg.TriageDepartmentID == nil {
		return false
	}
	if user.DepartmentID != nil && *cfg.TriageDepartmentID == *user.DepartmentID {
		return true
	}
	for _, id := range user.SecondaryDepartmentIDs {
		if id == *cfg.TriageDepartmentID {
			return true
		}
	}
	return false
}
