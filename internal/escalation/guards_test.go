package escalation

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func strptr(s string) *string { return &s }

func escalationConfig() *domain.GeneralConfig {
	return &domain.GeneralConfig{
		WorkflowEnabled:        true,
		EscalationEnabled:      true,
		EscalationTargetUserID: strptr("target"),
		TimeoutCritical:        domain.DefaultTimeoutCritical,
		TimeoutHigh:            domain.DefaultTimeoutHigh,
		TimeoutMedium:          domain.DefaultTimeoutMedium,
		TimeoutLow:             domain.DefaultTimeoutLow,
	}
}

func openTicket(age time.Duration) *domain.Ticket {
	return &domain.Ticket{
		ID:           "t1",
		Status:       domain.TicketStatusOpen,
		Priority:     domain.TicketPriorityCritical,
		DepartmentID: "d1",
		CreatedAt:    baseTime.Add(-age),
	}
}

func input(t *domain.Ticket, cfg *domain.GeneralConfig) guardInput {
	return guardInput{
		Ticket:    t,
		Config:    cfg,
		Timeout:   cfg.TimeoutFor(t.Priority),
		Now:       baseTime,
		StartedAt: baseTime.Add(-time.Hour),
	}
}

func TestSkipAlreadyAtTarget(t *testing.T) {
	cfg := escalationConfig()

	ticket := openTicket(2 * time.Hour)
	ticket.AssigneeID = strptr("target")
	if skip, _ := skipAlreadyAtTarget(input(ticket, cfg)); !skip {
		t.Fatal("ticket assigned to the target must be skipped")
	}

	ticket.AssigneeID = strptr("someone-else")
	if skip, _ := skipAlreadyAtTarget(input(ticket, cfg)); skip {
		t.Fatal("ticket assigned elsewhere must not be skipped")
	}

	// Department target: skipped only when the ticket already sits
	// unassigned in the target department.
	deptCfg := escalationConfig()
	deptCfg.EscalationTargetUserID = nil
	deptCfg.EscalationTargetDepartmentID = strptr("d-esc")

	parked := openTicket(2 * time.Hour)
	parked.DepartmentID = "d-esc"
	if skip, _ := skipAlreadyAtTarget(input(parked, deptCfg)); !skip {
		t.Fatal("unassigned ticket in target department must be skipped")
	}
	parked.AssigneeID = strptr("agent")
	if skip, _ := skipAlreadyAtTarget(input(parked, deptCfg)); skip {
		t.Fatal("assigned ticket in target department must not be skipped")
	}
}

func TestSkipMaxEscalations(t *testing.T) {
	cfg := escalationConfig()
	ticket := openTicket(2 * time.Hour)

	ticket.EscalationCount = MaxEscalationCount - 1
	if skip, _ := skipMaxEscalations(input(ticket, cfg)); skip {
		t.Fatal("below the ceiling must not be skipped")
	}
	ticket.EscalationCount = MaxEscalationCount
	if skip, _ := skipMaxEscalations(input(ticket, cfg)); !skip {
		t.Fatal("at the ceiling must be skipped")
	}
}

func TestSkipBacklog(t *testing.T) {
	cfg := escalationConfig()

	fresh := openTicket(2 * time.Hour)
	if skip, _ := skipBacklog(input(fresh, cfg)); skip {
		t.Fatal("recent ticket must not be treated as backlog")
	}

	stale := openTicket(48 * time.Hour)
	if skip, _ := skipBacklog(input(stale, cfg)); !skip {
		t.Fatal("48h-old never-escalated ticket must be treated as backlog")
	}

	// Once escalated, age no longer matters to the backlog guard.
	escalated := openTicket(48 * time.Hour)
	last := baseTime.Add(-30 * time.Minute)
	escalated.LastEscalationAt = &last
	if skip, _ := skipBacklog(input(escalated, cfg)); skip {
		t.Fatal("previously escalated ticket must bypass the backlog guard")
	}
}

func TestSkipRestart(t *testing.T) {
	cfg := escalationConfig()
	in := input(openTicket(2*time.Hour), cfg) // StartedAt = baseTime-1h, timeout 60m

	// Last escalation and its deadline both before this instance started:
	// the previous process already handled it.
	old := in.StartedAt.Add(-2 * time.Hour)
	in.Ticket.LastEscalationAt = &old
	if skip, _ := skipRestart(in); !skip {
		t.Fatal("pre-restart escalation with expired deadline must be skipped")
	}

	// Deadline crosses into this instance's lifetime: still actionable.
	recent := in.StartedAt.Add(-30 * time.Minute)
	in.Ticket.LastEscalationAt = &recent
	if skip, _ := skipRestart(in); skip {
		t.Fatal("deadline inside this instance's lifetime must not be skipped")
	}

	in.Ticket.LastEscalationAt = nil
	if skip, _ := skipRestart(in); skip {
		t.Fatal("never-escalated ticket must bypass the restart guard")
	}
}

func TestSkipTimeoutNotElapsed(t *testing.T) {
	cfg := escalationConfig()

	young := openTicket(30 * time.Minute)
	if skip, _ := skipTimeoutNotElapsed(input(young, cfg)); !skip {
		t.Fatal("30m-old critical ticket is inside its 60m timeout")
	}

	due := openTicket(90 * time.Minute)
	if skip, _ := skipTimeoutNotElapsed(input(due, cfg)); skip {
		t.Fatal("90m-old critical ticket is past its 60m timeout")
	}

	// After an escalation the clock restarts from last_escalation_at.
	reescalated := openTicket(5 * time.Hour)
	last := baseTime.Add(-10 * time.Minute)
	reescalated.LastEscalationAt = &last
	if skip, _ := skipTimeoutNotElapsed(input(reescalated, cfg)); !skip {
		t.Fatal("recently escalated ticket must wait out a fresh timeout window")
	}
}

func TestSkipCooldown(t *testing.T) {
	cfg := escalationConfig()
	ticket := openTicket(5 * time.Hour)

	last := baseTime.Add(-10 * time.Minute)
	ticket.LastEscalationAt = &last
	if skip, _ := skipCooldown(input(ticket, cfg)); !skip {
		t.Fatal("escalation 10m ago is inside the 60m cooldown")
	}

	older := baseTime.Add(-2 * time.Hour)
	ticket.LastEscalationAt = &older
	if skip, _ := skipCooldown(input(ticket, cfg)); skip {
		t.Fatal("escalation 2h ago is past the 60m cooldown")
	}
}

func TestGuardOrder(t *testing.T) {
	names := make([]string, 0, 6)
	for _, g := range escalationGuards() {
		names = append(names, g.Name)
	}
	want := []string{"already_at_target", "max_escalations", "backlog", "restart", "timeout_not_elapsed", "cooldown"}
	if len(names) != len(want) {
		t.Fatalf("guard chain length = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("guard[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}
