package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// GeneralConfigPayload is the wire form of the singleton workflow
// configuration, used for both reads and updates.
type GeneralConfigPayload struct {
	WorkflowEnabled              bool       `json:"workflow_enabled"`
	TriageUserID                 *string    `json:"triage_user_id,omitempty"`
	TriageDepartmentID           *string    `json:"triage_department_id,omitempty"`
	EscalationEnabled            bool       `json:"escalation_enabled"`
	EscalationTargetUserID       *string    `json:"escalation_target_user_id,omitempty"`
	EscalationTargetDepartmentID *string    `json:"escalation_target_department_id,omitempty"`
	TimeoutCritical              int        `json:"timeout_critical"`
	TimeoutHigh                  int        `json:"timeout_high"`
	TimeoutMedium                int        `json:"timeout_medium"`
	TimeoutLow                   int        `json:"timeout_low"`
	UpdatedAt                    *time.Time `json:"updated_at,omitempty"`
}

// FromGeneralConfig maps the domain config to its wire form.
func FromGeneralConfig(cfg *domain.GeneralConfig) GeneralConfigPayload {
	payload := GeneralConfigPayload{
		WorkflowEnabled:              cfg.WorkflowEnabled,
		TriageUserID:                 cfg.TriageUserID,
		TriageDepartmentID:           cfg.TriageDepartmentID,
		EscalationEnabled:            cfg.EscalationEnabled,
		EscalationTargetUserID:       cfg.EscalationTargetUserID,
		EscalationTargetDepartmentID: cfg.EscalationTargetDepartmentID,
		TimeoutCritical:              cfg.TimeoutCritical,
		TimeoutHigh:                  cfg.TimeoutHigh,
		TimeoutMedium:                cfg.TimeoutMedium,
		TimeoutLow:                   cfg.TimeoutLow,
	}
	if !cfg.UpdatedAt.IsZero() {
		payload.UpdatedAt = &cfg.UpdatedAt
	}
	return payload
}

// ToGeneralConfig maps the wire form back to the domain config.
func (p GeneralConfigPayload) ToGeneralConfig() *domain.GeneralConfig {
	return &domain.GeneralConfig{
		WorkflowEnabled:              p.WorkflowEnabled,
		TriageUserID:                 p.TriageUserID,
		TriageDepartmentID:           p.TriageDepartmentID,
		EscalationEnabled:            p.EscalationEnabled,
		EscalationTargetUserID:       p.EscalationTargetUserID,
		EscalationTargetDepartmentID: p.EscalationTargetDepartmentID,
		TimeoutCritical:              p.TimeoutCritical,
		TimeoutHigh:                  p.TimeoutHigh,
		TimeoutMedium:                p.TimeoutMedium,
		TimeoutLow:                   p.TimeoutLow,
	}
}
