package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestSettingsGetDefaultsWhenMissing(t *testing.T) {
	svc := NewSettingsService(&memConfigRepo{})

	cfg, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.WorkflowEnabled || cfg.EscalationEnabled {
		t.Fatal("missing row must behave as all features off")
	}
	if cfg.TimeoutCritical != domain.DefaultTimeoutCritical || cfg.TimeoutLow != domain.DefaultTimeoutLow {
		t.Fatalf("timeouts = %d/%d, want defaults", cfg.TimeoutCritical, cfg.TimeoutLow)
	}
}

func TestSettingsUpdateRequiresEscalationTarget(t *testing.T) {
	svc := NewSettingsService(&memConfigRepo{})

	_, err := svc.Update(context.Background(), &domain.GeneralConfig{
		WorkflowEnabled:   true,
		EscalationEnabled: true,
	})
	if code := apperrors.ToDomainError(err).Code; code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}
}

func TestSettingsUpdateNormalizesTimeouts(t *testing.T) {
	svc := NewSettingsService(&memConfigRepo{})

	cfg, err := svc.Update(context.Background(), &domain.GeneralConfig{
		WorkflowEnabled:        true,
		EscalationEnabled:      true,
		EscalationTargetUserID: strptr("target"),
		TimeoutCritical:        -5,
		TimeoutHigh:            0,
		TimeoutMedium:          30,
		TimeoutLow:             0,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cfg.TimeoutCritical != domain.DefaultTimeoutCritical {
		t.Fatalf("critical = %d, want default", cfg.TimeoutCritical)
	}
	if cfg.TimeoutHigh != domain.DefaultTimeoutHigh {
		t.Fatalf("high = %d, want default", cfg.TimeoutHigh)
	}
	if cfg.TimeoutMedium != 30 {
		t.Fatalf("medium = %d, want 30 preserved", cfg.TimeoutMedium)
	}
}

func TestSettingsUpdateKeepsSingletonID(t *testing.T) {
	repo := &memConfigRepo{cfg: &domain.GeneralConfig{ID: "cfg-1"}}
	svc := NewSettingsService(repo)

	cfg, err := svc.Update(context.Background(), &domain.GeneralConfig{
		WorkflowEnabled: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cfg.ID != "cfg-1" {
		t.Fatalf("id = %q, want the existing row's id", cfg.ID)
	}
}
