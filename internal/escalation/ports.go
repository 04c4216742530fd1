package escalation

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketStore is the slice of ticket persistence the scheduler needs.
// ApplyEscalation must commit per ticket: a failure on one ticket must not
// abort processing of the others.
type TicketStore interface {
	ListOpen(ctx context.Context) ([]domain.Ticket, error)
	ApplyEscalation(ctx context.Context, ticket *domain.Ticket) error
}

// ConfigStore reads the singleton workflow/escalation configuration. A nil
// config with a nil error means no row exists yet.
type ConfigStore interface {
	Get(ctx context.Context) (*domain.GeneralConfig, error)
}

// NotificationSink accepts escalation notifications. Delivery is
// fire-and-forget relative to the reassignment commit: errors are logged by
// the scheduler and never affect the ticket mutation.
type NotificationSink interface {
	Notify(ctx context.Context, n domain.Notification) error
}
