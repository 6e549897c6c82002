package ports

import (
	"context"
	"time"

	"github.com/hive-corporation/casebridge/internal/core/domain"
)

// EventSource fetches raw security events from the appliance in a time
// range. Each call covers one feed; either feed can be disabled by
// configuration.
type EventSource interface {
	ModelBreaches(ctx context.Context, from, to time.Time) ([]domain.Record, error)
	AIAnalystEvents(ctx context.Context, from, to time.Time) ([]domain.Record, error)
}

// CaseStore persists normalized cases and evidence in the downstream
// case-management system. Each call may fail independently; failures are
// scoped to the record being written, never to the batch around it.
type CaseStore interface {
	SaveCase(ctx context.Context, c domain.Case) (string, error)
	SaveEvidence(ctx context.Context, items []domain.Evidence) ([]string, error)
}

// CaseNotifier announces newly created cases to interested systems.
type CaseNotifier interface {
	NotifyCaseCreated(ctx context.Context, caseID string, c domain.Case) error
}
