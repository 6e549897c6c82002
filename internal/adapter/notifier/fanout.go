package notifier

import (
	"context"
	"errors"

	"github.com/hive-corporation/casebridge/internal/core/domain"
	"github.com/hive-corporation/casebridge/internal/core/ports"
)

// Fanout delivers a case notification to every configured notifier. Each
// target is attempted even when an earlier one fails.
type Fanout []ports.CaseNotifier

func (f Fanout) NotifyCaseCreated(ctx context.Context, caseID string, c domain.Case) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifyCaseCreated(ctx, caseID, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
