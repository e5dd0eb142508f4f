package service

import (
	"context"

	"github.com/smb-finance-ledger/internal/domain/outbox"
)

// ProjectionService applies a published ledger event to a read model
type ProjectionService interface {
	Project(ctx context.Context, event *outbox.Event) error
}
