package components

import (
	"log/slog"

	"github.com/smb-finance-ledger/internal/config"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/account"
	"github.com/smb-finance-ledger/internal/domain/audit"
	"github.com/smb-finance-ledger/internal/domain/entity"
	"github.com/smb-finance-ledger/internal/domain/invoice"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/outbox"
	"github.com/smb-finance-ledger/internal/domain/ownership"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

// Repositories groups the stores the ledger services are built on.
// Audit may be nil when the process has no MongoDB connection.
type Repositories struct {
	Accounts  account.Repository
	Staging   staging.Repository
	Ledger    ledger.Repository
	Invoice   invoice.Repository
	Entity    entity.Repository
	Outbox    outbox.Repository
	Ownership ownership.Checker
	Audit     audit.Repository
}

// Services is the full set of ledger operations exposed to transports
type Services struct {
	Lock           service.LockService
	Approval       service.ApprovalService
	Transfer       service.TransferService
	Reconciliation service.ReconciliationService
	Entity         service.EntityService
	Query          service.QueryService
	Report         service.ReportService
	Audit          service.AuditService
}

// CreateServices wires every service with its components
func CreateServices(
	txManager persistence.TxManager,
	repos Repositories,
	clock shared.Clock,
	cfg *config.Config,
	logger *slog.Logger,
) *Services {
	ledgerWriter := NewLedgerWriter(repos.Ledger, clock, logger.With("component", "ledger_writer"))
	outboxManager := NewOutboxManager(repos.Outbox, logger.With("component", "outbox_manager"))
	matcher := NewReconciliationMatcher(logger.With("component", "reconciliation_matcher"))
	policy := service.PolicyFromConfig(cfg.Reconciliation)

	services := &Services{
		Lock: service.NewLockService(repos.Staging, clock, logger.With("component", "lock_service")),
		Approval: service.NewApprovalService(
			txManager,
			repos.Staging,
			repos.Entity,
			repos.Ownership,
			ledgerWriter,
			outboxManager,
			clock,
			logger.With("component", "approval_service"),
		),
		Transfer: service.NewTransferService(
			txManager,
			repos.Ledger,
			repos.Ownership,
			outboxManager,
			clock,
			logger.With("component", "transfer_service"),
		),
		Reconciliation: service.NewReconciliationService(
			txManager,
			repos.Invoice,
			repos.Ledger,
			matcher,
			outboxManager,
			policy,
			clock,
			logger.With("component", "reconciliation_service"),
		),
		Entity: service.NewEntityService(txManager, repos.Entity, outboxManager, logger.With("component", "entity_service")),
		Query:  service.NewQueryService(repos.Staging, repos.Ledger, repos.Accounts, logger.With("component", "query_service")),
		Report: service.NewReportService(repos.Ledger, NewPnLCalculator(), cfg.Application.Currency, logger.With("component", "report_service")),
	}

	if repos.Audit != nil {
		services.Audit = service.NewAuditService(repos.Audit, logger.With("component", "audit_service"))
	}

	logger.Info("Ledger services created",
		"reconciliation_window_days", policy.WindowDays,
		"reconciliation_tolerance_cents", policy.DefaultToleranceCents,
	)
	return services
}
