package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// LedgerWriterImpl implements the LedgerWriter interface
type LedgerWriterImpl struct {
	ledgerRepo ledger.Repository
	clock      shared.Clock
	logger     *slog.Logger
}

func NewLedgerWriter(ledgerRepo ledger.Repository, clock shared.Clock, logger *slog.Logger) service.LedgerWriter {
	return &LedgerWriterImpl{
		ledgerRepo: ledgerRepo,
		clock:      clock,
		logger:     logger,
	}
}

// Write builds the entry for the staging row and inserts it through tx
func (w *LedgerWriterImpl) Write(ctx context.Context, tx pgx.Tx, in service.WriteInput) (*ledger.Entry, error) {
	entry, err := BuildEntry(in, w.clock.Now())
	if err != nil {
		return nil, err
	}

	if err = w.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, err
	}

	w.logger.Debug("Ledger entry written",
		"entry_id", entry.ID.String(),
		"staging_id", in.Row.ID.String(),
		"kind", entry.Kind,
		"amount", entry.Amount.String(),
	)
	return entry, nil
}

// BuildEntry maps a staging row onto a new ledger entry. Every invalid field
// is reported in a single ValidationError.
func BuildEntry(in service.WriteInput, now time.Time) (*ledger.Entry, error) {
	if in.Row == nil || in.Entity == nil {
		return nil, shared.NewValidationError("row", "staging row and entity are required")
	}

	var verr shared.ValidationError
	if in.Row.Amount.IsZero() {
		verr.Add("amount", "must not be zero")
	}
	if in.Row.Date.IsZero() {
		verr.Add("date", "is required")
	}
	if in.KindHint != nil && !in.KindHint.Hintable() {
		verr.Add("kind", "must be income, expense or adjustment")
	}
	if in.Nature != nil && !in.Nature.Valid() {
		verr.Add("economic_nature", "is not a known nature")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	kind := ledger.KindForAmount(in.Row.Amount)
	if in.KindHint != nil {
		kind = *in.KindHint
	}

	flags := resultFlags(in.Entity.IsCompany(), in.Nature, in.ResultOverride)
	sourceID := in.Row.ID

	return &ledger.Entry{
		ID:                     uuid.New(),
		OwnerID:                in.Row.OwnerID,
		AccountID:              in.Row.AccountID,
		EntityID:               in.Entity.ID,
		CategoryID:             in.CategoryID,
		Date:                   in.Row.Date,
		Description:            in.Row.Description,
		Amount:                 in.Row.Amount,
		Kind:                   kind,
		EconomicNature:         in.Nature,
		CountsInCompanyResult:  flags.Company,
		CountsInPersonalResult: flags.Personal,
		SourceStagingID:        &sourceID,
		CreatedAt:              now,
	}, nil
}

// resultFlags routes an entry to the company or personal result.
// An explicit override wins; internal moves and investments count nowhere.
func resultFlags(companyEntity bool, nature *ledger.Nature, override *ledger.ResultFlags) ledger.ResultFlags {
	if override != nil {
		return *override
	}
	if nature != nil {
		switch *nature {
		case ledger.NatureInternalMove, ledger.NatureInvestment:
			return ledger.ResultFlags{}
		case ledger.NatureOwnerDraw:
			return ledger.ResultFlags{Personal: true}
		}
	}
	return ledger.ResultFlags{Company: companyEntity, Personal: !companyEntity}
}
