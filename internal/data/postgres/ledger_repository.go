package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

const entryColumns = `t.id, t.user_id, t.account_id, t.entity_id, t.category_id, t.date, t.description, t.amount, t.kind,
		t.economic_nature, t.transfer_group_id, t.counts_in_company_result, t.counts_in_personal_result,
		t.parent_id, t.invoice_id, t.source_staging_id, t.created_at`

const uniqueViolation = "23505"

// LedgerRepository implements ledger.Repository over the transactions table
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanEntry(s rowScanner) (*ledger.Entry, error) {
	var e ledger.Entry
	err := s.Scan(
		&e.ID,
		&e.OwnerID,
		&e.AccountID,
		&e.EntityID,
		&e.CategoryID,
		&e.Date,
		&e.Description,
		&e.Amount,
		&e.Kind,
		&e.EconomicNature,
		&e.TransferGroupID,
		&e.CountsInCompanyResult,
		&e.CountsInPersonalResult,
		&e.ParentID,
		&e.InvoiceID,
		&e.SourceStagingID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new ledger entry. A second entry for the same staging row
// violates the unique source_staging_id and surfaces as a stale version.
func (r *LedgerRepository) Create(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO transactions (id, user_id, account_id, entity_id, category_id, date, description, amount, kind,
			economic_nature, transfer_group_id, counts_in_company_result, counts_in_personal_result,
			parent_id, invoice_id, source_staging_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.OwnerID,
		e.AccountID,
		e.EntityID,
		e.CategoryID,
		e.Date,
		e.Description,
		e.Amount,
		e.Kind,
		e.EconomicNature,
		e.TransferGroupID,
		e.CountsInCompanyResult,
		e.CountsInPersonalResult,
		e.ParentID,
		e.InvoiceID,
		e.SourceStagingID,
		e.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && e.SourceStagingID != nil {
			return shared.ErrStaleVersion{Resource: shared.ResourceStagingRow, ID: *e.SourceStagingID}
		}
		r.logger.Error("Failed to create ledger entry", "id", e.ID.String(), "error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger entry by its ID
func (r *LedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM transactions t
		WHERE t.id = $1`

	e, err := scanEntry(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound{Resource: shared.ResourceLedgerEntry, ID: id}
		}
		r.logger.Error("Failed to get ledger entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return e, nil
}

// GetByTransferGroup returns both legs of a transfer, outgoing leg first
func (r *LedgerRepository) GetByTransferGroup(ctx context.Context, ownerID, groupID uuid.UUID) ([]*ledger.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM transactions t
		WHERE t.user_id = $1 AND t.transfer_group_id = $2
		ORDER BY t.amount ASC`

	return r.list(ctx, "transfer group", query, ownerID, groupID)
}

// ListForPeriod returns a tenant's entries dated within [from, to]
func (r *LedgerRepository) ListForPeriod(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*ledger.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM transactions t
		WHERE t.user_id = $1 AND t.date BETWEEN $2 AND $3
		ORDER BY t.date ASC, t.created_at ASC`

	return r.list(ctx, "period", query, ownerID, from, to)
}

// FindReconciliationCandidates runs the bounded payment search for an invoice.
// Rows come back closest to the anchor date first, then closest in amount.
func (r *LedgerRepository) FindReconciliationCandidates(ctx context.Context, q ledger.CandidateQuery) ([]*ledger.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1
			AND t.kind = ANY($2::text[])
			AND t.amount < 0
			AND t.date BETWEEN $3 AND $4
			AND ABS(ABS(t.amount) - $5::numeric) <= $6::numeric
			AND t.invoice_id IS NULL
			AND ($7::uuid IS NULL OR t.account_id <> $7)
			AND (COALESCE(cardinality($8::text[]), 0) = 0 OR a.account_type = ANY($8::text[]))
		ORDER BY ABS(t.date - $9::date) ASC, ABS(ABS(t.amount) - $5::numeric) ASC, t.created_at ASC
		LIMIT $10`

	kinds := make([]string, 0, len(q.Kinds))
	for _, k := range q.Kinds {
		kinds = append(kinds, string(k))
	}
	payerTypes := q.PayerAccountTypes
	if payerTypes == nil {
		payerTypes = []string{}
	}

	return r.list(ctx, "reconciliation candidates", query,
		q.OwnerID, kinds, q.From, q.To, q.Target, q.Tolerance, q.ExcludeAccountID, payerTypes, q.Anchor, q.Limit)
}

// LinkInvoice binds an entry to the invoice it paid, only if still unlinked
func (r *LedgerRepository) LinkInvoice(ctx context.Context, entryID, invoiceID uuid.UUID) error {
	query := `
		UPDATE transactions
		SET invoice_id = $1
		WHERE id = $2 AND invoice_id IS NULL
	`

	result, err := r.querier.Exec(ctx, query, invoiceID, entryID)
	if err != nil {
		r.logger.Error("Failed to link ledger entry to invoice", "entry_id", entryID.String(), "error", err)
		return fmt.Errorf("failed to link ledger entry to invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStaleVersion{Resource: shared.ResourceLedgerEntry, ID: entryID}
	}

	return nil
}

func (r *LedgerRepository) list(ctx context.Context, what, query string, args ...any) ([]*ledger.Entry, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "by", what, "error", err)
		return nil, fmt.Errorf("failed to list ledger entries by %s: %w", what, err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}
