package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/domain/invoice"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

const invoiceColumns = `id, user_id, account_id, cycle_start, cycle_end, due_date, total_amount, paid_amount, paid_at,
		payer_account_id, matched_entry_id, status, version`

// InvoiceRepository implements invoice.Repository for PostgreSQL
type InvoiceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewInvoiceRepository creates a new PostgreSQL invoice repository
func NewInvoiceRepository(logger *slog.Logger, db *persistence.PostgresDB) invoice.Repository {
	return &InvoiceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *InvoiceRepository) WithTx(tx pgx.Tx) invoice.Repository {
	return &InvoiceRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByID retrieves an invoice by its ID
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate retrieves an invoice holding a row lock, serializing concurrent reconciliations
func (r *InvoiceRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE id = $1
		FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *InvoiceRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&inv.ID,
		&inv.OwnerID,
		&inv.AccountID,
		&inv.CycleStart,
		&inv.CycleEnd,
		&inv.DueDate,
		&inv.TotalAmount,
		&inv.PaidAmount,
		&inv.PaidAt,
		&inv.PayerAccountID,
		&inv.MatchedEntryID,
		&inv.Status,
		&inv.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound{Resource: shared.ResourceInvoice, ID: id}
		}
		r.logger.Error("Failed to get invoice", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

// MarkPaid records the matched payment when version still matches
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, version int64, p invoice.Payment) error {
	query := `
		UPDATE invoices
		SET paid_amount = $1, paid_at = $2, payer_account_id = $3, matched_entry_id = $4,
			status = 'paid', version = version + 1
		WHERE id = $5 AND version = $6
	`

	result, err := r.querier.Exec(ctx, query, p.Amount, p.PaidAt, p.PayerAccountID, p.EntryID, id, version)
	if err != nil {
		r.logger.Error("Failed to mark invoice paid", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStaleVersion{Resource: shared.ResourceInvoice, ID: id}
	}

	return nil
}
