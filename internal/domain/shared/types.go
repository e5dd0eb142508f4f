package shared

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// EventType names a ledger mutation published through the outbox
type EventType string

const (
	EventLedgerEntryPosted EventType = "ledger.entry.posted"
	EventStagingRejected   EventType = "staging.rejected"
	EventStagingSkipped    EventType = "staging.skipped"
	EventTransferCreated   EventType = "transfer.created"
	EventInvoiceReconciled EventType = "invoice.reconciled"
	EventEntityDeleted     EventType = "entity.deleted"
)

// Aggregate names used in errors and audit records
const (
	ResourceStagingRow  = "staging_row"
	ResourceLedgerEntry = "ledger_entry"
	ResourceAccount     = "account"
	ResourceEntity      = "entity"
	ResourceCategory    = "category"
	ResourceInvoice     = "invoice"
	ResourceTransfer    = "transfer"
)
