package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/google/uuid"
)

type reconcileCmd struct {
	env       *Env
	tenant    string
	invoice   string
	tolerance int64
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "match a card invoice against its bank payment" }
func (*reconcileCmd) Usage() string {
	return `ledgerctl reconcile -tenant <uuid> -invoice <uuid> [-tolerance <cents>]

  Searches the payment window around the invoice due date for the entry that
  paid it and records the payment. A negative tolerance uses the configured
  default.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tenant, "tenant", "", "Tenant owning the invoice.")
	f.StringVar(&c.invoice, "invoice", "", "Invoice to reconcile.")
	f.Int64Var(&c.tolerance, "tolerance", -1, "Accepted difference in cents.")
}

func (c *reconcileCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	caller, err := operator(c.tenant)
	if err != nil {
		return c.env.usagef("%v", err)
	}
	invoiceID, err := uuid.Parse(c.invoice)
	if err != nil {
		return c.env.usagef("invalid -invoice %q: %v", c.invoice, err)
	}

	var tolerance *int64
	if c.tolerance >= 0 {
		tolerance = &c.tolerance
	}

	services, closeFn, err := c.env.Open(ctx)
	if err != nil {
		return c.env.failf("Error connecting: %v", err)
	}
	defer closeFn()

	result, err := services.Reconciliation.AutoReconcile(ctx, caller, invoiceID, tolerance)
	if err != nil {
		return c.env.failf("Error reconciling invoice %s: %v", invoiceID, err)
	}

	switch {
	case !result.Matched:
		fmt.Fprintf(c.env.Stdout, "invoice %s: no matching payment\n", invoiceID)
	case result.AlreadyReconciled:
		fmt.Fprintf(c.env.Stdout, "invoice %s: already reconciled with entry %s\n", invoiceID, result.EntryID)
	default:
		fmt.Fprintf(c.env.Stdout, "invoice %s: matched entry %s\n", invoiceID, result.EntryID)
	}
	return subcommands.ExitSuccess
}
