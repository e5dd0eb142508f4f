package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/smb-finance-ledger/internal/core/service"
)

type pnlCmd struct {
	env    *Env
	tenant string
	scope  string
	from   string
	to     string
}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "print the profit and loss of a tenant over a period" }
func (*pnlCmd) Usage() string {
	return `ledgerctl pnl -tenant <uuid> -from <YYYY-MM-DD> -to <YYYY-MM-DD> [-scope company|personal]
`
}

func (c *pnlCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tenant, "tenant", "", "Tenant to report on.")
	f.StringVar(&c.scope, "scope", string(service.ScopeCompany), "Result scope (company, personal).")
	f.StringVar(&c.from, "from", "", "First day of the period.")
	f.StringVar(&c.to, "to", "", "Last day of the period.")
}

func (c *pnlCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	caller, err := operator(c.tenant)
	if err != nil {
		return c.env.usagef("%v", err)
	}
	scope := service.Scope(c.scope)
	if !scope.Valid() {
		return c.env.usagef("invalid -scope %q, expected company or personal", c.scope)
	}
	from, err := parseDate("from", c.from)
	if err != nil {
		return c.env.usagef("%v", err)
	}
	to, err := parseDate("to", c.to)
	if err != nil {
		return c.env.usagef("%v", err)
	}

	services, closeFn, err := c.env.Open(ctx)
	if err != nil {
		return c.env.failf("Error connecting: %v", err)
	}
	defer closeFn()

	report, err := services.Report.ProfitAndLoss(ctx, caller, scope, from, to)
	if err != nil {
		return c.env.failf("Error computing P&L: %v", err)
	}

	fmt.Fprintf(c.env.Stdout, "P&L %s %s to %s (%d entries)\n", report.Scope, c.from, c.to, report.EntryCount)
	w := tabwriter.NewWriter(c.env.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Income\t%s\t\n", report.Formatted.Income)
	fmt.Fprintf(w, "Expenses\t%s\t\n", report.Formatted.Expenses)
	fmt.Fprintf(w, "Net\t%s\t\n", report.Formatted.Net)
	if err := w.Flush(); err != nil {
		return c.env.failf("Error writing report: %v", err)
	}
	return subcommands.ExitSuccess
}
