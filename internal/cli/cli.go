// Package cli holds the operator subcommands of ledgerctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/core/components"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// operatorID is recorded as the actor of mutations started from the CLI
const operatorID = "ledgerctl"

const dateLayout = "2006-01-02"

// ServicesOpener builds the ledger services and returns a function releasing
// the connections behind them
type ServicesOpener func(ctx context.Context) (*components.Services, func(), error)

// Env is what every subcommand shares
type Env struct {
	Open   ServicesOpener
	Stdout io.Writer
	Stderr io.Writer
}

// Commands lists every ledgerctl subcommand bound to env
func Commands(env *Env) []subcommands.Command {
	return []subcommands.Command{
		&reapLocksCmd{env: env},
		&reconcileCmd{env: env},
		&pnlCmd{env: env},
	}
}

func (e *Env) failf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

func (e *Env) usagef(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Stderr, format+"\n", args...)
	return subcommands.ExitUsageError
}

func operator(tenant string) (shared.Caller, error) {
	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		return shared.Caller{}, fmt.Errorf("invalid -tenant %q: %w", tenant, err)
	}
	return shared.Caller{TenantID: tenantID, UserID: operatorID}, nil
}

func parseDate(flagName, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -%s %q, expected YYYY-MM-DD", flagName, value)
	}
	return t, nil
}
