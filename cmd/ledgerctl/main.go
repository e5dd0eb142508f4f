package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/smb-finance-ledger/internal/cli"
	"github.com/smb-finance-ledger/internal/config"
	"github.com/smb-finance-ledger/internal/core/components"
	"github.com/smb-finance-ledger/internal/data/postgres"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/logger"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	env := &cli.Env{Open: openServices, Stdout: os.Stdout, Stderr: os.Stderr}
	for _, c := range cli.Commands(env) {
		commander.Register(c, "operations")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// openServices connects to PostgreSQL only; the CLI never reads the audit store
func openServices(ctx context.Context) (*components.Services, func(), error) {
	cfg, err := config.LoadConfig("ledgerctl")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.NewLogger(cfg)

	postgresDB, err := persistence.OpenPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}

	repos := components.Repositories{
		Accounts:  postgres.NewAccountRepository(log, postgresDB),
		Staging:   postgres.NewStagingRepository(log, postgresDB),
		Ledger:    postgres.NewLedgerRepository(log, postgresDB),
		Invoice:   postgres.NewInvoiceRepository(log, postgresDB),
		Entity:    postgres.NewEntityRepository(log, postgresDB),
		Outbox:    postgres.NewOutboxRepository(log, postgresDB),
		Ownership: postgres.NewOwnershipChecker(log, postgresDB),
	}

	return components.CreateServices(postgresDB, repos, shared.SystemClock{}, cfg, log), postgresDB.Close, nil
}
