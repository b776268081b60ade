package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/jhoicas/ledger-api/internal/bootstrap"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ledger-api/pkg/config"
	"github.com/jhoicas/ledger-api/pkg/logger"
)

func openLedger(ctx context.Context) (*bootstrap.Ledger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn", Output: os.Stderr})
	return bootstrap.Build(ctx, cfg, log.Zerolog())
}

type balanceCmd struct {
	ref  string
	asOf int64
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "consulta el saldo de una entidad en el libro configurado" }
func (*balanceCmd) Usage() string {
	return `ledgerctl balance -ref stock:P1@S1 [-as-of 0]

  Usa la misma configuración que la API (LEDGER_STORE, DATABASE_URL, ...).
`
}

func (p *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.ref, "ref", "", "Entidad: account:<id> o stock:<producto>@<tienda>.")
	f.Int64Var(&p.asOf, "as-of", 0, "Último id incluido (0 = último).")
}

func (p *balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref, err := entity.ParseEntityRef(p.ref)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	l, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer l.Close()

	bal, err := l.Service.GetBalance(ctx, ref, entity.MovementID(p.asOf))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s\t%s\t(as_of=%d, %d movimientos)\n", bal.EntityRef, bal.Value, bal.AsOf, bal.Count)
	return subcommands.ExitSuccess
}

type statementCmd struct {
	ref  string
	from int64
	to   int64
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "extracto con saldo corrido de una entidad" }
func (*statementCmd) Usage() string {
	return `ledgerctl statement -ref account:1105 [-from 1] [-to 0]
`
}

func (p *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.ref, "ref", "", "Entidad: account:<id> o stock:<producto>@<tienda>.")
	f.Int64Var(&p.from, "from", 1, "Primer id del extracto.")
	f.Int64Var(&p.to, "to", 0, "Último id (0 = último).")
}

func (p *statementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref, err := entity.ParseEntityRef(p.ref)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	l, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer l.Close()

	st, err := l.Service.Statement(ctx, ref, entity.MovementID(p.from), entity.MovementID(p.to))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "saldo inicial\t\t\t\t%s\t\n", st.Opening)
	for _, line := range st.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", line.Movement.ID, line.Movement.Kind, line.Movement.Reference, line.Delta, line.Balance)
	}
	fmt.Fprintf(tw, "saldo final\t\t\t\t%s\t\n", st.Closing)
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type migrateCmd struct{}

func (*migrateCmd) Name() string             { return "migrate" }
func (*migrateCmd) Synopsis() string         { return "crea las tablas del libro en PostgreSQL" }
func (*migrateCmd) Usage() string            { return "ledgerctl migrate\n" }
func (*migrateCmd) SetFlags(_ *flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println("esquema aplicado")
	return subcommands.ExitSuccess
}
