package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/jhoicas/ledger-api/pkg/config"
	"github.com/jhoicas/ledger-api/pkg/jwt"
)

type tokenCmd struct {
	userID string
	role   string
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "emite un JWT firmado con JWT_SECRET para operar la API" }
func (*tokenCmd) Usage() string {
	return `ledgerctl token -user <id> -role admin|contador|bodeguero|vendedor
`
}

func (p *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.userID, "user", "", "ID del usuario (queda como created_by de los movimientos).")
	f.StringVar(&p.role, "role", jwt.RoleBodeguero, "Rol del token.")
}

func (p *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !validRole(p.role) || p.userID == "" {
		fmt.Fprintln(os.Stderr, "se requieren -user y un -role válido")
		return subcommands.ExitUsageError
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, p.userID, p.role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(tok)
	return subcommands.ExitSuccess
}

func validRole(role string) bool {
	switch role {
	case jwt.RoleAdmin, jwt.RoleContador, jwt.RoleBodeguero, jwt.RoleVendedor:
		return true
	}
	return false
}
