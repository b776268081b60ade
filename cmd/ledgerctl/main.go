// Command ledgerctl reproduce saldos desde archivos de movimientos y consulta el libro configurado.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&replayCmd{}, "offline")
	commander.Register(&balanceCmd{}, "libro")
	commander.Register(&statementCmd{}, "libro")
	commander.Register(&migrateCmd{}, "libro")
	commander.Register(&tokenCmd{}, "acceso")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
