// Command dhatukala-admin is the operations companion to the Dhatukala
// server: backup, restore, and database seeding.
package main

import (
	"fmt"
	"os"

	"github.com/dhatukala/dhatukala/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: dhatukala-admin <command> [flags]

Commands:
  backup    archive the database, catalogues, and config into a tar.gz
  restore   unpack a backup archive into a data directory
  seed      populate a database with sample products and rates
  version   print version information

Run "dhatukala-admin <command> -h" for command flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "backup":
		runBackup(os.Args[2:])
	case "restore":
		runRestore(os.Args[2:])
	case "seed":
		runSeed(os.Args[2:])
	case "version":
		fmt.Println(version.Info())
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}
