// Command migrate applies the embedded schema migrations. The connection
// comes from -dsn, or else from the [database] section of config.toml and
// the BRIEF_DB_* environment.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/brief/cmd/migrate/migrations"
	"github.com/JaimeStill/brief/internal/config"
)

const usage = `usage: migrate [-dsn url] <command>

commands:
  up           apply all pending migrations
  down         revert all migrations
  steps N      apply N migrations (negative reverts)
  version      print the current version
  force N      mark version N as applied without running it
`

func main() {
	dsn := flag.String("dsn", "", "postgres connection URL (overrides config)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*dsn, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(dsn string, args []string) error {
	if dsn == "" {
		db, err := config.LoadDatabase()
		if err != nil {
			return err
		}
		dsn = db.ConnString()
	}

	src, err := migrations.Source()
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch cmd := args[0]; cmd {
	case "up":
		return report(m.Up(), "migrations applied")
	case "down":
		return report(m.Down(), "migrations reverted")
	case "steps", "force":
		n, err := intArg(args)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		if cmd == "force" {
			return report(m.Force(n), fmt.Sprintf("forced version %d", n))
		}
		return report(m.Steps(n), fmt.Sprintf("applied %d steps", n))
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, errors.New("missing argument")
	}
	var n int
	if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid argument %q", args[1])
	}
	return n, nil
}

func report(err error, done string) error {
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("no change")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(done)
	return nil
}
