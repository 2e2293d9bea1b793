package main

import (
	"fmt"
	"os"

	"github.com/jhunt/go-cli"
	env "github.com/jhunt/go-envirotron"
	"github.com/jhunt/go-log"

	// sql drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/diskrim/diskrim/db"
)

var Version = ""

func main() {
	var opts struct {
		Help    bool `cli:"-h, --help"`
		Version bool `cli:"-v, --version"`
		Debug   bool `cli:"-D, --debug" env:"DISKRIM_DEBUG"`

		Driver string `cli:"-t, --type" env:"DISKRIM_DATABASE_TYPE"`
		DSN    string `cli:"-d, --database" env:"DISKRIM_DATABASE_DSN"`
	}
	opts.Driver = "sqlite3"
	env.Override(&opts)

	_, args, err := cli.Parse(&opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "!!! %s\n", err)
		os.Exit(1)
	}
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "!!! extra arguments found\n")
		os.Exit(1)
	}

	if opts.Help {
		fmt.Printf("diskrim-schema - Deploy the diskrim ledger schema\n\n")
		fmt.Printf("Options\n")
		fmt.Printf("  -h, --help       Show this help screen.\n")
		fmt.Printf("  -v, --version    Display the diskrim version.\n")
		fmt.Printf("  -D, --debug      Enable debugging output.\n")
		fmt.Printf("\n")
		fmt.Printf("  -t, --type       Type of database to deploy to.\n")
		fmt.Printf("                   (either: sqlite3 or mysql)\n")
		fmt.Printf("  -d, --database   DSN of the database to deploy to.\n")
		fmt.Printf("\n")
		os.Exit(0)
	}

	if opts.Version {
		if Version == "" {
			fmt.Printf("diskrim-schema (development)\n")
		} else {
			fmt.Printf("diskrim-schema v%s\n", Version)
		}
		os.Exit(0)
	}

	if opts.DSN == "" {
		fmt.Fprintf(os.Stderr, "You must specify the DSN of your database, via the `--database` option.\n")
		os.Exit(1)
	}

	level := "info"
	if opts.Debug {
		level = "debug"
	}
	log.SetupLogging(log.LogConfig{
		Type:  "console",
		Level: level,
	})

	database := &db.DB{
		Driver: opts.Driver,
		DSN:    opts.DSN,
	}

	log.Debugf("connecting to %s database at %s", database.Driver, database.DSN)
	if err := database.Connect(); err != nil {
		log.Errorf("failed to connect to %s database at %s: %s",
			database.Driver, database.DSN, err)
		os.Exit(2)
	}

	if err := database.Setup(); err != nil {
		log.Errorf("failed to set up schema in %s database at %s: %s",
			database.Driver, database.DSN, err)
		os.Exit(2)
	}

	v, err := database.SchemaVersion()
	if err != nil {
		log.Errorf("failed to read back schema version: %s", err)
		os.Exit(2)
	}
	log.Infof("deployed schema version %d", v)
}
