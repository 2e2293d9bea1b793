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

	"github.com/diskrim/diskrim/core"
	"github.com/diskrim/diskrim/db"
)

var Version = ""

func main() {
	var opts struct {
		Help    bool `cli:"-h, --help"`
		Version bool `cli:"-v, --version"`

		ConfigFile string `cli:"-c, --config" env:"DISKRIM_CONFIG"`
		Log        string `cli:"-l, --log-level" env:"DISKRIM_LOG_LEVEL"`
	}
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
		fmt.Printf("diskrimd - The diskrim ledger and metrics daemon\n\n")
		fmt.Printf("Options\n")
		fmt.Printf("  -h, --help       Show this help screen.\n")
		fmt.Printf("  -v, --version    Display the diskrim version.\n")
		fmt.Printf("\n")
		fmt.Printf("  -c, --config     Path to the diskrimd configuration file.\n")
		fmt.Printf("  -l, --log-level  Set logging level to debug, info, warn or error.\n")
		fmt.Printf("\n")
		os.Exit(0)
	}

	if opts.Version {
		if Version == "" {
			fmt.Printf("diskrimd (development)\n")
		} else {
			fmt.Printf("diskrimd v%s\n", Version)
		}
		os.Exit(0)
	}

	config, err := core.ReadConfig(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %s\n", err)
		os.Exit(1)
	}

	level := config.LogLevel
	if opts.Log != "" {
		level = opts.Log
	}
	log.SetupLogging(log.LogConfig{Type: "console", Level: level})
	log.Infof("starting diskrim daemon")

	if _, err := config.ParseOverrides(); err != nil {
		log.Errorf("invalid configuration: %s", err)
		os.Exit(1)
	}

	database := &db.DB{
		Driver: config.DBType,
		DSN:    config.DBPath,
	}
	log.Debugf("connecting to %s ledger at %s", database.Driver, database.DSN)
	if err := database.Connect(); err != nil {
		log.Errorf("failed to connect to %s ledger at %s: %s",
			database.Driver, database.DSN, err)
		os.Exit(2)
	}
	if err := database.Setup(); err != nil {
		log.Errorf("failed to set up ledger schema in %s database at %s: %s",
			database.Driver, database.DSN, err)
		os.Exit(2)
	}

	d := &Daemon{
		DB:      database,
		Metrics: core.NewMetrics("diskrim"),
	}

	log.Infof("serving ledger api and metrics on %s", config.MetricsBind)
	if err := d.Run(config.MetricsBind); err != nil {
		log.Errorf("diskrim daemon failed: %s", err)
		os.Exit(2)
	}
}
