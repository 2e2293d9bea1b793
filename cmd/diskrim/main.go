package main

import (
	"os"
	"strconv"
	"time"

	fmt "github.com/jhunt/go-ansi"
	"github.com/jhunt/go-cli"
	env "github.com/jhunt/go-envirotron"
	"github.com/jhunt/go-table"

	// sql drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/diskrim/diskrim/capability"
	"github.com/diskrim/diskrim/db"
	"github.com/diskrim/diskrim/disk"
	"github.com/diskrim/diskrim/validate"
)

var Version = ""

var opts struct {
	Help    bool `cli:"-h, --help"`
	Version bool `cli:"-v, --version"`
	JSON    bool `cli:"--json" env:"DISKRIM_JSON_MODE"`

	Driver string `cli:"-t, --type" env:"DISKRIM_DATABASE_TYPE"`
	DSN    string `cli:"-d, --database" env:"DISKRIM_DATABASE_DSN"`

	HelpCommand struct{} `cli:"help"`

	History struct {
		Limit     int    `cli:"-l, --limit"`
		Kind      string `cli:"-k, --kind"`
		Status    string `cli:"-s, --status"`
		Disk      string `cli:"--disk"`
		Partition string `cli:"--partition"`
	} `cli:"history"`

	Show struct{} `cli:"show"`

	Capabilities struct {
		Platform string `cli:"-p, --platform"`
	} `cli:"capabilities"`
}

func main() {
	opts.Driver = "sqlite3"
	opts.DSN = "diskrim.db"
	env.Override(&opts)

	command, args, err := cli.Parse(&opts)
	bail(err)

	if command == "" && !opts.Help && !opts.Version {
		if len(args) > 0 {
			bail(fmt.Errorf("Unrecognized command '%s'", args[0]))
		}
		opts.Help = true
	}
	if command == "help" && len(args) == 0 {
		opts.Help = true
		command = ""
	}

	if opts.Help && command == "" {
		fmt.Printf("USAGE: @G{diskrim} COMMAND [OPTIONS] [ARGUMENTS]\n")
		fmt.Printf("\n")
		fmt.Printf("@B{Global options:}\n")
		fmt.Printf("  -h, --help      Show this help screen.\n")
		fmt.Printf("  -v, --version   Print the version and exit.\n")
		fmt.Printf("\n")
		fmt.Printf("  -t, --type      Ledger database type, sqlite3 or mysql. (@W{$DISKRIM_DATABASE_TYPE})\n")
		fmt.Printf("  -d, --database  Ledger database DSN. (@W{$DISKRIM_DATABASE_DSN})\n")
		fmt.Printf("      --json      Format output as JSON. (@W{$DISKRIM_JSON_MODE})\n")
		fmt.Printf("\n")
		fmt.Printf("@B{Commands:}\n")
		fmt.Printf("  history        Review the operation ledger.\n")
		fmt.Printf("  show           Show one operation and its disk snapshots.\n")
		fmt.Printf("  capabilities   List what this build can do, per platform.\n")
		fmt.Printf("\n")
		os.Exit(0)
	}

	if opts.Version {
		if Version == "" {
			fmt.Printf("diskrim (development)\n")
		} else {
			fmt.Printf("diskrim v%s\n", Version)
		}
		os.Exit(0)
	}

	if command == "help" {
		command = args[0]
		args = args[1:]
		opts.Help = true
	}

	switch command {
	case "history": /* {{{ */
		if opts.Help {
			fmt.Printf("USAGE: @G{diskrim} @C{history} [OPTIONS]\n")
			fmt.Printf("\n")
			fmt.Printf("  Review the operation ledger, most recent first.\n")
			fmt.Printf("\n")
			fmt.Printf("  -l, --limit      Show at most this many operations.\n")
			fmt.Printf("  -k, --kind       Only show operations of this kind.\n")
			fmt.Printf("  -s, --status     Only show operations in this status\n")
			fmt.Printf("                   (started, completed, or failed).\n")
			fmt.Printf("      --disk       Only show operations against this disk.\n")
			fmt.Printf("      --partition  Only show operations against this partition.\n")
			fmt.Printf("\n")
			os.Exit(0)
		}
		if len(args) != 0 {
			fail(2, "Usage: diskrim history [OPTIONS]\n")
		}

		database := connect()
		l, err := database.GetAllOperations(&db.OperationFilter{
			ForKind:      opts.History.Kind,
			ForStatus:    opts.History.Status,
			ForDisk:      opts.History.Disk,
			ForPartition: opts.History.Partition,
			Limit:        opts.History.Limit,
		})
		bail(err)

		if opts.JSON {
			fmt.Printf("%s\n", asJSON(l))
			break
		}

		tbl := table.NewTable("ID", "Kind", "Target", "Status", "Started at", "Finished at", "Notes")
		for _, op := range l {
			target := op.Disk
			if op.Partition != "" {
				target = op.Partition
			}
			tbl.Row(op, op.ID, op.Kind, target, colorStatus(op.Status),
				strftime(op.CreatedAt), strftime(op.CompletedAt), op.Error)
		}
		tbl.Output(os.Stdout)

	/* }}} */
	case "show": /* {{{ */
		if opts.Help {
			fmt.Printf("USAGE: @G{diskrim} @C{show} ID\n")
			fmt.Printf("\n")
			fmt.Printf("  Show one ledger operation in full, along with the disk\n")
			fmt.Printf("  snapshots that were captured while it ran.\n")
			fmt.Printf("\n")
			os.Exit(0)
		}
		if len(args) != 1 {
			fail(2, "Usage: diskrim show ID\n")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fail(2, "Invalid operation ID '%s'\n", args[0])
		}

		database := connect()
		op, err := database.GetOperation(id)
		bail(err)
		if op == nil {
			fail(1, "@R{!!! no such operation %d}\n", id)
		}

		snapshots, err := database.GetAllSnapshots(&db.SnapshotFilter{ForOperation: id})
		bail(err)

		if opts.JSON {
			fmt.Printf("%s\n", asJSON(struct {
				Operation *db.Operation  `json:"operation"`
				Snapshots []*db.Snapshot `json:"snapshots"`
			}{op, snapshots}))
			break
		}

		fmt.Printf("@B{Operation} #%d\n", op.ID)
		fmt.Printf("  kind:      %s\n", op.Kind)
		if op.Disk != "" {
			fmt.Printf("  disk:      %s\n", op.Disk)
		}
		if op.Partition != "" {
			fmt.Printf("  partition: %s\n", op.Partition)
		}
		fmt.Printf("  status:    %s\n", colorStatus(op.Status))
		fmt.Printf("  started:   %s\n", strftime(op.CreatedAt))
		fmt.Printf("  finished:  %s\n", strftime(op.CompletedAt))
		if op.Error != "" {
			fmt.Printf("  notes:     @R{%s}\n", op.Error)
		}
		if len(op.Params) != 0 {
			fmt.Printf("  params:    %s\n", asJSON(op.Params))
		}

		for _, snap := range snapshots {
			fmt.Printf("\n@B{Snapshot} %s (%s, taken %s)\n", snap.UUID, snap.Disk, strftime(snap.TakenAt))
			fmt.Printf("  table:       %s\n", snap.PartitionTable)
			fmt.Printf("  filesystems: %s\n", snap.FilesystemInfo)
		}

	/* }}} */
	case "capabilities": /* {{{ */
		if opts.Help {
			fmt.Printf("USAGE: @G{diskrim} @C{capabilities} [-p PLATFORM]\n")
			fmt.Printf("\n")
			fmt.Printf("  List the filesystems this build can format, resize, and\n")
			fmt.Printf("  repair, and the tools it drives to do so.\n")
			fmt.Printf("\n")
			fmt.Printf("  -p, --platform   Either linux or windows (default: linux).\n")
			fmt.Printf("\n")
			os.Exit(0)
		}
		if len(args) != 0 {
			fail(2, "Usage: diskrim capabilities [-p PLATFORM]\n")
		}

		platform := disk.PlatformLinux
		switch opts.Capabilities.Platform {
		case "", "linux":
		case "windows":
			platform = disk.PlatformWindows
		default:
			fail(2, "Invalid platform '%s' (must be linux or windows)\n", opts.Capabilities.Platform)
		}

		type capRow struct {
			Filesystem string `json:"filesystem"`
			Format     string `json:"format,omitempty"`
			Resize     string `json:"resize,omitempty"`
			Repair     string `json:"repair,omitempty"`
			MinSize    string `json:"min_size,omitempty"`
			MaxSize    string `json:"max_size,omitempty"`
		}
		var rows []capRow
		for _, fs := range capability.SupportedFilesystems(platform) {
			row := capRow{Filesystem: string(fs)}
			if c, ok := capability.Format(fs, platform); ok {
				row.Format = c.Tool()
			}
			if c, ok := capability.Resize(fs, platform, false); ok {
				row.Resize = c.Tool()
				if c.GrowOnly {
					row.Resize += " (grow only)"
				}
			}
			if c, ok := capability.Repair(fs, platform); ok {
				row.Repair = c.Tool()
			}
			if min := capability.MinimumSize(fs); min > 0 {
				row.MinSize = validate.FormatSize(min)
			}
			if max, ok := capability.MaximumSize(fs); ok {
				row.MaxSize = validate.FormatSize(max)
			}
			rows = append(rows, row)
		}

		if opts.JSON {
			fmt.Printf("%s\n", asJSON(rows))
			break
		}

		tbl := table.NewTable("Filesystem", "Format", "Resize", "Repair", "Min size", "Max size")
		for _, row := range rows {
			tbl.Row(row, row.Filesystem, row.Format, row.Resize, row.Repair, row.MinSize, row.MaxSize)
		}
		tbl.Output(os.Stdout)

	/* }}} */
	default:
		bail(fmt.Errorf("Unrecognized command '%s'", command))
	}
}

func connect() *db.DB {
	database := &db.DB{
		Driver: opts.Driver,
		DSN:    opts.DSN,
	}
	bail(database.Connect())
	return database
}

func strftime(epoch int64) string {
	if epoch == 0 {
		return "-"
	}
	return time.Unix(epoch, 0).Format("2006-01-02 15:04:05")
}
