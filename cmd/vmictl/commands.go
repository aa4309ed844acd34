package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/backup"
	"github.com/vmi/dashboard/internal/clients/eodhd"
	"github.com/vmi/dashboard/internal/config"
	"github.com/vmi/dashboard/internal/di"
	"github.com/vmi/dashboard/internal/modules/gauge"
	"github.com/vmi/dashboard/internal/modules/prices"
	"github.com/vmi/dashboard/pkg/logger"
)

var commands = []subcommands.Command{
	&migrateCmd{},
	&quoteCmd{},
	&gaugeCmd{},
	&summaryCmd{},
	&backupCmd{},
}

func cliLogger(cfg *config.Config) zerolog.Logger {
	level := "warn"
	if cfg != nil && cfg.LogLevel == "debug" {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Pretty: true, Output: os.Stderr})
}

// --- migrateCmd ---

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "applies the database schema" }
func (*migrateCmd) Usage() string {
	return `migrate

Opens the database named by DB_DRIVER / DATABASE_URL / DATA_DIR and creates any missing tables and indexes.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	db, err := di.InitializeDatabase(cfg, cliLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	fmt.Printf("Schema applied (%s)\n", db.Dialect())
	return subcommands.ExitSuccess
}

// --- quoteCmd ---

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetches live quotes from EODHD" }
func (*quoteCmd) Usage() string {
	return `quote SYMBOL [SYMBOL...]

Fetches every symbol concurrently and prints price, quote date and staleness. Symbols without an exchange suffix are looked up on .US.
`
}
func (*quoteCmd) SetFlags(*flag.FlagSet) {}

func (*quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := prices.ParseTickers(strings.Join(f.Args(), ","))
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one symbol is required.")
		return subcommands.ExitUsageError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	log := cliLogger(cfg)

	client := eodhd.NewClient(cfg.EODHDBaseURL, cfg.EODHDToken, cfg.QuoteTimeout, log)
	quotes, errs := prices.NewService(client, log).Lookup(ctx, symbols)

	status := subcommands.ExitSuccess
	for _, sym := range symbols {
		if q, ok := quotes[sym]; ok {
			stale := ""
			if q.Stale {
				stale = " (stale)"
			}
			fmt.Printf("%-10s %12.4f  %s%s\n", sym, q.Price, q.AsOf, stale)
			continue
		}
		fmt.Printf("%-10s %12s  %s\n", sym, "—", errs[sym])
		status = subcommands.ExitFailure
	}
	return status
}

// --- gaugeCmd ---

type gaugeCmd struct {
	metric string
	value  string
	config string
}

func (*gaugeCmd) Name() string     { return "gauge" }
func (*gaugeCmd) Synopsis() string { return "evaluates a value against a metric's gauge bands" }
func (*gaugeCmd) Usage() string {
	return `gauge -metric <key> -value <number> [-config metrics.yaml]

Prints the needle angle, zone and formatted value for the metric. Without -metric, lists the known metrics.
`
}
func (c *gaugeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.metric, "metric", "", "Metric key, e.g. vix or breadth.")
	f.StringVar(&c.value, "value", "", "Reading to place on the gauge.")
	f.StringVar(&c.config, "config", os.Getenv("METRICS_CONFIG"), "Optional YAML file overriding the built-in bands.")
}

func (c *gaugeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	catalog, err := gauge.LoadCatalog(c.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.metric == "" {
		keys := make([]string, 0)
		for _, m := range catalog.Metrics() {
			keys = append(keys, m.Key)
		}
		sort.Strings(keys)
		fmt.Println(strings.Join(keys, "\n"))
		return subcommands.ExitSuccess
	}

	cfg, ok := catalog.Lookup(c.metric)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown metric %q\n", c.metric)
		return subcommands.ExitUsageError
	}
	value, err := strconv.ParseFloat(c.value, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -value must be a number: %v\n", err)
		return subcommands.ExitUsageError
	}

	fmt.Println(describeTile(gauge.BuildTile(cfg, &value, "")))
	return subcommands.ExitSuccess
}

func describeTile(t gauge.Tile) string {
	zone := t.Zone
	if zone == "" {
		zone = "out of range"
	}
	return fmt.Sprintf("%s: %s  angle %.1f°  zone %s", t.Title, t.DisplayValue, t.Angle, zone)
}

// --- summaryCmd ---

type summaryCmd struct {
	raw bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "prints holdings and totals valued at live prices" }
func (*summaryCmd) Usage() string {
	return `summary [-raw]

Values every stored holding against live quotes and prints the result as markdown.
`
}
func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Print plain markdown instead of rendering it for the terminal.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	container, err := di.Wire(cfg, cliLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	summary, err := container.HoldingService.Summary(ctx, cfg.DefaultUserID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building summary: %v\n", err)
		return subcommands.ExitFailure
	}

	md := summaryMarkdown(summary)
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}

	out, err := glamour.Render(md, "dark")
	if err != nil {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

// --- backupCmd ---

type backupCmd struct {
	list bool
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "uploads a database snapshot to the backup bucket" }
func (*backupCmd) Usage() string {
	return `backup [-list]

Snapshots the SQLite database and uploads it to BACKUP_S3_BUCKET. With -list, prints the stored backups instead.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "list stored backups")
}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if !cfg.BackupEnabled() {
		fmt.Fprintln(os.Stderr, "Error: BACKUP_S3_BUCKET is not set.")
		return subcommands.ExitFailure
	}
	log := cliLogger(cfg)

	store, err := di.NewBackupStore(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	db, err := di.InitializeDatabase(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	svc := backup.NewService(db, store, filepath.Join(cfg.DataDir, "backups"), log)

	if c.list {
		backups, err := svc.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		for _, b := range backups {
			fmt.Printf("%-40s %10s  %s\n", b.Key, humanize.Bytes(uint64(b.SizeBytes)), humanize.Time(b.Timestamp))
		}
		return subcommands.ExitSuccess
	}

	key, err := svc.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Uploaded %s\n", key)
	return subcommands.ExitSuccess
}
