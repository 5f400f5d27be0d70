package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hjs-etl/internal/audit"
	"github.com/hjs-etl/internal/config"
	"github.com/hjs-etl/internal/db"
	"github.com/hjs-etl/internal/debug"
	"github.com/hjs-etl/internal/etl"
	"github.com/hjs-etl/internal/logger"
	"github.com/hjs-etl/internal/symspell"
	"github.com/hjs-etl/internal/warehouse"
)

var (
	settings   config.Settings
	appLog     *logger.Logger
	localDebug bool
)

func main() {
	var err error

	settings, err = config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLog, err = logger.New(settings.LogMode, settings.LogFile)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer appLog.Sync()
	debug.SetLogger(appLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "etl",
		Short:        "HJS campaign warehouse ETL",
		Long:         `Loads DIVIPOLE polling places, company registries, census, contacts, groups and campaign tracking into the warehouse`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&localDebug, "debug", settings.Debug, "Enable debug output")

	rootCmd.AddCommand(createPingCmd())
	rootCmd.AddCommand(createDBCmd())
	rootCmd.AddCommand(createLoadCmd())
	rootCmd.AddCommand(createRunsCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		appLog.Error("command failed", "error", err)
		appLog.Sync()
		os.Exit(1)
	}
}

// connect opens the warehouse with the configured retry policy.
func connect(ctx context.Context) (*db.Connection, error) {
	fmt.Printf("Connecting to %s:%s/%s...\n", settings.DBHost, settings.DBPort, settings.DBName)
	return db.NewConnection(ctx, settings)
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			fmt.Println("Database connection successful!")
			return printCounts(cmd.Context(), conn)
		},
	}
}

func printCounts(ctx context.Context, conn *db.Connection) error {
	counts, err := db.TableCounts(ctx, conn.DB)
	if err != nil {
		return err
	}
	for _, c := range counts {
		if c.Err != nil {
			fmt.Printf("✗ %s: %v\n", c.Table, c.Err)
			continue
		}
		fmt.Printf("✓ %s: %d rows\n", c.Table, c.Rows)
	}
	return nil
}

// createDBCmd creates the database management subcommand
func createDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "apply-schema",
		Short: "Create the warehouse tables that do not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()
			return db.ApplySchema(cmd.Context(), conn.DB)
		},
	})

	dbCmd.AddCommand(&cobra.Command{
		Use:   "counts",
		Short: "Show row counts of the warehouse tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()
			return printCounts(cmd.Context(), conn)
		},
	})

	return dbCmd
}

// withPipeline connects and runs fn with a pipeline wired to the warehouse
// and the load-run ledger.
func withPipeline(ctx context.Context, fn func(p *etl.Pipeline) error) error {
	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	p, err := etl.NewPipeline(warehouse.NewStore(conn.DB, appLog), etl.Options{
		Runs:    audit.NewTracker(conn.DB, localDebug),
		Log:     appLog,
		Out:     os.Stdout,
		DataDir: settings.DataDir,
		Suggest: symspell.LoadConfigFromEnv(),
	})
	if err != nil {
		return err
	}
	return fn(p)
}

// requireFile fails before any connection is made when path is missing.
func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	return nil
}

type loadFunc func(p *etl.Pipeline, ctx context.Context, localDebug bool, path string) (*etl.LoadReport, error)

// createFileLoadCmd builds a load subcommand over one input file, defaulting
// to defaultPath when no argument is given.
func createFileLoadCmd(use, short, defaultPath string, load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [filename]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultPath
			if len(args) == 1 {
				path = settings.DataFile(args[0])
			}
			if err := requireFile(path); err != nil {
				return err
			}
			return withPipeline(cmd.Context(), func(p *etl.Pipeline) error {
				_, err := load(p, cmd.Context(), localDebug, path)
				return err
			})
		},
	}
}

// createLoadCmd creates the load subcommand
func createLoadCmd() *cobra.Command {
	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Load source files into the warehouse",
		Long:  `Load one source, or every source in dependency order with "load all"`,
	}

	files := etl.DefaultFiles(settings.DataDir, settings.DivipolePDF)

	loadCmd.AddCommand(createFileLoadCmd("divipole", "Load DIVIPOLE polling places (PDF or extracted CSV)", files.Divipole, (*etl.Pipeline).LoadDivipole))
	loadCmd.AddCommand(createFileLoadCmd("companies", "Load the company registry", files.Companies, (*etl.Pipeline).LoadCompanies))
	loadCmd.AddCommand(createFileLoadCmd("employees", "Load company employees", files.Employees, (*etl.Pipeline).LoadEmployees))
	loadCmd.AddCommand(createFileLoadCmd("legal-reps", "Load company legal representatives", files.LegalReps, (*etl.Pipeline).LoadLegalReps))
	loadCmd.AddCommand(createFileLoadCmd("census", "Bulk load the electoral census", files.Census, (*etl.Pipeline).LoadCensus))
	loadCmd.AddCommand(createFileLoadCmd("contacts", "Load the campaign contacts workbook", files.Contacts, (*etl.Pipeline).LoadContacts))
	loadCmd.AddCommand(createFileLoadCmd("relations", "Load a person-group relations file", files.Relations, (*etl.Pipeline).LoadRelations))
	loadCmd.AddCommand(createFileLoadCmd("tracking", "Replace campaign candidate and leader tracking", files.Tracking, (*etl.Pipeline).LoadTracking))
	loadCmd.AddCommand(createLoadGroupsCmd(files.Relations))
	loadCmd.AddCommand(createLoadAllCmd(files))

	return loadCmd
}

func createLoadGroupsCmd(defaultOut string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Build the group vocabulary and load person-group relations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd.Context(), func(p *etl.Pipeline) error {
				_, err := p.LoadGroups(cmd.Context(), localDebug, out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", defaultOut, "Where to write the deduplicated relations CSV (empty to skip)")
	return cmd
}

func createLoadAllCmd(files etl.Files) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every load in dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			return withPipeline(cmd.Context(), func(p *etl.Pipeline) error {
				reports, err := p.LoadAll(cmd.Context(), localDebug, files)

				fmt.Println("\n=== SUMMARY ===")
				for _, r := range reports {
					fmt.Println(r.Summary())
				}
				fmt.Printf("Total time: %v\n", time.Since(start).Round(time.Second))
				return err
			})
		},
	}
}

// createRunsCmd lists the load-run ledger
func createRunsCmd() *cobra.Command {
	var source string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent load runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			entries, err := audit.NewTracker(conn.DB, localDebug).RecentRuns(cmd.Context(), source, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No load runs recorded.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-12s %s  read %d, inserted %d, updated %d, unchanged %d, skipped %d, skipped_fk %d, nulled_fk %d, errors %d (%v)\n",
					e.RunID, e.Source, e.StartedAt.Format(time.DateTime), e.Read, e.Inserted, e.Updated,
					e.Unchanged, e.Skipped, e.SkippedFK, e.NulledFK, e.Errors, e.Duration().Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Only show runs of this source")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}
