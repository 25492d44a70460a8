package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tordrt/schoolschema"
	"github.com/tordrt/schoolschema/internal/config"
	"github.com/tordrt/schoolschema/internal/db"
	"github.com/tordrt/schoolschema/internal/ddl"
	"github.com/tordrt/schoolschema/internal/kpi"
	"github.com/tordrt/schoolschema/internal/logger"
	"github.com/tordrt/schoolschema/internal/migrate"
)

// errDrift makes verify exit non-zero once the differences are printed
var errDrift = errors.New("database does not match the declared schema")

type app struct {
	configPath string
	dbURL      string
	cfg        *config.Config
	log        *zap.Logger
}

// output flags shared by describe and inspect
type outputFlags struct {
	format     string
	outputFile string
	outputDir  string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "text", "Output format: text or markdown")
	cmd.Flags().StringVarP(&o.outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&o.outputDir, "output-dir", "d", "", "Output directory for one file per table")
}

func (o *outputFlags) write(cmd *cobra.Command, s func(*schoolschema.OutputOptions) error) error {
	if o.outputDir != "" && o.outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}
	opts := &schoolschema.OutputOptions{Writer: cmd.OutOrStdout(), OutputDir: o.outputDir, Format: o.format}

	if o.outputFile != "" {
		f, err := os.Create(o.outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		opts.Writer = f
	}
	return s(opts)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "schoolschema",
		Short:         "Manage the school administration database schema",
		Long:          `schoolschema applies and reverts the school schema migrations on PostgreSQL, MySQL or SQLite, verifies a live database against the declared schema, documents it and reports dashboard indicators.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./schoolschema.yaml if present)")
	root.PersistentFlags().StringVar(&a.dbURL, "db-url", "", "Database URL: postgres://, mysql:// or sqlite://")

	root.AddCommand(
		a.upCmd(),
		a.downCmd(),
		a.statusCmd(),
		a.verifyCmd(),
		a.describeCmd(),
		a.inspectCmd(),
		a.kpiCmd(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbURL != "" {
		cfg.Database.URL = a.dbURL
	}
	a.cfg = cfg

	a.log, err = logger.New(cfg.Log)
	return err
}

// connect opens the configured database; the caller closes it
func (a *app) connect(ctx context.Context) (*db.Conn, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	return schoolschema.Connect(ctx, a.cfg.Database.URL, a.cfg.Database.Schema)
}

func (a *app) upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			n, err := schoolschema.ApplySchema(cmd.Context(), a.cfg.Database.URL, a.log)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
			return nil
		},
	}
}

func (a *app) downCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert applied migrations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 0 {
				return fmt.Errorf("--steps must not be negative")
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			n, err := schoolschema.RevertSchema(cmd.Context(), a.cfg.Database.URL, steps, a.log)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reverted %d migration(s)\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to revert (0 reverts all)")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			status, err := schoolschema.MigrationStatus(cmd.Context(), a.cfg.Database.URL)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "VERSION\tNAME\tSTATE")
			for _, st := range status {
				state := "pending"
				switch {
				case st.Dirty:
					state = "dirty"
				case st.Applied:
					state = "applied"
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", st.Version, st.Name, state)
			}
			return w.Flush()
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Compare the live database with the declared schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			drifts, err := schoolschema.VerifySchema(cmd.Context(), a.cfg.Database.URL,
				&schoolschema.Options{SchemaName: a.cfg.Database.Schema})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(drifts) == 0 {
				_, _ = fmt.Fprintln(out, "Schema matches")
				return nil
			}
			for _, d := range drifts {
				_, _ = fmt.Fprintln(out, d.String())
			}
			a.log.Warn("schema drift detected", zap.Int("differences", len(drifts)))
			return errDrift
		},
	}
}

func (a *app) describeCmd() *cobra.Command {
	var dialect string
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Document the declared schema without connecting to a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dialect == "" {
				dialect = dialectFromURL(a.cfg.Database.URL)
			}
			declared, err := schoolschema.DeclaredSchema(dialect)
			if err != nil {
				return err
			}
			return out.write(cmd, func(opts *schoolschema.OutputOptions) error {
				return schoolschema.FormatSchema(declared, opts)
			})
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", "", "Render column types for postgres, mysql or sqlite (default: from --db-url, else postgres)")
	out.register(cmd)
	return cmd
}

func (a *app) inspectCmd() *cobra.Command {
	var tables, exclude, schemaName string
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Document the live schema of a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if schemaName == "" {
				schemaName = a.cfg.Database.Schema
			}
			s, err := schoolschema.ExtractSchema(cmd.Context(), a.cfg.Database.URL, &schoolschema.Options{
				Tables:        parseTableList(tables),
				ExcludeTables: parseTableList(exclude),
				SchemaName:    schemaName,
			})
			if err != nil {
				return fmt.Errorf("failed to extract schema: %w", err)
			}
			a.log.Debug("schema extracted", zap.Int("tables", len(s.Tables)))
			return out.write(cmd, func(opts *schoolschema.OutputOptions) error {
				return schoolschema.FormatSchema(s, opts)
			})
		},
	}
	cmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	cmd.Flags().StringVarP(&exclude, "exclude", "x", migrate.TrackingTable, "Tables to leave out (comma-separated)")
	cmd.Flags().StringVarP(&schemaName, "schema", "s", "", "PostgreSQL schema or MySQL database (default: from config)")
	out.register(cmd)
	return cmd
}

func (a *app) kpiCmd() *cobra.Command {
	var window time.Duration
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Report dashboard indicators for the last window against the one before",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if window == 0 {
				window = a.cfg.KPI.Window
			}
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			trends, err := kpi.New(conn.DB, conn.Dialect, a.log).Summary(cmd.Context(), time.Now(), window)
			if err != nil {
				return err
			}
			return writeTrends(cmd.OutOrStdout(), trends, asJSON)
		},
	}
	cmd.Flags().DurationVarP(&window, "window", "w", 0, "Window length, e.g. 168h (default: kpi.window from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func writeTrends(out io.Writer, trends []kpi.Trend, asJSON bool) error {
	if asJSON {
		b, err := sonic.ConfigStd.MarshalIndent(trends, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "INDICATOR\tCURRENT\tPREVIOUS\tDELTA\t")
	for _, t := range trends {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t\n", t.Name, t.Current, t.Previous, t.Delta, arrow(t.Direction))
	}
	return w.Flush()
}

func arrow(d kpi.Direction) string {
	switch d {
	case kpi.Up:
		return "↑"
	case kpi.Down:
		return "↓"
	default:
		return "→"
	}
}

// dialectFromURL picks the dialect named by a database URL, defaulting
// to PostgreSQL
func dialectFromURL(url string) string {
	switch {
	case strings.HasPrefix(url, "mysql://"):
		return ddl.MySQLName
	case strings.HasPrefix(url, "sqlite://"):
		return ddl.SQLiteName
	default:
		return ddl.PostgresName
	}
}

// parseTableList splits a comma-separated flag value, dropping blanks
func parseTableList(tables string) []string {
	if tables == "" {
		return nil
	}
	var list []string
	for _, t := range strings.Split(tables, ",") {
		if t = strings.TrimSpace(t); t != "" {
			list = append(list, t)
		}
	}
	return list
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
