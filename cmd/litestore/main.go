package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/koba/litestore/internal/config"
	"github.com/koba/litestore/internal/cursor"
	"github.com/koba/litestore/internal/database"
	"github.com/koba/litestore/internal/query"
	"github.com/koba/litestore/internal/schema"
)

var (
	columns   []string
	orderBy   string
	desc      bool
	limit     int
	asSQL     bool
	stmtsFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "litestore",
	Short:         "Typed SQLite storage tool",
	Long:          `Inspect and modify a litestore SQLite database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the schema version (PRAGMA user_version)",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

var versionSetCmd = &cobra.Command{
	Use:   "set <version>",
	Short: "Store a new schema version",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionSet,
}

var execCmd = &cobra.Command{
	Use:   "exec [statements]",
	Short: "Run statements inside one transaction",
	Long:  `Run SQL statements wrapped in BEGIN TRANSACTION / COMMIT. Statements come from the argument or --file ("-" for stdin).`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExec,
}

var dumpCmd = &cobra.Command{
	Use:   "dump <table>",
	Short: "Print the rows of a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

var countCmd = &cobra.Command{
	Use:   "count <table>",
	Short: "Print the number of rows in a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runCount,
}

func init() {
	rootCmd.PersistentFlags().String("path", "litestore.db", "Database file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	execCmd.Flags().StringVar(&stmtsFile, "file", "", "Read statements from a file")

	dumpCmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to print (default: all)")
	dumpCmd.Flags().StringVar(&orderBy, "order", "", "Column to order by")
	dumpCmd.Flags().BoolVar(&desc, "desc", false, "Order descending")
	dumpCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows (default: unlimited)")
	dumpCmd.Flags().BoolVar(&asSQL, "sql", false, "Print rows as INSERT statements")

	versionCmd.AddCommand(versionSetCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(countCmd)
}

func openDatabase(cmd *cobra.Command) (*database.SQLite, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, err := database.Open(database.Config{Path: cfg.Path, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := db.UserVersion()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}

func runVersionSet(cmd *cobra.Command, args []string) error {
	version, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}

	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.SetUserVersion(int32(version))
}

func runExec(cmd *cobra.Command, args []string) error {
	var statements string
	switch {
	case len(args) == 1:
		statements = args[0]
	case stmtsFile == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		statements = string(b)
	case stmtsFile != "":
		b, err := os.ReadFile(stmtsFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", stmtsFile, err)
		}
		statements = string(b)
	default:
		return fmt.Errorf("no statements given")
	}

	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.ExecuteTransaction(strings.TrimSpace(statements))
}

func runDump(cmd *cobra.Command, args []string) error {
	projection := query.All()
	if len(columns) > 0 {
		projection = query.Some(columns...)
	}
	q := query.From(args[0]).Select(projection)
	if orderBy != "" {
		q = q.OrderBy(orderBy, !desc)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	var (
		names  []string
		rows   [][]schema.Value
		rowErr error
	)
	err = db.Iterate(q, func(c *cursor.Cursor) bool {
		if names == nil {
			names = c.Columns()
			if !asSQL {
				fmt.Fprintln(out, strings.Join(names, " | "))
			}
		}
		values := make([]schema.Value, 0, c.Len())
		for {
			v, err := c.Next()
			if errors.Is(err, cursor.ErrEndOfRow) {
				break
			}
			if err != nil {
				rowErr = err
				return false
			}
			values = append(values, v)
		}
		if asSQL {
			rows = append(rows, values)
			return true
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = v.String()
		}
		fmt.Fprintln(out, strings.Join(parts, " | "))
		return true
	})
	if err != nil {
		return err
	}
	if rowErr != nil || !asSQL || len(rows) == 0 {
		return rowErr
	}

	stmts, err := query.From(args[0]).Insert(names...).Rows(rows...).Statement()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, stmts)
	return nil
}

func runCount(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := database.LoadScalar[int64](db, query.From(args[0]).Select(query.Some("count(*)")))
	if err != nil {
		return err
	}
	var n int64
	if count != nil {
		n = *count
	}
	fmt.Fprintln(cmd.OutOrStdout(), n)
	return nil
}
