// Command minorm loads a single entity by primary key and prints it.
//
//	minorm find --config minorm.yaml --table person 1
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/shrek82/minorm"
	"github.com/shrek82/minorm/config"
)

// Person is the demo entity backing the person table.
type Person struct {
	minorm.Entity `jorm:"table:person"`
	ID            int64     `jorm:"pk column:id"`
	Name          string    `jorm:"column:name"`
	CreatedAt     time.Time `jorm:"column:created_at"`
}

type lookupFunc func(ctx context.Context, s *minorm.Session, id any) (any, bool, error)

// tables lists the entities the find command can load.
var tables = map[string]lookupFunc{
	"person": func(ctx context.Context, s *minorm.Session, id any) (any, bool, error) {
		return minorm.Lookup[Person](ctx, s, id)
	},
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "minorm",
		Short:         "minorm - load rows into entities by primary key",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	flags.String("driver", "", "database driver (sqlite3, sqlite, mysql, postgres, pgx)")
	flags.String("dsn", "", "data source name")
	flags.String("log-level", "", "log level (silent, error, warn, info)")
	flags.String("log-format", "", "log format (text, json)")
	flags.Duration("slow-threshold", 0, "warn about statements slower than this")

	root.AddCommand(newFindCmd(&cfgFile))
	return root
}

func newFindCmd(cfgFile *string) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "find <id>",
		Short: "Load one entity by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, ok := tables[strings.ToLower(table)]
			if !ok {
				return fmt.Errorf("unknown table %q (known: %s)", table, strings.Join(tableNames(), ", "))
			}

			cfg, err := config.LoadWithFlags(*cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			l := cfg.NewLogger()
			l.SetOutput(cmd.ErrOrStderr())

			factory, err := minorm.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.PoolOptions(),
				minorm.WithLogger(l), minorm.WithSlowThreshold(cfg.Log.SlowThreshold))
			if err != nil {
				return err
			}
			defer factory.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			session, err := factory.CreateSession(ctx)
			if err != nil {
				return err
			}
			defer session.Close()

			entity, found, err := lookup(ctx, session, parseID(args[0]))
			if err != nil {
				return err
			}
			if !found {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not found")
				return nil
			}
			return renderEntity(cmd.OutOrStdout(), entity)
		},
	}

	cmd.Flags().StringVar(&table, "table", "person", "entity table to query")
	return cmd
}

// parseID keeps numeric ids numeric so drivers compare them as integers.
func parseID(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

func tableNames() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	return names
}
