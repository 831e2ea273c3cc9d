package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dataforgoodfr/shiftdataportal-sub001/api/handlers"
	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/auth"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/charts"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/store"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/urlstate"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

// Run executes portalctl with the process arguments and returns the exit
// code.
func Run() int {
	cmd := NewRootCommand(os.Stdout, utils.NewLoggerTo(os.Stderr))
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

type env struct {
	out    io.Writer
	logger *utils.Logger
	sqlite string
}

func NewRootCommand(out io.Writer, logger *utils.Logger) *cobra.Command {
	e := &env{out: out, logger: logger}
	root := &cobra.Command{
		Use:          "portalctl",
		Short:        "Maintenance commands for the Shift dataportal",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&e.sqlite, "sqlite", "", "use the sqlite file at this path instead of the configured database")
	root.AddCommand(e.importCommand(), e.hashKeyCommand(), e.chartOptionsCommand(), e.migrateCommand())
	return root
}

func (e *env) openDB(ctx context.Context) (*sql.DB, *config.AppConfig, error) {
	var (
		db  *sql.DB
		cfg *config.AppConfig
		err error
	)
	if e.sqlite != "" {
		cfg = &config.AppConfig{DBDriver: store.DriverSQLite, DBPath: e.sqlite}
		db, err = store.OpenSQLite(e.sqlite, e.logger)
	} else {
		cfg, err = config.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("config: %w", err)
		}
		db, err = store.NewDB(cfg, e.logger)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	if err := store.ApplyMigrations(ctx, db, e.logger); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return db, cfg, nil
}

func loadCatalog(cfg *config.AppConfig) (*dataset.Catalog, error) {
	if cfg == nil {
		return dataset.DefaultCatalog()
	}
	return dataset.LoadCatalog(cfg.DatasetsFile)
}

func (e *env) importCommand() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Load <dataset>.csv, <dataset>.md and multiselect_groups.csv files into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, cfg, err := e.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			im := series.NewImporter(catalog, store.NewObservationsStore(db), e.logger)
			report, err := im.ImportDir(ctx, args[0], replace)
			if err != nil {
				return err
			}
			return writeJSONTo(e.out, report, true)
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete the existing rows of every imported dataset first")
	return cmd
}

func (e *env) hashKeyCommand() *cobra.Command {
	var key, pepper string
	cmd := &cobra.Command{
		Use:   "hash-key",
		Short: "Hash an admin key and print the config block that accepts it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			generated := false
			if strings.TrimSpace(key) == "" {
				k, err := auth.GenerateKey()
				if err != nil {
					return err
				}
				key = k
				generated = true
			}
			hash, err := auth.HashKey(key, pepper)
			if err != nil {
				return err
			}
			block := map[string]any{"admin": map[string]string{
				"key_hash": hash.Hash,
				"key_salt": hash.Salt,
			}}
			if generated {
				fmt.Fprintf(e.out, "# generated key, store it now: %s\n", key)
			}
			enc := yaml.NewEncoder(e.out)
			enc.SetIndent(2)
			if err := enc.Encode(block); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "key to hash; a random one is generated when empty")
	cmd.Flags().StringVar(&pepper, "pepper", os.Getenv("DATAPORTAL_ADMIN_PEPPER"), "pepper mixed into the hash")
	return cmd
}

func (e *env) chartOptionsCommand() *cobra.Command {
	var (
		slug   string
		query  string
		input  string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "chart-options",
		Short: "Print the chart options of a dataset selection or of a JSON chart input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input != "" {
				raw, err := os.ReadFile(input)
				if err != nil {
					return err
				}
				var in charts.Input
				if err := json.Unmarshal(raw, &in); err != nil {
					return fmt.Errorf("decode %s: %w", input, err)
				}
				return writeJSONTo(e.out, charts.Build(in), pretty)
			}
			if slug == "" {
				return fmt.Errorf("--dataset or --input is required")
			}
			ctx := cmd.Context()
			db, cfg, err := e.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			p, ok := catalog.Get(slug)
			if !ok {
				return fmt.Errorf("%w: %s", series.ErrUnknownDataset, slug)
			}
			values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			state := urlstate.NewCodec(p, e.logger).Parse(values)
			client := series.NewClient(catalog, store.NewObservationsStore(db), series.Options{}, e.logger)
			res, err := client.Dimension(ctx, slug, handlers.QueryFor(p, state))
			if err != nil {
				return err
			}
			return writeJSONTo(e.out, charts.Build(handlers.ChartInput(p, state, res)), pretty)
		},
	}
	cmd.Flags().StringVar(&slug, "dataset", "", "dataset slug")
	cmd.Flags().StringVar(&query, "query", "", "page query string, e.g. dimension=total&group-names=France")
	cmd.Flags().StringVar(&input, "input", "", "JSON chart input file; no database access")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the output")
	return cmd
}

func (e *env) migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and print the migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, _, err := e.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			status, err := store.GetMigrationStatus(ctx, db)
			if err != nil {
				return err
			}
			return writeJSONTo(e.out, status, true)
		},
	}
	return cmd
}

func writeJSONTo(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
