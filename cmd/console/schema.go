package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/infra"
	"github.com/xela07ax/storefront-console/internal/query"
	"github.com/xela07ax/storefront-console/internal/repository/sqlstore"
)

var schemaApply bool

var schemaCmd = &cobra.Command{
	Use:   "schema [mysql|postgres|sqlite]",
	Short: "Print or apply the storefront DDL",
	Long: `Schema prints CREATE TABLE IF NOT EXISTS statements for every storefront
table. With --apply the statements run against the configured database instead.

Example:
  console schema postgres
  console schema --apply`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaApply, "apply", false, "run the DDL against the configured database")
}

func runSchema(cmd *cobra.Command, args []string) error {
	if !schemaApply {
		name := "mysql"
		if len(args) == 1 {
			name = args[0]
		}
		dialect, err := query.ParseDialect(name)
		if err != nil {
			return err
		}
		for _, stmt := range sqlstore.DDL(dialect) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", stmt)
		}
		return nil
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, dialect, err := infra.OpenDatabase(cmd.Context(), cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlstore.Bootstrap(cmd.Context(), db, dialect); err != nil {
		return err
	}
	logger.Info("schema applied", zap.String("dialect", string(dialect)), zap.Strings("tables", sqlstore.TableNames()))
	return nil
}
