// Command migrate aplica las migraciones SQL embebidas.
//
//	migrate up
//	migrate down [pasos]
//	migrate status
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-extras/cobraflags"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/stockeasy/stockeasy-api/internal/infrastructure/postgres"
	"github.com/stockeasy/stockeasy-api/migrations"
	"github.com/stockeasy/stockeasy-api/pkg/config"
	"github.com/stockeasy/stockeasy-api/pkg/logger"
)

const databaseURLFlag = "database-url"

var rootFlags = map[string]cobraflags.Flag{
	databaseURLFlag: &cobraflags.StringFlag{
		Name:  databaseURLFlag,
		Value: "",
		Usage: "Connection string de PostgreSQL (por defecto DATABASE_URL o DB_*)",
	},
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Migraciones de la base de datos de StockEasy",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cobraflags.RegisterMap(root, rootFlags)

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica todas las migraciones pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m *postgres.Migrator) error {
				n, err := m.Up(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d migraciones aplicadas\n", n)
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down [pasos]",
		Short: "Revierte las últimas migraciones (1 por defecto)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("pasos inválidos: %q", args[0])
				}
				steps = n
			}
			return withMigrator(cmd.Context(), func(m *postgres.Migrator) error {
				n, err := m.Down(cmd.Context(), steps)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d migraciones revertidas\n", n)
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Lista las migraciones y si están aplicadas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m *postgres.Migrator) error {
				statuses, err := m.Status(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range statuses {
					mark := " "
					if s.Applied {
						mark = "x"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %04d %s\n", mark, s.Version, s.Name)
				}
				return nil
			})
		},
	})
	return root
}

func withMigrator(ctx context.Context, fn func(m *postgres.Migrator) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	log := logger.New(logger.Config{Env: os.Getenv("APP_ENV"), Level: os.Getenv("LOG_LEVEL"), Name: "migrate"})
	m, err := postgres.NewMigrator(pool, migrations.FS, log.Zerolog())
	if err != nil {
		return err
	}
	return fn(m)
}

// openPool usa --database-url si se indicó; si no, la configuración de la API.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if dsn := rootFlags[databaseURLFlag].GetString(); dsn != "" {
		return postgres.NewPoolFromDSN(ctx, dsn)
	}
	return postgres.NewPool(ctx, config.LoadDB())
}
