package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ely.by/textures/internal/db/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates or updates the PostgreSQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		container := shouldGetContainer()

		var ctx context.Context
		err := container.Resolve(&ctx)
		if err != nil {
			return err
		}

		var pg *postgres.Postgres
		err = container.Resolve(&pg)
		if err != nil {
			return err
		}

		defer pg.Close()

		err = pg.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("unable to apply the schema: %w", err)
		}

		fmt.Println("Schema is up to date")

		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
