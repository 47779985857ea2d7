package cli

import (
	"fmt"

	auth "github.com/goliatone/go-blog-auth"
	"github.com/goliatone/go-blog-auth/migrations"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		db, err := auth.OpenDatabase(opts.DatabaseDriver, opts.DatabaseDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		dialect := auth.GooseDialect(db)

		if down, _ := cmd.Flags().GetBool("down"); down {
			if err := migrations.Down(cmd.Context(), db.DB, dialect); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "rolled back last migration")
			return nil
		}

		if err := migrations.Up(cmd.Context(), db.DB, dialect); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("down", false, "roll back the last migration")
}
