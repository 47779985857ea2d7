package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant or revoke the administrator flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		repo, closeDB, err := openRepository(cmd, opts)
		if err != nil {
			return err
		}
		defer closeDB()

		principal, err := repo.Principals().FindByEmail(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		revoke, _ := cmd.Flags().GetBool("revoke")
		if err := repo.Principals().SetAdmin(cmd.Context(), principal.ID, !revoke); err != nil {
			return err
		}

		state := "granted"
		if revoke {
			state = "revoked"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "administrator %s for %s (%s)\n", state, principal.Email, principal.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd)

	promoteCmd.Flags().Bool("revoke", false, "remove the administrator flag instead")
}
