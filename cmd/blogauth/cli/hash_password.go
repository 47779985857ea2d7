package cli

import (
	"bufio"
	"fmt"
	"strings"

	auth "github.com/goliatone/go-blog-auth"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash of a password",
	Long:  `Print the bcrypt hash of a password. Without an argument the password is read from stdin.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return auth.ErrNoEmptyString
			}
			password = strings.TrimRight(line, "\r\n")
		}

		cost, _ := cmd.Flags().GetInt("cost")
		hash, err := auth.NewBcryptHasher(cost).HashPassword(password)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)

	hashPasswordCmd.Flags().Int("cost", auth.DefaultPasswordCost, "bcrypt cost")
}
