package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	env, err := connect(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer env.database.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "Database schema up to date")
	return nil
}
