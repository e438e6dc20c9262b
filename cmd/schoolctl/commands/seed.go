package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yigit/schooldir/internal/app/repositories"
	"github.com/yigit/schooldir/internal/bootstrap"
	"github.com/yigit/schooldir/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo schools into an empty directory",
	Long: `Inserts a fixed set of demo schools, each with a generated placeholder
photo. Nothing happens when the directory already has schools.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := connect(ctx, true)
	if err != nil {
		return err
	}
	defer env.database.Close()

	storage, err := bootstrap.NewFileStorage(env.cfg)
	if err != nil {
		return err
	}

	repo := repositories.NewSchoolRepository(env.database.Pool)
	created, err := seed.CreateDemoSchools(ctx, repo, storage, env.log)
	if err != nil {
		return fmt.Errorf("seed failed after %d schools: %w", created, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %d demo schools\n", created)
	return nil
}
