package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yigit/schooldir/internal/app/repositories"
	"github.com/yigit/schooldir/internal/app/services"
	"github.com/yigit/schooldir/internal/bootstrap"
)

var (
	pruneDryRun bool
	pruneMinAge time.Duration
)

var pruneCmd = &cobra.Command{
	Use:   "prune-images",
	Short: "Remove stored images that no school references",
	Long: `Scans the public image directory and deletes every file whose path is
not stored in any school row. Files younger than --min-age are left alone
so that submissions still being saved keep their image.
  --dry-run   only list the files that would be removed
  --min-age   skip files modified within this duration (default 10m)`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "list orphaned images without deleting them")
	pruneCmd.Flags().DurationVar(&pruneMinAge, "min-age", services.DefaultPruneMinAge, "skip images modified more recently than this")
}

func runPrune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := connect(ctx, false)
	if err != nil {
		return err
	}
	defer env.database.Close()

	storage, err := bootstrap.NewFileStorage(env.cfg)
	if err != nil {
		return err
	}

	repo := repositories.NewSchoolRepository(env.database.Pool)
	result, err := services.PruneOrphanImages(ctx, repo, storage, services.PruneOptions{
		DryRun: pruneDryRun,
		MinAge: pruneMinAge,
	})
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, p := range result.Orphaned {
		fmt.Fprintln(out, p)
	}
	if pruneDryRun {
		fmt.Fprintf(out, "%d of %d images are orphaned, %d too recent to check (dry run, nothing removed)\n",
			len(result.Orphaned), result.Scanned, result.Skipped)
		return nil
	}
	fmt.Fprintf(out, "Removed %d of %d images, %d too recent to check\n", result.Removed, result.Scanned, result.Skipped)
	return nil
}
