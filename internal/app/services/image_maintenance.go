package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/schooldir/internal/pkg/filestorage"
	"github.com/yigit/schooldir/internal/pkg/logger"
)

// ImageReferences lists the image paths stored in school rows.
type ImageReferences interface {
	ImagePaths(ctx context.Context) ([]string, error)
}

// DefaultPruneMinAge keeps files that may belong to a submission still
// between writing its image and inserting its row.
const DefaultPruneMinAge = 10 * time.Minute

// PruneOptions controls PruneOrphanImages.
type PruneOptions struct {
	// DryRun reports orphans without deleting them.
	DryRun bool
	// MinAge skips files modified more recently than this.
	MinAge time.Duration
}

// PruneResult reports what PruneOrphanImages found and removed.
type PruneResult struct {
	Scanned  int
	Skipped  int
	Orphaned []string
	Removed  int
}

// PruneOrphanImages deletes files in the image directory that no school row
// references. Files are listed before the references are loaded, so a row
// committed in between protects its image.
func PruneOrphanImages(ctx context.Context, refs ImageReferences, storage filestorage.FileStorage, opts PruneOptions) (*PruneResult, error) {
	files, err := storage.ListImages()
	if err != nil {
		return nil, err
	}

	result := &PruneResult{Scanned: len(files)}
	cutoff := time.Now().Add(-opts.MinAge)
	candidates := make([]string, 0, len(files))
	for _, p := range files {
		modTime, err := storage.ModTime(p)
		if err != nil || modTime.After(cutoff) {
			result.Skipped++
			continue
		}
		candidates = append(candidates, p)
	}

	referenced, err := refs.ImagePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load referenced images: %w", err)
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, p := range referenced {
		keep[storage.GetFullPath(p)] = struct{}{}
	}

	var finalErr error
	for _, p := range candidates {
		if _, ok := keep[storage.GetFullPath(p)]; ok {
			continue
		}
		result.Orphaned = append(result.Orphaned, p)
		if opts.DryRun {
			continue
		}
		if err := storage.DeleteFile(p); err != nil {
			finalErr = errors.Join(finalErr, err)
			continue
		}
		result.Removed++
	}

	logger.Info().
		Int("scanned", result.Scanned).
		Int("skipped_recent", result.Skipped).
		Int("orphaned", len(result.Orphaned)).
		Int("removed", result.Removed).
		Bool("dry_run", opts.DryRun).
		Dur("min_age", opts.MinAge).
		Msg("Image pruning finished")
	return result, finalErr
}
