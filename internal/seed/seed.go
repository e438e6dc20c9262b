package seed

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/schooldir/internal/app/models"
	"github.com/yigit/schooldir/internal/pkg/apperrors"
	"github.com/yigit/schooldir/internal/pkg/filestorage"
	"github.com/yigit/schooldir/internal/pkg/imageproc"
)

// SchoolWriter is the repository surface the seeder needs.
type SchoolWriter interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, school *appModels.School) error
}

type demoSchool struct {
	school appModels.School
	color  color.NRGBA
}

var demoSchools = []demoSchool{
	{appModels.School{Name: "Green Valley Public School", Address: "12 Park Road, Kothrud", City: "Pune", State: "Maharashtra", Contact: 2025431234, EmailID: "office@greenvalley.example.com"}, color.NRGBA{R: 76, G: 153, B: 92, A: 255}},
	{appModels.School{Name: "St. Xavier's High School", Address: "5 Mahapalika Marg, Fort", City: "Mumbai", State: "Maharashtra", Contact: 2226201234, EmailID: "admin@stxaviers.example.com"}, color.NRGBA{R: 52, G: 101, B: 164, A: 255}},
	{appModels.School{Name: "Delhi Modern Academy", Address: "44 Ring Road, Lajpat Nagar", City: "Delhi", State: "Delhi", Contact: 1126431234, EmailID: "contact@dma.example.com"}, color.NRGBA{R: 196, G: 80, B: 64, A: 255}},
	{appModels.School{Name: "Lakeview International", Address: "8 Lake Road, Ballygunge", City: "Kolkata", State: "West Bengal", Contact: 3324601234, EmailID: "hello@lakeview.example.com"}, color.NRGBA{R: 64, G: 160, B: 176, A: 255}},
	{appModels.School{Name: "Sunrise Convent School", Address: "21 MG Road, Indiranagar", City: "Bengaluru", State: "Karnataka", Contact: 8025201234, EmailID: "info@sunrise.example.com"}, color.NRGBA{R: 232, G: 168, B: 56, A: 255}},
	{appModels.School{Name: "Riverside Senior Secondary", Address: "3 Boat Club Road, Adyar", City: "Chennai", State: "Tamil Nadu", Contact: 4424901234, EmailID: "desk@riverside.example.com"}, color.NRGBA{R: 128, G: 96, B: 160, A: 255}},
}

const placeholderWidth, placeholderHeight = 640, 480

// CreateDemoSchools fills an empty directory with demo schools, each with a
// generated placeholder photo. It does nothing when any school exists and
// returns the number of rows inserted.
func CreateDemoSchools(ctx context.Context, repo SchoolWriter, storage filestorage.FileStorage, lgr zerolog.Logger) (int, error) {
	existing, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count schools: %w", err)
	}
	if existing > 0 {
		lgr.Info().Int64("schools", existing).Msg("Directory already populated, skipping demo data")
		return 0, nil
	}

	lgr.Info().Int("schools", len(demoSchools)).Msg("Creating demo schools...")
	created := 0
	var finalErr error // collect failures without stopping the process

	for _, demo := range demoSchools {
		school := demo.school
		fill := demo.color

		school.Image, err = storage.WriteImage(".jpg", func(w io.Writer) error {
			return imageproc.Placeholder(w, placeholderWidth, placeholderHeight, fill)
		})
		if err != nil {
			lgr.Error().Err(err).Str("school", school.Name).Msg("Error creating placeholder image")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		if err := repo.Create(ctx, &school); err != nil {
			_ = storage.DeleteFile(school.Image)
			if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
				lgr.Warn().Str("email", school.EmailID).Msg("Demo school already exists")
				continue
			}
			lgr.Error().Err(err).Str("school", school.Name).Msg("Error creating demo school")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		created++
	}

	lgr.Info().Int("created", created).Msg("Demo data creation process completed.")
	return created, finalErr
}
