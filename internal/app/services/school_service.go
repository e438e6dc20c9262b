package services

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/schooldir/internal/app/models"
	"github.com/yigit/schooldir/internal/app/models/dto"
	"github.com/yigit/schooldir/internal/pkg/apperrors"
	"github.com/yigit/schooldir/internal/pkg/filestorage"
	"github.com/yigit/schooldir/internal/pkg/helpers"
	"github.com/yigit/schooldir/internal/pkg/imageproc"
	"github.com/yigit/schooldir/internal/pkg/logger"
	"github.com/yigit/schooldir/internal/pkg/validation"
)

// Client-facing messages of the submission pipeline.
const (
	MsgImageRequired    = "image required"
	MsgInvalidImageFile = "invalid image file"
	MsgSchoolCreated    = "School added successfully"
)

// SchoolStore is the persistence the school service needs.
// *repositories.SchoolRepository satisfies it.
type SchoolStore interface {
	List(ctx context.Context, f models.SchoolFilter) ([]models.School, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, school *models.School) error
}

// SchoolService defines the operations of the school directory
type SchoolService interface {
	// CreateSchool validates a submission, stores its image as a normalized
	// JPEG and inserts the row. On failure neither a row nor an image remains.
	CreateSchool(ctx context.Context, req *dto.CreateSchoolRequest, image *multipart.FileHeader) (*models.School, error)

	// ListSchools returns one filtered, sorted page of schools.
	ListSchools(ctx context.Context, query dto.SchoolListQuery) (*dto.SchoolPage, error)
}

type schoolServiceImpl struct {
	store      SchoolStore
	storage    filestorage.FileStorage
	transcoder imageproc.Transcoder
	validate   *validator.Validate
}

// NewSchoolService creates a new school service instance
func NewSchoolService(store SchoolStore, storage filestorage.FileStorage, transcoder imageproc.Transcoder) SchoolService {
	return &schoolServiceImpl{
		store:      store,
		storage:    storage,
		transcoder: transcoder,
		validate:   validation.New(),
	}
}

func (s *schoolServiceImpl) validateRequest(req *dto.CreateSchoolRequest) (int64, error) {
	if req == nil {
		return 0, apperrors.NewValidationError(validation.MsgAllFieldsRequired)
	}
	req.Normalize()

	if err := s.validate.Struct(req); err != nil {
		return 0, apperrors.NewValidationError(validation.FirstMessage(err))
	}

	// 15 digits always fit in an int64; anything else already failed above.
	contact, err := strconv.ParseInt(req.Contact, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(validation.MsgInvalidContact)
	}
	return contact, nil
}

// CreateSchool runs the submission pipeline: validate fields, stage the
// upload, reject known duplicate emails, transcode, then insert.
func (s *schoolServiceImpl) CreateSchool(ctx context.Context, req *dto.CreateSchoolRequest, image *multipart.FileHeader) (*models.School, error) {
	contact, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	if image == nil {
		return nil, apperrors.NewValidationError(MsgImageRequired)
	}

	stagedPath, release, err := s.storage.StageUpload(image)
	if err != nil {
		logger.Warn().Err(err).Str("filename", image.Filename).Msg("Failed to stage upload")
		return nil, apperrors.NewValidationError(MsgInvalidImageFile).WithCause(err)
	}
	defer release()

	exists, err := s.store.ExistsByEmail(ctx, req.EmailID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if exists {
		return nil, apperrors.NewConflictError(apperrors.ErrEmailAlreadyExists.Error())
	}

	publicPath, err := s.storage.WriteImage(".jpg", func(w io.Writer) error {
		return s.transcoder.Transcode(stagedPath, w)
	})
	if err != nil {
		logger.Warn().Err(err).Str("filename", image.Filename).Msg("Failed to transcode image")
		return nil, apperrors.NewProcessingError(err)
	}

	school := &models.School{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Contact: contact,
		EmailID: req.EmailID,
		Image:   publicPath,
	}

	if err := s.store.Create(ctx, school); err != nil {
		s.discardImage(publicPath)
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewConflictError(apperrors.ErrEmailAlreadyExists.Error()).WithCause(err)
		}
		return nil, apperrors.NewStorageError(err)
	}

	logger.Info().Int64("school_id", school.ID).Str("image", school.Image).Msg("School created")
	return school, nil
}

func (s *schoolServiceImpl) discardImage(publicPath string) {
	if err := s.storage.DeleteFile(publicPath); err != nil {
		logger.Error().Err(err).Str("image", publicPath).Msg("Failed to remove image of rejected school")
	}
}

// ListSchools normalizes the raw query and fetches the page.
func (s *schoolServiceImpl) ListSchools(ctx context.Context, query dto.SchoolListQuery) (*dto.SchoolPage, error) {
	filter := models.SchoolFilter{
		Search: strings.TrimSpace(query.Q),
		City:   strings.TrimSpace(query.City),
		Sort:   models.ParseSchoolSort(strings.TrimSpace(query.Sort)),
		Page:   helpers.ParsePage(query.Page),
		Limit:  helpers.ParsePageSize(query.Limit),
	}

	schools, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	return &dto.SchoolPage{
		Schools: schools,
		Page:    filter.Page,
		Limit:   filter.Limit,
		Total:   total,
	}, nil
}
