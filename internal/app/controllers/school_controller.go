package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yigit/schooldir/internal/app/models/dto"
	"github.com/yigit/schooldir/internal/app/services"
	"github.com/yigit/schooldir/internal/middleware"
	"github.com/yigit/schooldir/internal/pkg/apperrors"
	"github.com/yigit/schooldir/internal/pkg/validation"
)

// ImageField is the multipart field carrying the school photo.
const ImageField = "image"

// SchoolController handles school directory requests
type SchoolController struct {
	schoolService services.SchoolService
}

// NewSchoolController creates a new SchoolController
func NewSchoolController(schoolService services.SchoolService) *SchoolController {
	return &SchoolController{
		schoolService: schoolService,
	}
}

// ListSchools returns one page of the directory
// @Summary List schools
// @Description Lists schools with optional search, city filter, sorting and pagination
// @Tags schools
// @Produce json
// @Param page query int false "Page number (default 1)" minimum(1)
// @Param limit query int false "Page size (default 9, max 50)" minimum(1) maximum(50)
// @Param q query string false "Case-insensitive text matched against name, city and address"
// @Param city query string false "Exact city"
// @Param sort query string false "Ordering" Enums(relevance, fees-low, fees-high)
// @Success 200 {object} dto.SchoolListResponse "Schools retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /schools [get]
func (c *SchoolController) ListSchools(ctx *gin.Context) {
	var query dto.SchoolListQuery
	// All fields are strings, so binding only fails on a malformed query
	// string; defaults apply to whatever could not be read.
	_ = ctx.ShouldBindQuery(&query)

	page, err := c.schoolService.ListSchools(ctx.Request.Context(), query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, page.ToResponse())
}

// CreateSchool adds a school from a multipart form
// @Summary Add a school
// @Description Validates the fields, normalizes the photo to a JPEG of at most 1280x960 and stores the school
// @Tags schools
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "School name" minlength(2)
// @Param address formData string true "Street address" minlength(5)
// @Param city formData string true "City"
// @Param state formData string true "State"
// @Param contact formData string true "Phone number, 7 to 15 digits"
// @Param email_id formData string true "Contact email, unique across schools"
// @Param image formData file true "School photo"
// @Success 201 {object} dto.SuccessResponse "School added successfully"
// @Failure 409 {object} dto.ErrorResponse "A school with this email already exists"
// @Failure 413 {object} dto.ErrorResponse "Request body too large"
// @Failure 422 {object} dto.ErrorResponse "Invalid or missing fields or image"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 500 {object} dto.ErrorResponse "Image processing or database error"
// @Router /schools [post]
func (c *SchoolController) CreateSchool(ctx *gin.Context) {
	var req dto.CreateSchoolRequest
	// binding.Form parses multipart and urlencoded bodies alike.
	if err := ctx.ShouldBindWith(&req, binding.Form); err != nil {
		middleware.HandleAPIError(ctx, bodyError(err))
		return
	}

	image, err := formImage(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if _, err := c.schoolService.CreateSchool(ctx.Request.Context(), &req, image); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(services.MsgSchoolCreated))
}

// formImage returns the uploaded image part, or nil when none was sent so the
// service can report it after the text fields are checked.
func formImage(ctx *gin.Context) (*multipart.FileHeader, error) {
	image, err := ctx.FormFile(ImageField)
	if err == nil {
		return image, nil
	}
	if apperrors.Is(err, http.ErrMissingFile, http.ErrNotMultipart) {
		return nil, nil
	}
	return nil, bodyError(err)
}

func bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperrors.NewCustomError(apperrors.ErrPayloadTooLarge, "request body too large").WithCause(err)
	}
	return apperrors.NewValidationError(validation.MsgInvalidInput).WithCause(err)
}
