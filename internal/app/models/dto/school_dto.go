package dto

import (
	"strings"

	"github.com/yigit/schooldir/internal/app/models"
)

// CreateSchoolRequest holds the text fields of a school submission. The image
// part is read separately from the multipart form.
type CreateSchoolRequest struct {
	Name    string `form:"name" validate:"required,min=2"`
	Address string `form:"address" validate:"required,min=5"`
	City    string `form:"city" validate:"required"`
	State   string `form:"state" validate:"required"`
	Contact string `form:"contact" validate:"required,contact"`
	EmailID string `form:"email_id" validate:"required,email_shape"`
}

// Normalize trims surrounding whitespace from every field.
func (r *CreateSchoolRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.Contact = strings.TrimSpace(r.Contact)
	r.EmailID = strings.TrimSpace(r.EmailID)
}

// SchoolListQuery is the raw query string of GET /api/schools. Values are kept
// as strings so malformed numbers fall back to defaults instead of failing.
type SchoolListQuery struct {
	Page  string `form:"page"`
	Limit string `form:"limit"`
	Q     string `form:"q"`
	City  string `form:"city"`
	Sort  string `form:"sort"`
}

// SchoolListResponse is the body of a successful listing.
type SchoolListResponse struct {
	Success bool            `json:"success"`
	Data    []models.School `json:"data"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Total   int64           `json:"total"`
}

// SchoolPage is what the service returns for one listing request.
type SchoolPage struct {
	Schools []models.School
	Page    int
	Limit   int
	Total   int64
}

// ToResponse renders a page in the wire shape.
func (p *SchoolPage) ToResponse() SchoolListResponse {
	data := p.Schools
	if data == nil {
		data = []models.School{}
	}
	return SchoolListResponse{
		Success: true,
		Data:    data,
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   p.Total,
	}
}
