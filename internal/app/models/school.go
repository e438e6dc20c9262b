package models

import "time"

// School is the only persisted entity: one row of the schools table.
type School struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	City      string    `json:"city" db:"city"`
	State     string    `json:"state" db:"state"`
	Contact   int64     `json:"contact" db:"contact"`
	EmailID   string    `json:"email_id" db:"email_id"`
	Image     string    `json:"image" db:"image"` // root-relative, e.g. /schoolImages/1700000000000-ab12cd34.jpg
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SchoolSort selects the ordering of a school listing.
type SchoolSort string

const (
	// SortRelevance lists the newest schools first.
	SortRelevance SchoolSort = "relevance"
	// SortFeesLow and SortFeesHigh have no fee column to sort on; they order
	// by name ascending and descending respectively.
	SortFeesLow  SchoolSort = "fees-low"
	SortFeesHigh SchoolSort = "fees-high"
)

// ParseSchoolSort maps a query value onto a known sort, defaulting to relevance.
func ParseSchoolSort(s string) SchoolSort {
	switch SchoolSort(s) {
	case SortFeesLow:
		return SortFeesLow
	case SortFeesHigh:
		return SortFeesHigh
	default:
		return SortRelevance
	}
}

// SchoolFilter is the normalized form of a listing request.
type SchoolFilter struct {
	Search string
	City   string
	Sort   SchoolSort
	Page   int
	Limit  int
}
