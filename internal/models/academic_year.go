package models

import "time"

// AcademicYear models a school year, e.g. "2024-2025".
// At most one academic year is active system-wide.
type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	Year      string    `db:"year" json:"year"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicYearFilter defines filters supported by list endpoints.
type AcademicYearFilter struct {
	Year      string
	IsActive  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
