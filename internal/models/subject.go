package models

import "time"

// Subject represents a taught subject bound to a grade and academic year.
// Subjects link many-to-many to classes; every linked class must share the
// subject's grade.
type Subject struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	GradeID        string    `db:"grade_id" json:"grade_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectDetail extends Subject with its linked class IDs.
type SubjectDetail struct {
	Subject
	GradeName string   `db:"grade_name" json:"grade_name"`
	ClassIDs  []string `json:"class_ids"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	GradeID        string
	AcademicYearID string
	ClassID        string
	IsActive       *bool
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
