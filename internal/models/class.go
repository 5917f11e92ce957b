package models

import "time"

// Class represents a class section within a grade and academic year.
type Class struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	GradeID        string    `db:"grade_id" json:"grade_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with descriptive parent fields.
type ClassDetail struct {
	Class
	GradeName string `db:"grade_name" json:"grade_name"`
	YearLabel string `db:"year_label" json:"year_label"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	GradeID        string
	AcademicYearID string
	IsActive       *bool
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
