package models

import "time"

// StudentEnrollment registers a student to a class for an academic year.
// The target class must be active at creation time.
type StudentEnrollment struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// StudentEnrollmentDetail enriches an enrollment with descriptive fields.
type StudentEnrollmentDetail struct {
	StudentEnrollment
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
	YearLabel   string `db:"year_label" json:"year_label"`
}

// StudentEnrollmentFilter provides filters for listing enrollments.
type StudentEnrollmentFilter struct {
	StudentID      string
	ClassID        string
	AcademicYearID string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
