package models

import "time"

// TeacherAssignment binds a teacher to a subject and class for an academic
// year. The target class must be active at creation time.
type TeacherAssignment struct {
	ID             string    `db:"id" json:"id"`
	TeacherID      string    `db:"teacher_id" json:"teacher_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// TeacherAssignmentDetail enriches assignments with descriptive fields.
type TeacherAssignmentDetail struct {
	TeacherAssignment
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	ClassName   string `db:"class_name" json:"class_name"`
	YearLabel   string `db:"year_label" json:"year_label"`
}

// TeacherAssignmentFilter provides filters for listing assignments.
type TeacherAssignmentFilter struct {
	TeacherID      string
	SubjectID      string
	ClassID        string
	AcademicYearID string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
