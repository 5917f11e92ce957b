package models

import "time"

// Exam is a scheduled exam for a subject and class.
type Exam struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	ExamDate       time.Time `db:"exam_date" json:"exam_date"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ExamDetail enriches an exam with subject and class names.
type ExamDetail struct {
	Exam
	SubjectName string `db:"subject_name" json:"subject_name"`
	ClassName   string `db:"class_name" json:"class_name"`
}

// ExamFilter scopes exam listings.
type ExamFilter struct {
	SubjectID      string
	ClassID        string
	AcademicYearID string
	DateFrom       *time.Time
	DateTo         *time.Time
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// ExamGrade records a student's score on an exam.
type ExamGrade struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	ExamID         string    `db:"exam_id" json:"exam_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	Score          float64   `db:"score" json:"score"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ExamGradeDetail enriches a score with exam and student names.
type ExamGradeDetail struct {
	ExamGrade
	StudentName string `db:"student_name" json:"student_name"`
	ExamName    string `db:"exam_name" json:"exam_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// ExamGradeFilter scopes exam grade listings.
type ExamGradeFilter struct {
	StudentID      string
	ExamID         string
	SubjectID      string
	AcademicYearID string
	Page           int
	PageSize       int
}
