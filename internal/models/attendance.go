package models

import "time"

// AttendanceStatus marks a person present or absent.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
)

// Valid reports whether the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent:
		return true
	default:
		return false
	}
}

// Attendance is a daily presence record for a student in a subject.
type Attendance struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	SubjectID      string           `db:"subject_id" json:"subject_id"`
	Date           time.Time        `db:"date" json:"date"`
	Status         AttendanceStatus `db:"status" json:"status"`
	AcademicYearID string           `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceRecord extends the row with student and subject names.
type AttendanceRecord struct {
	Attendance
	StudentName string `db:"student_name" json:"student_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// AttendanceFilter defines query filters.
type AttendanceFilter struct {
	StudentID      string
	SubjectID      string
	AcademicYearID string
	Status         *AttendanceStatus
	DateFrom       *time.Time
	DateTo         *time.Time
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// StaffKind selects which daily attendance ledger a record belongs to.
type StaffKind string

const (
	StaffKindTeacher StaffKind = "teacher"
	StaffKindStaff   StaffKind = "staff"
)

// DailyAttendance is a per-day presence record for a teacher or staff
// member. At most one record exists per (person, date).
type DailyAttendance struct {
	ID        string           `db:"id" json:"id"`
	ProfileID string           `db:"profile_id" json:"profile_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// DailyAttendanceDetail enriches the row with the person's name.
type DailyAttendanceDetail struct {
	DailyAttendance
	FullName string `db:"full_name" json:"full_name"`
}

// DailyAttendanceFilter scopes daily attendance listings.
type DailyAttendanceFilter struct {
	ProfileID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    *AttendanceStatus
	Page      int
	PageSize  int
}
