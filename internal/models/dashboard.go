package models

// AdminDashboard aggregates school-wide counts for administrators.
type AdminDashboard struct {
	TotalStudents       int              `json:"total_students"`
	TotalTeachers       int              `json:"total_teachers"`
	TotalStaff          int              `json:"total_staff"`
	TotalParents        int              `json:"total_parents"`
	TotalClasses        int              `json:"total_classes"`
	TotalSubjects       int              `json:"total_subjects"`
	ActiveYear          *AcademicYear    `json:"active_year,omitempty"`
	FeeSummary          FeeSummary       `json:"fee_summary"`
	RecentNotifications []Notification   `json:"recent_notifications"`
	UpcomingExams       []ExamDetail     `json:"upcoming_exams"`
}

// FeeSummary aggregates fee totals across the active academic year.
type FeeSummary struct {
	TotalDue      float64 `json:"total_due"`
	TotalPaid     float64 `json:"total_paid"`
	Outstanding   float64 `json:"outstanding"`
	CompleteCount int     `json:"complete_count"`
	PartialCount  int     `json:"partial_count"`
	UnpaidCount   int     `json:"unpaid_count"`
}

// StaffDashboard shows a staff member's own attendance and salary history.
type StaffDashboard struct {
	Profile         ProfileDetail     `json:"profile"`
	Attendance      []DailyAttendance `json:"attendance"`
	SalaryPayments  []SalaryPayment   `json:"salary_payments"`
	Notifications   []Notification    `json:"notifications"`
}

// TeacherDashboard shows a teacher's assignments, timetable and attendance.
type TeacherDashboard struct {
	Profile        ProfileDetail             `json:"profile"`
	Assignments    []TeacherAssignmentDetail `json:"assignments"`
	Schedule       []ScheduleDetail          `json:"schedule"`
	Attendance     []DailyAttendance         `json:"attendance"`
	UpcomingExams  []ExamDetail              `json:"upcoming_exams"`
	Notifications  []Notification            `json:"notifications"`
}

// StudentDashboard shows a student's enrollment, timetable, grades and fees.
type StudentDashboard struct {
	Profile       ProfileDetail      `json:"profile"`
	Enrollment    *StudentEnrollmentDetail `json:"enrollment,omitempty"`
	Schedule      []ScheduleDetail   `json:"schedule"`
	Attendance    []AttendanceRecord `json:"attendance"`
	ExamGrades    []ExamGradeDetail  `json:"exam_grades"`
	Fees          []FeeDetail        `json:"fees"`
	Notifications []Notification     `json:"notifications"`
}

// ParentDashboard aggregates each linked child's student dashboard.
type ParentDashboard struct {
	Profile  ProfileDetail      `json:"profile"`
	Children []StudentDashboard `json:"children"`
}
