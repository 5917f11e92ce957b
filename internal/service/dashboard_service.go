package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type dashboardUserLookup interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
	FindProfileByUserID(ctx context.Context, role models.UserRole, userID string) (*models.Profile, error)
	FindProfileDetail(ctx context.Context, role models.UserRole, profileID string) (*models.ProfileDetail, error)
	ListChildProfileIDs(ctx context.Context, parentProfileID string) ([]string, error)
}

type dashboardYearLookup interface {
	FindActive(ctx context.Context) (*models.AcademicYear, error)
}

type dashboardClassLookup interface {
	CountActive(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type dashboardSubjectCounter interface {
	CountActive(ctx context.Context) (int, error)
}

type dashboardFeeLookup interface {
	Summary(ctx context.Context, yearID string) (*models.FeeSummary, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.FeeDetail, error)
}

type dashboardNotificationLookup interface {
	ListSchoolWide(ctx context.Context, limit int) ([]models.Notification, error)
	ListVisibleToClass(ctx context.Context, classID, gradeID string, limit int) ([]models.Notification, error)
}

type dashboardExamLookup interface {
	ListUpcoming(ctx context.Context, after time.Time, classIDs []string, limit int) ([]models.ExamDetail, error)
}

type dashboardAssignmentLookup interface {
	ListForTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignmentDetail, error)
}

type dashboardScheduleLookup interface {
	ListForClass(ctx context.Context, classID string) ([]models.ScheduleDetail, error)
}

type dashboardEnrollmentLookup interface {
	FindForStudent(ctx context.Context, studentID, yearID string) (*models.StudentEnrollmentDetail, error)
}

type dashboardAttendanceLookup interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
}

type dashboardDailyAttendanceLookup interface {
	ListForProfile(ctx context.Context, kind models.StaffKind, profileID string, limit int) ([]models.DailyAttendance, error)
}

type dashboardSalaryLookup interface {
	ListForStaff(ctx context.Context, staffProfileID string, limit int) ([]models.SalaryPayment, error)
}

type dashboardGradeLookup interface {
	ListForStudent(ctx context.Context, studentID, yearID string) ([]models.ExamGradeDetail, error)
}

// DashboardServiceConfig tunes dashboard composition.
type DashboardServiceConfig struct {
	CacheTTL           time.Duration
	NotificationsLimit int
	UpcomingExamsLimit int
	AttendanceLimit    int
}

// DashboardService composes per-role dashboard payloads. Each payload is
// cached under a role-scoped key and invalidated by TTL only.
type DashboardService struct {
	users           dashboardUserLookup
	years           dashboardYearLookup
	classes         dashboardClassLookup
	subjects        dashboardSubjectCounter
	fees            dashboardFeeLookup
	notifications   dashboardNotificationLookup
	exams           dashboardExamLookup
	assignments     dashboardAssignmentLookup
	schedules       dashboardScheduleLookup
	enrollments     dashboardEnrollmentLookup
	attendance      dashboardAttendanceLookup
	dailyAttendance dashboardDailyAttendanceLookup
	salaries        dashboardSalaryLookup
	examGrades      dashboardGradeLookup
	cache           *CacheService
	logger          *zap.Logger
	now             func() time.Time
	cfg             DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Users           dashboardUserLookup
	Years           dashboardYearLookup
	Classes         dashboardClassLookup
	Subjects        dashboardSubjectCounter
	Fees            dashboardFeeLookup
	Notifications   dashboardNotificationLookup
	Exams           dashboardExamLookup
	Assignments     dashboardAssignmentLookup
	Schedules       dashboardScheduleLookup
	Enrollments     dashboardEnrollmentLookup
	Attendance      dashboardAttendanceLookup
	DailyAttendance dashboardDailyAttendanceLookup
	Salaries        dashboardSalaryLookup
	ExamGrades      dashboardGradeLookup
	Cache           *CacheService
	Logger          *zap.Logger
	Config          DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.NotificationsLimit <= 0 {
		cfg.NotificationsLimit = 10
	}
	if cfg.UpcomingExamsLimit <= 0 {
		cfg.UpcomingExamsLimit = 10
	}
	if cfg.AttendanceLimit <= 0 {
		cfg.AttendanceLimit = 30
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:           params.Users,
		years:           params.Years,
		classes:         params.Classes,
		subjects:        params.Subjects,
		fees:            params.Fees,
		notifications:   params.Notifications,
		exams:           params.Exams,
		assignments:     params.Assignments,
		schedules:       params.Schedules,
		enrollments:     params.Enrollments,
		attendance:      params.Attendance,
		dailyAttendance: params.DailyAttendance,
		salaries:        params.Salaries,
		examGrades:      params.ExamGrades,
		cache:           params.Cache,
		logger:          logger,
		now:             time.Now,
		cfg:             cfg,
	}
}

// Admin returns school-wide counts and summaries. The boolean reports
// whether the payload came from cache.
func (s *DashboardService) Admin(ctx context.Context) (*models.AdminDashboard, bool, error) {
	const cacheKey = "dash:admin"
	var cached models.AdminDashboard
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	dashboard, err := s.composeAdmin(ctx)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, dashboard)
	return dashboard, false, nil
}

// Staff returns a staff member's own dashboard keyed by user ID.
func (s *DashboardService) Staff(ctx context.Context, userID string) (*models.StaffDashboard, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	cacheKey := fmt.Sprintf("dash:staff:%s", userID)
	var cached models.StaffDashboard
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	profile, err := s.resolveProfile(ctx, models.RoleStaff, userID)
	if err != nil {
		return nil, false, err
	}

	attendance, err := s.dailyAttendance.ListForProfile(ctx, models.StaffKindStaff, profile.ID, s.cfg.AttendanceLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	payments, err := s.salaries.ListForStaff(ctx, profile.ID, 0)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load salary history")
	}
	notifications, err := s.notifications.ListSchoolWide(ctx, s.cfg.NotificationsLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notifications")
	}

	dashboard := &models.StaffDashboard{
		Profile:        *profile,
		Attendance:     attendance,
		SalaryPayments: payments,
		Notifications:  notifications,
	}
	s.persistCache(ctx, cacheKey, dashboard)
	return dashboard, false, nil
}

// Teacher returns a teacher's assignments, timetable and attendance.
func (s *DashboardService) Teacher(ctx context.Context, userID string) (*models.TeacherDashboard, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	cacheKey := fmt.Sprintf("dash:teacher:%s", userID)
	var cached models.TeacherDashboard
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	profile, err := s.resolveProfile(ctx, models.RoleTeacher, userID)
	if err != nil {
		return nil, false, err
	}

	assignments, err := s.assignments.ListForTeacher(ctx, profile.ID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	classIDs := make([]string, 0, len(assignments))
	seen := make(map[string]struct{}, len(assignments))
	for _, assignment := range assignments {
		if _, ok := seen[assignment.ClassID]; ok {
			continue
		}
		seen[assignment.ClassID] = struct{}{}
		classIDs = append(classIDs, assignment.ClassID)
	}

	var schedule []models.ScheduleDetail
	for _, classID := range classIDs {
		slots, err := s.schedules.ListForClass(ctx, classID)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
		}
		schedule = append(schedule, slots...)
	}

	attendance, err := s.dailyAttendance.ListForProfile(ctx, models.StaffKindTeacher, profile.ID, s.cfg.AttendanceLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	upcoming, err := s.exams.ListUpcoming(ctx, s.now().UTC(), classIDs, s.cfg.UpcomingExamsLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upcoming exams")
	}
	notifications, err := s.notifications.ListSchoolWide(ctx, s.cfg.NotificationsLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notifications")
	}

	dashboard := &models.TeacherDashboard{
		Profile:       *profile,
		Assignments:   assignments,
		Schedule:      schedule,
		Attendance:    attendance,
		UpcomingExams: upcoming,
		Notifications: notifications,
	}
	s.persistCache(ctx, cacheKey, dashboard)
	return dashboard, false, nil
}

// Student returns a student's dashboard keyed by user ID.
func (s *DashboardService) Student(ctx context.Context, userID string) (*models.StudentDashboard, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	cacheKey := fmt.Sprintf("dash:student:%s", userID)
	var cached models.StudentDashboard
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	profile, err := s.resolveProfile(ctx, models.RoleStudent, userID)
	if err != nil {
		return nil, false, err
	}

	dashboard, err := s.composeStudent(ctx, profile)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, dashboard)
	return dashboard, false, nil
}

// Parent aggregates the dashboards of every linked child.
func (s *DashboardService) Parent(ctx context.Context, userID string) (*models.ParentDashboard, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	cacheKey := fmt.Sprintf("dash:parent:%s", userID)
	var cached models.ParentDashboard
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	profile, err := s.resolveProfile(ctx, models.RoleParent, userID)
	if err != nil {
		return nil, false, err
	}

	childIDs, err := s.users.ListChildProfileIDs(ctx, profile.ID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load linked students")
	}

	children := make([]models.StudentDashboard, 0, len(childIDs))
	for _, childID := range childIDs {
		childProfile, err := s.users.FindProfileDetail(ctx, models.RoleStudent, childID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
		}
		child, err := s.composeStudent(ctx, childProfile)
		if err != nil {
			return nil, false, err
		}
		children = append(children, *child)
	}

	dashboard := &models.ParentDashboard{
		Profile:  *profile,
		Children: children,
	}
	s.persistCache(ctx, cacheKey, dashboard)
	return dashboard, false, nil
}

// Invalidate drops every cached dashboard. Mutating services call this
// after writes that feed dashboard payloads.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) composeAdmin(ctx context.Context) (*models.AdminDashboard, error) {
	dashboard := &models.AdminDashboard{}

	counts := []struct {
		role models.UserRole
		dest *int
	}{
		{models.RoleStudent, &dashboard.TotalStudents},
		{models.RoleTeacher, &dashboard.TotalTeachers},
		{models.RoleStaff, &dashboard.TotalStaff},
		{models.RoleParent, &dashboard.TotalParents},
	}
	for _, c := range counts {
		count, err := s.users.CountByRole(ctx, c.role)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count accounts")
		}
		*c.dest = count
	}

	classCount, err := s.classes.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}
	dashboard.TotalClasses = classCount

	subjectCount, err := s.subjects.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subjects")
	}
	dashboard.TotalSubjects = subjectCount

	var activeYearID string
	year, err := s.years.FindActive(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
		}
	} else {
		dashboard.ActiveYear = year
		activeYearID = year.ID
	}

	summary, err := s.fees.Summary(ctx, activeYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute fee summary")
	}
	dashboard.FeeSummary = *summary

	notifications, err := s.notifications.ListSchoolWide(ctx, s.cfg.NotificationsLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notifications")
	}
	dashboard.RecentNotifications = notifications

	upcoming, err := s.exams.ListUpcoming(ctx, s.now().UTC(), nil, s.cfg.UpcomingExamsLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upcoming exams")
	}
	dashboard.UpcomingExams = upcoming

	return dashboard, nil
}

func (s *DashboardService) composeStudent(ctx context.Context, profile *models.ProfileDetail) (*models.StudentDashboard, error) {
	dashboard := &models.StudentDashboard{Profile: *profile}

	var activeYearID string
	if year, err := s.years.FindActive(ctx); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
		}
	} else {
		activeYearID = year.ID
	}

	enrollment, err := s.enrollments.FindForStudent(ctx, profile.ID, activeYearID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	dashboard.Enrollment = enrollment

	if enrollment != nil {
		schedule, err := s.schedules.ListForClass(ctx, enrollment.ClassID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
		}
		dashboard.Schedule = schedule
	}

	attendance, _, err := s.attendance.List(ctx, models.AttendanceFilter{
		StudentID:      profile.ID,
		AcademicYearID: activeYearID,
		PageSize:       s.cfg.AttendanceLimit,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	dashboard.Attendance = attendance

	grades, err := s.examGrades.ListForStudent(ctx, profile.ID, activeYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam grades")
	}
	dashboard.ExamGrades = grades

	fees, err := s.fees.ListForStudent(ctx, profile.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fees")
	}
	dashboard.Fees = fees

	if enrollment != nil {
		class, err := s.classes.FindByID(ctx, enrollment.ClassID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
		gradeID := ""
		if class != nil {
			gradeID = class.GradeID
		}
		notifications, err := s.notifications.ListVisibleToClass(ctx, enrollment.ClassID, gradeID, s.cfg.NotificationsLimit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notifications")
		}
		dashboard.Notifications = notifications
	} else {
		notifications, err := s.notifications.ListSchoolWide(ctx, s.cfg.NotificationsLimit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notifications")
		}
		dashboard.Notifications = notifications
	}

	return dashboard, nil
}

func (s *DashboardService) resolveProfile(ctx context.Context, role models.UserRole, userID string) (*models.ProfileDetail, error) {
	profile, err := s.users.FindProfileByUserID(ctx, role, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	detail, err := s.users.FindProfileDetail(ctx, role, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return detail, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
