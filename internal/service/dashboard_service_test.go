package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type fakeCacheRepo struct {
	entries map[string][]byte
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.entries == nil {
		f.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

type dashUserLookup struct {
	counts   map[models.UserRole]int
	profiles map[string]models.Profile
	details  map[string]models.ProfileDetail
	children map[string][]string
}

func (d *dashUserLookup) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	return d.counts[role], nil
}

func (d *dashUserLookup) FindProfileByUserID(ctx context.Context, role models.UserRole, userID string) (*models.Profile, error) {
	if profile, ok := d.profiles[userID]; ok {
		cp := profile
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (d *dashUserLookup) FindProfileDetail(ctx context.Context, role models.UserRole, profileID string) (*models.ProfileDetail, error) {
	if detail, ok := d.details[profileID]; ok {
		cp := detail
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (d *dashUserLookup) ListChildProfileIDs(ctx context.Context, parentProfileID string) ([]string, error) {
	return d.children[parentProfileID], nil
}

type dashYearLookup struct {
	active *models.AcademicYear
}

func (d *dashYearLookup) FindActive(ctx context.Context) (*models.AcademicYear, error) {
	if d.active == nil {
		return nil, sql.ErrNoRows
	}
	cp := *d.active
	return &cp, nil
}

type dashClassLookup struct {
	activeCount int
	classes     map[string]models.Class
}

func (d *dashClassLookup) CountActive(ctx context.Context) (int, error) {
	return d.activeCount, nil
}

func (d *dashClassLookup) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := d.classes[id]; ok {
		cp := class
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type dashSubjectCounter struct {
	activeCount int
}

func (d *dashSubjectCounter) CountActive(ctx context.Context) (int, error) {
	return d.activeCount, nil
}

type dashFeeLookup struct {
	summary models.FeeSummary
	fees    map[string][]models.FeeDetail
}

func (d *dashFeeLookup) Summary(ctx context.Context, yearID string) (*models.FeeSummary, error) {
	cp := d.summary
	return &cp, nil
}

func (d *dashFeeLookup) ListForStudent(ctx context.Context, studentID string) ([]models.FeeDetail, error) {
	return d.fees[studentID], nil
}

type dashNotificationLookup struct {
	schoolWide []models.Notification
	classWide  []models.Notification
}

func (d *dashNotificationLookup) ListSchoolWide(ctx context.Context, limit int) ([]models.Notification, error) {
	return d.schoolWide, nil
}

func (d *dashNotificationLookup) ListVisibleToClass(ctx context.Context, classID, gradeID string, limit int) ([]models.Notification, error) {
	return d.classWide, nil
}

type dashExamLookup struct {
	upcoming []models.ExamDetail
}

func (d *dashExamLookup) ListUpcoming(ctx context.Context, after time.Time, classIDs []string, limit int) ([]models.ExamDetail, error) {
	return d.upcoming, nil
}

type dashAssignmentLookup struct {
	assignments []models.TeacherAssignmentDetail
}

func (d *dashAssignmentLookup) ListForTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignmentDetail, error) {
	return d.assignments, nil
}

type dashScheduleLookup struct {
	slots map[string][]models.ScheduleDetail
}

func (d *dashScheduleLookup) ListForClass(ctx context.Context, classID string) ([]models.ScheduleDetail, error) {
	return d.slots[classID], nil
}

type dashEnrollmentLookup struct {
	enrollments map[string]models.StudentEnrollmentDetail
}

func (d *dashEnrollmentLookup) FindForStudent(ctx context.Context, studentID, yearID string) (*models.StudentEnrollmentDetail, error) {
	if enrollment, ok := d.enrollments[studentID]; ok {
		cp := enrollment
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type dashAttendanceLookup struct {
	records []models.AttendanceRecord
}

func (d *dashAttendanceLookup) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return d.records, len(d.records), nil
}

type dashDailyAttendanceLookup struct {
	records []models.DailyAttendance
}

func (d *dashDailyAttendanceLookup) ListForProfile(ctx context.Context, kind models.StaffKind, profileID string, limit int) ([]models.DailyAttendance, error) {
	return d.records, nil
}

type dashSalaryLookup struct {
	payments []models.SalaryPayment
}

func (d *dashSalaryLookup) ListForStaff(ctx context.Context, staffProfileID string, limit int) ([]models.SalaryPayment, error) {
	return d.payments, nil
}

type dashGradeLookup struct {
	grades []models.ExamGradeDetail
}

func (d *dashGradeLookup) ListForStudent(ctx context.Context, studentID, yearID string) ([]models.ExamGradeDetail, error) {
	return d.grades, nil
}

func newDashboardFixture() (DashboardServiceParams, *fakeCacheRepo) {
	cacheRepo := &fakeCacheRepo{}
	cacheService := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)

	params := DashboardServiceParams{
		Users: &dashUserLookup{
			counts: map[models.UserRole]int{
				models.RoleStudent: 120,
				models.RoleTeacher: 14,
				models.RoleStaff:   6,
				models.RoleParent:  90,
			},
			profiles: map[string]models.Profile{
				"user-student": {ID: "prof-student", UserID: "user-student"},
				"user-parent":  {ID: "prof-parent", UserID: "user-parent"},
			},
			details: map[string]models.ProfileDetail{
				"prof-student": {Profile: models.Profile{ID: "prof-student", UserID: "user-student"}, FullName: "Student One", Role: models.RoleStudent},
				"prof-parent":  {Profile: models.Profile{ID: "prof-parent", UserID: "user-parent"}, FullName: "Parent One", Role: models.RoleParent},
			},
			children: map[string][]string{"prof-parent": {"prof-student", "prof-missing"}},
		},
		Years:    &dashYearLookup{active: &models.AcademicYear{ID: "y1", Year: "2026/2027", IsActive: true}},
		Classes:  &dashClassLookup{activeCount: 8, classes: map[string]models.Class{"c1": {ID: "c1", GradeID: "g10", AcademicYearID: "y1", IsActive: true}}},
		Subjects: &dashSubjectCounter{activeCount: 24},
		Fees: &dashFeeLookup{
			summary: models.FeeSummary{TotalDue: 50000, TotalPaid: 32000, Outstanding: 18000},
		},
		Notifications:   &dashNotificationLookup{schoolWide: []models.Notification{{ID: "n1", Title: "Holiday"}}, classWide: []models.Notification{{ID: "n2", Title: "Exam week"}}},
		Exams:           &dashExamLookup{},
		Assignments:     &dashAssignmentLookup{},
		Schedules:       &dashScheduleLookup{slots: map[string][]models.ScheduleDetail{"c1": {{Schedule: models.Schedule{ID: "sch1", ClassID: "c1"}}}}},
		Enrollments:     &dashEnrollmentLookup{enrollments: map[string]models.StudentEnrollmentDetail{"prof-student": {StudentEnrollment: models.StudentEnrollment{ID: "en1", StudentID: "prof-student", ClassID: "c1", AcademicYearID: "y1"}}}},
		Attendance:      &dashAttendanceLookup{},
		DailyAttendance: &dashDailyAttendanceLookup{},
		Salaries:        &dashSalaryLookup{},
		ExamGrades:      &dashGradeLookup{},
		Cache:           cacheService,
		Logger:          zap.NewNop(),
	}
	return params, cacheRepo
}

func TestDashboardServiceAdmin(t *testing.T) {
	params, cacheRepo := newDashboardFixture()
	svc := NewDashboardService(params)

	dashboard, hit, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 120, dashboard.TotalStudents)
	assert.Equal(t, 8, dashboard.TotalClasses)
	assert.Equal(t, 24, dashboard.TotalSubjects)
	require.NotNil(t, dashboard.ActiveYear)
	assert.Equal(t, "y1", dashboard.ActiveYear.ID)
	assert.Equal(t, float64(18000), dashboard.FeeSummary.Outstanding)
	assert.Contains(t, cacheRepo.entries, "dash:admin")

	cached, hit, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, dashboard.TotalStudents, cached.TotalStudents)
}

func TestDashboardServiceStudentEnrolled(t *testing.T) {
	params, _ := newDashboardFixture()
	svc := NewDashboardService(params)

	dashboard, hit, err := svc.Student(context.Background(), "user-student")
	require.NoError(t, err)
	assert.False(t, hit)
	require.NotNil(t, dashboard.Enrollment)
	assert.Equal(t, "c1", dashboard.Enrollment.ClassID)
	assert.Len(t, dashboard.Schedule, 1)
	require.Len(t, dashboard.Notifications, 1)
	assert.Equal(t, "Exam week", dashboard.Notifications[0].Title)
}

func TestDashboardServiceStudentUnenrolledSeesSchoolNotices(t *testing.T) {
	params, _ := newDashboardFixture()
	params.Enrollments = &dashEnrollmentLookup{}
	svc := NewDashboardService(params)

	dashboard, _, err := svc.Student(context.Background(), "user-student")
	require.NoError(t, err)
	assert.Nil(t, dashboard.Enrollment)
	assert.Empty(t, dashboard.Schedule)
	require.Len(t, dashboard.Notifications, 1)
	assert.Equal(t, "Holiday", dashboard.Notifications[0].Title)
}

func TestDashboardServiceParentSkipsUnknownChildren(t *testing.T) {
	params, _ := newDashboardFixture()
	svc := NewDashboardService(params)

	dashboard, _, err := svc.Parent(context.Background(), "user-parent")
	require.NoError(t, err)
	require.Len(t, dashboard.Children, 1)
	assert.Equal(t, "Student One", dashboard.Children[0].Profile.FullName)
}

func TestDashboardServiceUnknownProfile(t *testing.T) {
	params, _ := newDashboardFixture()
	svc := NewDashboardService(params)

	_, _, err := svc.Student(context.Background(), "ghost")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDashboardServiceInvalidateDropsKeys(t *testing.T) {
	params, cacheRepo := newDashboardFixture()
	svc := NewDashboardService(params)

	_, _, err := svc.Admin(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cacheRepo.entries)

	svc.Invalidate(context.Background())
	assert.Empty(t, cacheRepo.entries)
}
