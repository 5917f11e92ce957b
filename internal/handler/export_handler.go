package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/models"
	"github.com/schoolworks/sis-api/internal/service"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
	"github.com/schoolworks/sis-api/pkg/export"
	"github.com/schoolworks/sis-api/pkg/response"
)

const exportPageSize = 100

// ExportHandler renders attendance, fee and exam grade listings as CSV
// or PDF downloads.
type ExportHandler struct {
	attendance *service.AttendanceService
	fees       *service.FeeService
	examGrades *service.ExamGradeService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
}

// NewExportHandler constructs an export handler.
func NewExportHandler(attendance *service.AttendanceService, fees *service.FeeService, examGrades *service.ExamGradeService) *ExportHandler {
	return &ExportHandler{
		attendance: attendance,
		fees:       fees,
		examGrades: examGrades,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
	}
}

func (h *ExportHandler) render(c *gin.Context, name, title string, data export.Dataset) {
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, err := h.csv.Render(data)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render(data, title)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", name))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

// Attendance godoc
// @Summary Export attendance records
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Param student_id query string false "Filter by student"
// @Param subject_id query string false "Filter by subject"
// @Param academic_year_id query string false "Filter by academic year"
// @Success 200
// @Security BearerAuth
// @Router /exports/attendance [get]
func (h *ExportHandler) Attendance(c *gin.Context) {
	filter := models.AttendanceFilter{
		StudentID:      c.Query("student_id"),
		SubjectID:      c.Query("subject_id"),
		AcademicYearID: c.Query("academic_year_id"),
		PageSize:       exportPageSize,
	}
	records, _, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	data := export.Dataset{Headers: []string{"Student", "Subject", "Date", "Status"}}
	for _, record := range records {
		data.Rows = append(data.Rows, map[string]string{
			"Student": record.StudentName,
			"Subject": record.SubjectName,
			"Date":    record.Date.Format("2006-01-02"),
			"Status":  string(record.Status),
		})
	}
	h.render(c, "attendance", "Attendance Report", data)
}

// Fees godoc
// @Summary Export fee records with derived status
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Param student_id query string false "Filter by student"
// @Param academic_year_id query string false "Filter by academic year"
// @Success 200
// @Security BearerAuth
// @Router /exports/fees [get]
func (h *ExportHandler) Fees(c *gin.Context) {
	filter := models.FeeFilter{
		StudentID:      c.Query("student_id"),
		AcademicYearID: c.Query("academic_year_id"),
		PageSize:       exportPageSize,
	}
	fees, _, err := h.fees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	data := export.Dataset{Headers: []string{"Student", "Amount Due", "Amount Paid", "Due Date", "Status"}}
	for _, fee := range fees {
		data.Rows = append(data.Rows, map[string]string{
			"Student":     fee.StudentName,
			"Amount Due":  fmt.Sprintf("%.2f", fee.AmountDue),
			"Amount Paid": fmt.Sprintf("%.2f", fee.AmountPaid),
			"Due Date":    fee.DueDate.Format("2006-01-02"),
			"Status":      string(fee.FeeStatus),
		})
	}
	h.render(c, "fees", "Fee Report", data)
}

// ExamGrades godoc
// @Summary Export exam scores
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Param student_id query string false "Filter by student"
// @Param exam_id query string false "Filter by exam"
// @Param academic_year_id query string false "Filter by academic year"
// @Success 200
// @Security BearerAuth
// @Router /exports/exam-grades [get]
func (h *ExportHandler) ExamGrades(c *gin.Context) {
	filter := models.ExamGradeFilter{
		StudentID:      c.Query("student_id"),
		ExamID:         c.Query("exam_id"),
		AcademicYearID: c.Query("academic_year_id"),
		PageSize:       exportPageSize,
	}
	grades, _, err := h.examGrades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	data := export.Dataset{Headers: []string{"Student", "Exam", "Subject", "Score"}}
	for _, grade := range grades {
		data.Rows = append(data.Rows, map[string]string{
			"Student": grade.StudentName,
			"Exam":    grade.ExamName,
			"Subject": grade.SubjectName,
			"Score":   fmt.Sprintf("%.1f", grade.Score),
		})
	}
	h.render(c, "exam-grades", "Exam Grade Report", data)
}
