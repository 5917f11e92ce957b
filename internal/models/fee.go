package models

import "time"

// FeeStatus is the derived payment state of a fee record. It is computed
// on read and never stored.
type FeeStatus string

const (
	FeeStatusComplete      FeeStatus = "Complete"
	FeeStatusPartiallyPaid FeeStatus = "Partially Paid"
	FeeStatusNotPaid       FeeStatus = "Not Paid"
)

// Fee is a billing record for a student within an academic year.
type Fee struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	AmountDue      float64   `db:"amount_due" json:"amount_due"`
	AmountPaid     float64   `db:"amount_paid" json:"amount_paid"`
	DueDate        time.Time `db:"due_date" json:"due_date"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Status derives the payment state. Covering the amount due settles the
// bill, so overpayment and a zero-due record both report Complete.
func (f Fee) Status() FeeStatus {
	switch {
	case f.AmountPaid >= f.AmountDue:
		return FeeStatusComplete
	case f.AmountPaid > 0:
		return FeeStatusPartiallyPaid
	default:
		return FeeStatusNotPaid
	}
}

// FeeDetail is the API shape of a fee record including the derived
// status. StudentName is only populated by the listing join.
type FeeDetail struct {
	Fee
	StudentName string    `db:"student_name" json:"student_name,omitempty"`
	FeeStatus   FeeStatus `json:"fee_status"`
}

// FeeFilter scopes fee listings.
type FeeFilter struct {
	StudentID      string
	AcademicYearID string
	DueBefore      *time.Time
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
