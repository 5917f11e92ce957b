package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type mockFeeRepo struct {
	items    map[string]*models.Fee
	payments []float64
}

func (m *mockFeeRepo) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error) {
	return nil, 0, nil
}

func (m *mockFeeRepo) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	if fee, ok := m.items[id]; ok {
		cp := *fee
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeRepo) Create(ctx context.Context, fee *models.Fee) error {
	if m.items == nil {
		m.items = make(map[string]*models.Fee)
	}
	if fee.ID == "" {
		fee.ID = "generated"
	}
	cp := *fee
	m.items[fee.ID] = &cp
	return nil
}

func (m *mockFeeRepo) Update(ctx context.Context, fee *models.Fee) error {
	cp := *fee
	m.items[fee.ID] = &cp
	return nil
}

func (m *mockFeeRepo) RecordPayment(ctx context.Context, id string, amount float64) error {
	m.payments = append(m.payments, amount)
	if fee, ok := m.items[id]; ok {
		fee.AmountPaid += amount
	}
	return nil
}

func (m *mockFeeRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *mockFeeRepo) Summary(ctx context.Context, yearID string) (*models.FeeSummary, error) {
	return &models.FeeSummary{}, nil
}

func TestFeeStatusDerivation(t *testing.T) {
	cases := []struct {
		name string
		due  float64
		paid float64
		want models.FeeStatus
	}{
		{"nothing paid", 500, 0, models.FeeStatusNotPaid},
		{"partial payment", 500, 200, models.FeeStatusPartiallyPaid},
		{"exact payment", 500, 500, models.FeeStatusComplete},
		{"overpayment settles", 500, 600, models.FeeStatusComplete},
		{"zero due is settled", 0, 0, models.FeeStatusComplete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee := models.Fee{AmountDue: tc.due, AmountPaid: tc.paid}
			assert.Equal(t, tc.want, fee.Status())
		})
	}
}

func TestFeeServiceRecordPayment(t *testing.T) {
	repo := &mockFeeRepo{items: map[string]*models.Fee{
		"f1": {ID: "f1", StudentID: "st1", AmountDue: 500, AmountPaid: 100},
	}}
	svc := NewFeeService(repo, studentProfiles("st1"), validator.New(), zap.NewNop())

	fee, err := svc.RecordPayment(context.Background(), "f1", RecordPaymentRequest{Amount: 400})
	require.NoError(t, err)
	assert.Equal(t, float64(500), fee.AmountPaid)
	assert.Equal(t, models.FeeStatusComplete, fee.FeeStatus)
	assert.Equal(t, []float64{400}, repo.payments)
}

func TestFeeServiceGetIncludesDerivedStatus(t *testing.T) {
	repo := &mockFeeRepo{items: map[string]*models.Fee{
		"f1": {ID: "f1", StudentID: "st1", AmountDue: 100, AmountPaid: 50},
	}}
	svc := NewFeeService(repo, studentProfiles("st1"), validator.New(), zap.NewNop())

	fee, err := svc.Get(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusPartiallyPaid, fee.FeeStatus)

	body, err := json.Marshal(fee)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"fee_status":"Partially Paid"`)
}

func TestFeeServiceRecordPaymentRejectsNonPositive(t *testing.T) {
	repo := &mockFeeRepo{items: map[string]*models.Fee{
		"f1": {ID: "f1", StudentID: "st1", AmountDue: 500},
	}}
	svc := NewFeeService(repo, studentProfiles("st1"), validator.New(), zap.NewNop())

	_, err := svc.RecordPayment(context.Background(), "f1", RecordPaymentRequest{Amount: 0})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.payments)
}

func TestFeeServiceRecordPaymentUnknownFee(t *testing.T) {
	repo := &mockFeeRepo{}
	svc := NewFeeService(repo, studentProfiles("st1"), validator.New(), zap.NewNop())

	_, err := svc.RecordPayment(context.Background(), "missing", RecordPaymentRequest{Amount: 100})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestFeeServiceCreateRejectsUnknownStudent(t *testing.T) {
	repo := &mockFeeRepo{}
	svc := NewFeeService(repo, studentProfiles(), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateFeeRequest{
		StudentID:      "ghost",
		AmountDue:      500,
		DueDate:        time.Now().AddDate(0, 1, 0),
		AcademicYearID: "y1",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestFeeServiceCreate(t *testing.T) {
	repo := &mockFeeRepo{}
	svc := NewFeeService(repo, studentProfiles("st1"), validator.New(), zap.NewNop())

	fee, err := svc.Create(context.Background(), CreateFeeRequest{
		StudentID:      "st1",
		AmountDue:      500,
		DueDate:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		AcademicYearID: "y1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusNotPaid, fee.FeeStatus)
	assert.Len(t, repo.items, 1)
}
