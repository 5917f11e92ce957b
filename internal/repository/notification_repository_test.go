package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolworks/sis-api/internal/models"
)

func TestNotificationRepositoryCreateWithTargets(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), "Exam week", "Exams start Monday", "sender-1", "Class", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notification_classes (notification_id, class_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "c1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notification_classes (notification_id, class_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "c2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	notification := &models.Notification{
		Title:    "Exam week",
		Message:  "Exams start Monday",
		SenderID: "sender-1",
		Scope:    models.ScopeClass,
		IsActive: true,
	}
	err := repo.CreateWithTargets(context.Background(), notification, []string{"c1", "c2"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, notification.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryCreateWithTargetsRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notification_grades (notification_id, grade_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "g10").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	notification := &models.Notification{
		Title:    "Field trip",
		Message:  "Permission slips due Friday",
		SenderID: "sender-1",
		Scope:    models.ScopeGrade,
		IsActive: true,
	}
	err := repo.CreateWithTargets(context.Background(), notification, nil, []string{"g10"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositorySetActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_active = $2 WHERE id = $1")).
		WithArgs("n1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetActive(context.Background(), "n1", false))
	assert.NoError(t, mock.ExpectationsWereMet())
}
