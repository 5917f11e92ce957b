package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolworks/sis-api/internal/models"
)

// NotificationRepository manages persistence for notifications and their
// class/grade target links.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// List returns notifications matching the filter.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationDetail, int, error) {
	base := `FROM notifications n
JOIN users u ON u.id = n.sender_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Scope != "" {
		conditions = append(conditions, fmt.Sprintf("n.scope = $%d", len(args)+1))
		args = append(args, filter.Scope)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("n.is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.SenderID != "" {
		conditions = append(conditions, fmt.Sprintf("n.sender_id = $%d", len(args)+1))
		args = append(args, filter.SenderID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT n.id, n.title, n.message, n.sender_id, n.scope, n.is_active, n.created_at,
        u.full_name AS sender_name
        %s ORDER BY n.created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var notifications []models.NotificationDetail
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	return notifications, total, nil
}

// FindByID fetches a notification with its target links.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.NotificationDetail, error) {
	const query = `SELECT n.id, n.title, n.message, n.sender_id, n.scope, n.is_active, n.created_at,
        u.full_name AS sender_name
        FROM notifications n
        JOIN users u ON u.id = n.sender_id
        WHERE n.id = $1`
	var notification models.NotificationDetail
	if err := r.db.GetContext(ctx, &notification, query, id); err != nil {
		return nil, err
	}

	classIDs, gradeIDs, err := r.ListTargets(ctx, id)
	if err != nil {
		return nil, err
	}
	notification.ClassIDs = classIDs
	notification.GradeIDs = gradeIDs
	return &notification, nil
}

// ListTargets returns the class and grade IDs a notification targets.
func (r *NotificationRepository) ListTargets(ctx context.Context, id string) (classIDs, gradeIDs []string, err error) {
	if err = r.db.SelectContext(ctx, &classIDs, `SELECT class_id FROM notification_classes WHERE notification_id = $1 ORDER BY class_id`, id); err != nil {
		return nil, nil, fmt.Errorf("list notification classes: %w", err)
	}
	if err = r.db.SelectContext(ctx, &gradeIDs, `SELECT grade_id FROM notification_grades WHERE notification_id = $1 ORDER BY grade_id`, id); err != nil {
		return nil, nil, fmt.Errorf("list notification grades: %w", err)
	}
	return classIDs, gradeIDs, nil
}

// CreateWithTargets inserts the notification and its target links
// atomically. Targets must already be validated against the scope.
func (r *NotificationRepository) CreateWithTargets(ctx context.Context, notification *models.Notification, classIDs, gradeIDs []string) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create notification tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO notifications (id, title, message, sender_id, scope, is_active, created_at)
		VALUES (:id, :title, :message, :sender_id, :scope, :is_active, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	for _, classID := range classIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO notification_classes (notification_id, class_id) VALUES ($1, $2)`, notification.ID, classID); err != nil {
			return fmt.Errorf("link notification class: %w", err)
		}
	}
	for _, gradeID := range gradeIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO notification_grades (notification_id, grade_id) VALUES ($1, $2)`, notification.ID, gradeID); err != nil {
			return fmt.Errorf("link notification grade: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create notification tx: %w", err)
	}
	return nil
}

// SetActive toggles a notification's visibility.
func (r *NotificationRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE notifications SET is_active = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active); err != nil {
		return fmt.Errorf("set notification active: %w", err)
	}
	return nil
}

// Delete removes a notification and its target links permanently.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete notification tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM notification_classes WHERE notification_id = $1`, id); err != nil {
		return fmt.Errorf("delete notification classes: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM notification_grades WHERE notification_id = $1`, id); err != nil {
		return fmt.Errorf("delete notification grades: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete notification tx: %w", err)
	}
	return nil
}

// ListVisibleToClass returns active notifications visible to students of a
// class: school-wide ones, ones targeting the class, and ones targeting
// the class's grade.
func (r *NotificationRepository) ListVisibleToClass(ctx context.Context, classID, gradeID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT DISTINCT n.id, n.title, n.message, n.sender_id, n.scope, n.is_active, n.created_at
        FROM notifications n
        LEFT JOIN notification_classes nc ON nc.notification_id = n.id
        LEFT JOIN notification_grades ng ON ng.notification_id = n.id
        WHERE n.is_active = TRUE
          AND (n.scope = 'School' OR nc.class_id = $1 OR ng.grade_id = $2)
        ORDER BY n.created_at DESC LIMIT %d`, limit)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, classID, gradeID); err != nil {
		return nil, fmt.Errorf("list visible notifications: %w", err)
	}
	return notifications, nil
}

// ListSchoolWide returns recent active school-scoped notifications.
func (r *NotificationRepository) ListSchoolWide(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT id, title, message, sender_id, scope, is_active, created_at
        FROM notifications WHERE is_active = TRUE AND scope = 'School'
        ORDER BY created_at DESC LIMIT %d`, limit)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query); err != nil {
		return nil, fmt.Errorf("list school notifications: %w", err)
	}
	return notifications, nil
}
