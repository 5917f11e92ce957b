package models

import "time"

// NotificationScope defines who a notification targets.
type NotificationScope string

const (
	ScopeClass  NotificationScope = "Class"
	ScopeGrade  NotificationScope = "Grade"
	ScopeSchool NotificationScope = "School"
)

// Valid reports whether the scope is a supported value.
func (s NotificationScope) Valid() bool {
	switch s {
	case ScopeClass, ScopeGrade, ScopeSchool:
		return true
	default:
		return false
	}
}

// Notification is a broadcast message scoped to classes, grades or the
// whole school. Target links persist in notification_classes and
// notification_grades alongside the base row.
type Notification struct {
	ID        string            `db:"id" json:"id"`
	Title     string            `db:"title" json:"title"`
	Message   string            `db:"message" json:"message"`
	SenderID  string            `db:"sender_id" json:"sender_id"`
	Scope     NotificationScope `db:"scope" json:"scope"`
	IsActive  bool              `db:"is_active" json:"is_active"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// NotificationDetail extends a notification with its target sets.
type NotificationDetail struct {
	Notification
	SenderName string   `db:"sender_name" json:"sender_name"`
	ClassIDs   []string `json:"class_ids,omitempty"`
	GradeIDs   []string `json:"grade_ids,omitempty"`
}

// NotificationFilter scopes notification listings.
type NotificationFilter struct {
	Scope    NotificationScope
	IsActive *bool
	SenderID string
	Page     int
	PageSize int
}
