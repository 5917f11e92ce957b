package models

import "time"

// UserRole represents the available account roles.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStaff   UserRole = "STAFF"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
	RoleParent  UserRole = "PARENT"
)

// Valid reports whether the role is one of the supported values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleTeacher, RoleStudent, RoleParent:
		return true
	default:
		return false
	}
}

// GroupName returns the authorization group associated with the role.
func (r UserRole) GroupName() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleStaff:
		return "Staff"
	case RoleTeacher:
		return "Teacher"
	case RoleStudent:
		return "Student"
	case RoleParent:
		return "Parent"
	default:
		return ""
	}
}

// User represents an application account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Profile is the role-specific record attached one-to-one to an account.
// Each role persists into its own table (admin_profiles, staff_profiles,
// teacher_profiles, student_profiles, parent_profiles).
type Profile struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProfileDetail enriches a profile with its account fields for listings.
type ProfileDetail struct {
	Profile
	Username string   `db:"username" json:"username"`
	FullName string   `db:"full_name" json:"full_name"`
	Role     UserRole `db:"role" json:"role"`
}

// Group is an authorization group.
type Group struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// ProvisionedAccount is the composite result of account provisioning:
// the account, its role profile and its group membership, created atomically.
type ProvisionedAccount struct {
	User    User    `json:"user"`
	Profile Profile `json:"profile"`
	Group   Group   `json:"group"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// SalaryPayment records a salary disbursement for a staff member.
type SalaryPayment struct {
	ID             string    `db:"id" json:"id"`
	StaffProfileID string    `db:"staff_profile_id" json:"staff_profile_id"`
	Amount         float64   `db:"amount" json:"amount"`
	PaidAt         time.Time `db:"paid_at" json:"paid_at"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
