package model

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleManager || r == RoleUser }

// IsStaff reports whether the role may act on other users' bookings.
func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleManager }

type WorkType string

const (
	WorkStandard WorkType = "STANDARD"
	WorkShift    WorkType = "TURNISTA"
	WorkRemote   WorkType = "REMOTE"
	WorkHybrid   WorkType = "HYBRID"
)

func (w WorkType) Valid() bool {
	switch w {
	case WorkStandard, WorkShift, WorkRemote, WorkHybrid:
		return true
	}
	return false
}

// User represents a row of the `users` table.  PasswordHash never leaves
// the process.
type User struct {
	ID            uint64     `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	EmployeeID    *string    `json:"employee_id,omitempty"`
	DepartmentID  *uint64    `json:"department_id,omitempty"`
	Role          Role       `json:"role"`
	WorkType      WorkType   `json:"work_type"`
	PhoneNumber   *string    `json:"phone_number,omitempty"`
	Active        bool       `json:"active"`
	EmailVerified bool       `json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u User) FullName() string { return u.FirstName + " " + u.LastName }

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never stored, only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Live reports whether the token can still be exchanged at now.
func (t RefreshToken) Live(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
