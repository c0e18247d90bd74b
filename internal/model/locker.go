package model

import "time"

type LockerType string

const (
	LockerShiftWorkers LockerType = "TURNISTI"
	LockerFree         LockerType = "FREE"
)

func (t LockerType) Valid() bool { return t == LockerShiftWorkers || t == LockerFree }

type LockerStatus string

const (
	LockerStatusFree        LockerStatus = "FREE"
	LockerStatusAssigned    LockerStatus = "ASSIGNED"
	LockerStatusMaintenance LockerStatus = "MAINTENANCE"
)

func (s LockerStatus) Valid() bool {
	switch s {
	case LockerStatusFree, LockerStatusAssigned, LockerStatusMaintenance:
		return true
	}
	return false
}

type Locker struct {
	ID           uint64       `json:"id"`
	LockerNumber string       `json:"locker_number"`
	FloorID      uint64       `json:"floor_id"`
	Type         LockerType   `json:"type"`
	Status       LockerStatus `json:"status"`
	PositionX    *float64     `json:"position_x,omitempty"`
	PositionY    *float64     `json:"position_y,omitempty"`
	Notes        *string      `json:"notes,omitempty"`
	Active       bool         `json:"active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type AssignmentStatus string

const (
	AssignmentActive  AssignmentStatus = "ACTIVE"
	AssignmentExpired AssignmentStatus = "EXPIRED"
	AssignmentRevoked AssignmentStatus = "REVOKED"
)

// LockerAssignment gives a locker to a user from StartDate until EndDate
// (open ended when nil).
type LockerAssignment struct {
	ID         uint64           `json:"id"`
	UserID     uint64           `json:"user_id"`
	LockerID   uint64           `json:"locker_id"`
	StartDate  Date             `json:"start_date"`
	EndDate    *Date            `json:"end_date,omitempty"`
	Status     AssignmentStatus `json:"status"`
	Notes      *string          `json:"notes,omitempty"`
	AccessCode *string          `json:"access_code,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// CoversDate reports whether an active assignment is in effect on d.
func (a LockerAssignment) CoversDate(d Date) bool {
	if a.Status != AssignmentActive || a.StartDate.After(d) {
		return false
	}
	return a.EndDate == nil || !a.EndDate.Before(d)
}
