package model

import "time"

type DeskType string

const (
	DeskStandard          DeskType = "STANDARD"
	DeskHot               DeskType = "HOT_DESK"
	DeskMeetingRoom       DeskType = "MEETING_ROOM"
	DeskCollaborativeArea DeskType = "COLLABORATIVE_AREA"
)

func (t DeskType) Valid() bool {
	switch t {
	case DeskStandard, DeskHot, DeskMeetingRoom, DeskCollaborativeArea:
		return true
	}
	return false
}

type DeskStatus string

const (
	DeskAvailable   DeskStatus = "AVAILABLE"
	DeskOccupied    DeskStatus = "OCCUPIED"
	DeskMaintenance DeskStatus = "MAINTENANCE"
	DeskReserved    DeskStatus = "RESERVED"
)

func (s DeskStatus) Valid() bool {
	switch s {
	case DeskAvailable, DeskOccupied, DeskMaintenance, DeskReserved:
		return true
	}
	return false
}

// Desk belongs to exactly one floor and optionally to a department.
// Desks are never removed; Active=false hides them.
type Desk struct {
	ID            uint64     `json:"id"`
	DeskNumber    string     `json:"desk_number"`
	FloorID       uint64     `json:"floor_id"`
	DepartmentID  *uint64    `json:"department_id,omitempty"`
	Type          DeskType   `json:"type"`
	Status        DeskStatus `json:"status"`
	PositionX     *float64   `json:"position_x,omitempty"`
	PositionY     *float64   `json:"position_y,omitempty"`
	Equipment     *string    `json:"equipment,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	NearWindow    bool       `json:"near_window"`
	NearElevator  bool       `json:"near_elevator"`
	NearBreakArea bool       `json:"near_break_area"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	FloorNumber    int     `json:"floor_number"`
	FloorName      string  `json:"floor_name,omitempty"`
	DepartmentName *string `json:"department_name,omitempty"`
}

// DeskAvailability is the per-desk answer for a given date.
type DeskAvailability struct {
	DeskID          uint64   `json:"desk_id"`
	DeskNumber      string   `json:"desk_number"`
	FloorNumber     int      `json:"floor_number"`
	Available       bool     `json:"available"`
	ExistingBooking *Booking `json:"existing_booking,omitempty"`
}

// ImportResult summarizes a bulk desk import.
type ImportResult struct {
	Imported      int      `json:"imported"`
	Skipped       int      `json:"skipped"`
	Errors        int      `json:"errors"`
	ErrorMessages []string `json:"error_messages"`
}

// DeskImportRow is one spreadsheet row of a bulk desk import, as read.
// Row is the 1-based sheet row for error messages.
type DeskImportRow struct {
	Row            int
	DeskNumber     string
	FloorNumber    string
	Type           string
	DepartmentCode string
	Equipment      string
	Notes          string
}
