package model

import "time"

// BookingStatus is the lifecycle state of a desk booking.
type BookingStatus string

const (
	BookingActive     BookingStatus = "ACTIVE"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
	BookingNoShow     BookingStatus = "NO_SHOW"
)

// HoldsDesk reports whether a booking in this status occupies its desk.
// Only these statuses count towards the one-per-desk and one-per-user
// daily limits.
func (s BookingStatus) HoldsDesk() bool {
	return s == BookingActive || s == BookingCheckedIn
}

// BookingType describes which part of the day is booked.
type BookingType string

const (
	BookingFullDay   BookingType = "FULL_DAY"
	BookingMorning   BookingType = "MORNING"
	BookingAfternoon BookingType = "AFTERNOON"
	BookingCustom    BookingType = "CUSTOM"
)

func (t BookingType) Valid() bool {
	switch t {
	case BookingFullDay, BookingMorning, BookingAfternoon, BookingCustom:
		return true
	}
	return false
}

// Booking is a reservation of one desk by one user for one calendar day.
// The desk, floor and user fields at the bottom are filled from joins on
// reads and ignored on writes.
type Booking struct {
	ID                 uint64        `json:"id"`
	UserID             uint64        `json:"user_id"`
	DeskID             uint64        `json:"desk_id"`
	BookingDate        Date          `json:"booking_date"`
	StartTime          *string       `json:"start_time,omitempty"`
	EndTime            *string       `json:"end_time,omitempty"`
	Status             BookingStatus `json:"status"`
	Type               BookingType   `json:"type"`
	Notes              *string       `json:"notes,omitempty"`
	CheckedInAt        *time.Time    `json:"checked_in_at,omitempty"`
	CheckedOutAt       *time.Time    `json:"checked_out_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CancellationReason *string       `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	DeskNumber  string `json:"desk_number,omitempty"`
	FloorID     uint64 `json:"floor_id,omitempty"`
	FloorNumber int    `json:"floor_number"`
	FloorName   string `json:"floor_name,omitempty"`
	UserName    string `json:"user_name,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
}
