// Package queue carries booking lifecycle events over RabbitMQ: the payload,
// a publisher used by the booking service and a consumer that keeps an
// audit log of every event.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/desk-booking/internal/model"
)

// BookingQueueName is the durable queue all booking events go to.
const BookingQueueName = "booking.events"

type EventType string

const (
	EventCreated    EventType = "created"
	EventUpdated    EventType = "updated"
	EventCancelled  EventType = "cancelled"
	EventCheckedIn  EventType = "checked_in"
	EventCheckedOut EventType = "checked_out"
	EventNoShow     EventType = "no_show"
	EventCompleted  EventType = "completed"
)

// BookingEvent is published after a booking changes state.  It carries
// enough to log or notify without querying the primary database.
type BookingEvent struct {
	EventID     string              `json:"event_id"`
	Type        EventType           `json:"type"`
	BookingID   uint64              `json:"booking_id"`
	UserID      uint64              `json:"user_id"`
	DeskID      uint64              `json:"desk_id"`
	DeskNumber  string              `json:"desk_number,omitempty"`
	FloorID     uint64              `json:"floor_id,omitempty"`
	BookingDate string              `json:"booking_date"`
	Status      model.BookingStatus `json:"status"`
	Reason      string              `json:"reason,omitempty"`
	OccurredAt  string              `json:"occurred_at"`
}

// NewBookingEvent snapshots b under a fresh event id.
func NewBookingEvent(typ EventType, b *model.Booking, at time.Time) BookingEvent {
	ev := BookingEvent{
		EventID:     uuid.NewString(),
		Type:        typ,
		BookingID:   b.ID,
		UserID:      b.UserID,
		DeskID:      b.DeskID,
		DeskNumber:  b.DeskNumber,
		FloorID:     b.FloorID,
		BookingDate: b.BookingDate.String(),
		Status:      b.Status,
		OccurredAt:  at.UTC().Format(time.RFC3339),
	}
	if b.CancellationReason != nil {
		ev.Reason = *b.CancellationReason
	}
	return ev
}
