package model

import "time"

type HolidayType string

const (
	HolidayFestivity      HolidayType = "FESTIVITY"
	HolidayCompanyClosure HolidayType = "COMPANY_CLOSURE"
	HolidayMaintenance    HolidayType = "MAINTENANCE"
	HolidayOther          HolidayType = "OTHER"
)

func (t HolidayType) Valid() bool {
	switch t {
	case HolidayFestivity, HolidayCompanyClosure, HolidayMaintenance, HolidayOther:
		return true
	}
	return false
}

// CompanyHoliday marks a non-working date.  Recurring holidays repeat on
// the same month and day every year.
type CompanyHoliday struct {
	ID          uint64      `json:"id"`
	Date        Date        `json:"date"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Type        HolidayType `json:"type"`
	Recurring   bool        `json:"recurring"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
