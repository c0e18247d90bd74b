package model

import (
	"strconv"
	"time"
)

// Rate is a percentage held to two decimals and rendered with exactly two.
type Rate float64

// RateFromHundredths converts an integer number of hundredths of a percent.
func RateFromHundredths(h int64) Rate { return Rate(float64(h) / 100) }

func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(r), 'f', 2, 64)), nil
}

func (r Rate) String() string { return strconv.FormatFloat(float64(r), 'f', 2, 64) }

// DayOccupancy is one entry of the daily series.  NonWorking days are
// included in the series but excluded from every aggregate.
type DayOccupancy struct {
	Date          Date    `json:"date"`
	DayOfWeek     string  `json:"day_of_week"`
	OccupiedDesks int     `json:"occupied_desks"`
	FreeDesks     int     `json:"free_desks"`
	TotalDesks    int     `json:"total_desks"`
	OccupancyRate Rate    `json:"occupancy_rate"`
	NonWorking    bool    `json:"non_working"`
	HolidayName   *string `json:"holiday_name,omitempty"`
}

// FloorOccupancy aggregates bookings of one floor over the working days of
// a report range.
type FloorOccupancy struct {
	FloorID              uint64 `json:"floor_id"`
	FloorName            string `json:"floor_name"`
	FloorNumber          int    `json:"floor_number"`
	TotalDesks           int    `json:"total_desks"`
	AverageOccupancyRate Rate   `json:"average_occupancy_rate"`
	TotalBookings        int    `json:"total_bookings"`
}

type OccupancyReport struct {
	StartDate            Date             `json:"start_date"`
	EndDate              Date             `json:"end_date"`
	TotalWorkingDays     int              `json:"total_working_days"`
	TotalDesks           int              `json:"total_desks"`
	AverageOccupancyRate Rate             `json:"average_occupancy_rate"`
	AverageOccupiedDesks int              `json:"average_occupied_desks"`
	AverageFreeDesks     int              `json:"average_free_desks"`
	MostOccupiedDay      *DayOccupancy    `json:"most_occupied_day,omitempty"`
	LeastOccupiedDay     *DayOccupancy    `json:"least_occupied_day,omitempty"`
	DailyOccupancy       []DayOccupancy   `json:"daily_occupancy"`
	FloorStatistics      []FloorOccupancy `json:"floor_statistics"`
	GeneratedAt          time.Time        `json:"generated_at"`
}
