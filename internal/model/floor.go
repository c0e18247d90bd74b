package model

import "time"

// Floor carries denormalized desk and locker counters that are recomputed
// whenever a desk or locker on it is created or deactivated.
type Floor struct {
	ID           uint64    `json:"id"`
	FloorNumber  int       `json:"floor_number"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	SquareMeters *int      `json:"square_meters,omitempty"`
	Description  *string   `json:"description,omitempty"`
	MapImageURL  *string   `json:"map_image_url,omitempty"`
	TotalDesks   int       `json:"total_desks"`
	TotalLockers int       `json:"total_lockers"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FloorStatistics is a one-day snapshot of a floor.
type FloorStatistics struct {
	FloorID         uint64 `json:"floor_id"`
	Date            Date   `json:"date"`
	TotalDesks      int    `json:"total_desks"`
	AvailableDesks  int    `json:"available_desks"`
	OccupiedDesks   int    `json:"occupied_desks"`
	TotalLockers    int    `json:"total_lockers"`
	FreeLockers     int    `json:"free_lockers"`
	AssignedLockers int    `json:"assigned_lockers"`
	OccupancyRate   Rate   `json:"occupancy_rate"`
}
