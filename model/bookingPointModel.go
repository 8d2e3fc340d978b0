package model

import "github.com/google/uuid"

// BookingPoint is a physical exchange point where pickup and return happen.
type BookingPoint struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Coordinates  *string   `json:"coordinates,omitempty"` // "lat,lng"
	WorkingHours string    `json:"working_hours"`
	Phone        *string   `json:"phone,omitempty"`
	IsActive     bool      `json:"is_active"`
}
