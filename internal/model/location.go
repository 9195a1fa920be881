package model

import "time"

// Coordinates is a geocoded point.  Geocoding happens server-side after a
// location is created or its address changes.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a physical site operated by an organization.
type Location struct {
	ID               int64        `json:"id"`
	OrganizationID   int64        `json:"organization_id"`
	OrganizationName string       `json:"organization_name"`
	Name             string       `json:"name"`
	Slug             string       `json:"slug"`
	Description      string       `json:"description,omitempty"`
	Address          string       `json:"address"`
	City             string       `json:"city"`
	State            string       `json:"state,omitempty"`
	Country          string       `json:"country"`
	PostalCode       string       `json:"postal_code,omitempty"`
	FullAddress      string       `json:"full_address,omitempty"`
	Phone            string       `json:"phone,omitempty"`
	Email            string       `json:"email,omitempty"`
	Coordinates      *Coordinates `json:"coordinates,omitempty"`
	HasCoordinates   bool         `json:"has_coordinates"`
	IsActive         bool         `json:"is_active"`
	GeocodedAt       *time.Time   `json:"geocoded_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// LocationInfo is the compact location reference embedded in offerings.
type LocationInfo struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
	Address string `json:"address"`
}
