package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mindwell/care-portal/internal/model"
)

// LocationData is the payload for creating or updating a location.
// Coordinates are not part of it: geocoding is a backend concern.
type LocationData struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Locations lists the locations of an organization.
func (c *Client) Locations(ctx context.Context, orgID int64) ([]model.Location, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/organizations/%d/locations", orgID), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Location](data)
}

// Location fetches one location by id.
func (c *Client) Location(ctx context.Context, orgID, locationID int64) (*model.Location, error) {
	var loc model.Location
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/organizations/%d/locations/%d", orgID, locationID), nil, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// CreateLocation adds a location; the backend geocodes it asynchronously.
func (c *Client) CreateLocation(ctx context.Context, orgID int64, data LocationData) (*model.Location, error) {
	var loc model.Location
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/organizations/%d/locations", orgID), data, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// UpdateLocation rewrites a location; an address change triggers
// re-geocoding server-side.
func (c *Client) UpdateLocation(ctx context.Context, orgID, locationID int64, data LocationData) (*model.Location, error) {
	var loc model.Location
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/organizations/%d/locations/%d", orgID, locationID), data, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// DeleteLocation removes a location.
func (c *Client) DeleteLocation(ctx context.Context, orgID, locationID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/organizations/%d/locations/%d", orgID, locationID), nil, nil)
}
