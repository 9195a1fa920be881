package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mindwell/care-portal/internal/model"
)

// ProgramData is the payload for creating or updating a program.
type ProgramData struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description,omitempty"`
	Language         string            `json:"language"`
	ProgramType      model.ProgramType `json:"program_type"`
}

// OfferingData is the payload for creating or updating an offering.
type OfferingData struct {
	LocationID     int64             `json:"location_id"`
	ContactName    string            `json:"contact_name,omitempty"`
	ContactPhone   string            `json:"contact_phone,omitempty"`
	ContactEmail   string            `json:"contact_email,omitempty"`
	PricingType    model.PricingType `json:"pricing_type"`
	Price          *float64          `json:"price,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	PricingDetails string            `json:"pricing_details,omitempty"`
	ScheduleInfo   string            `json:"schedule_info,omitempty"`
	Capacity       *int              `json:"capacity,omitempty"`
	Notes          string            `json:"notes,omitempty"`
}

// Programs lists the programs of an organization.
func (c *Client) Programs(ctx context.Context, orgID int64) ([]model.Program, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/organizations/%d/programs", orgID), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Program](data)
}

// Program fetches one program by id.
func (c *Client) Program(ctx context.Context, id int64) (*model.Program, error) {
	var p model.Program
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/programs/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProgram adds a program in draft status.
func (c *Client) CreateProgram(ctx context.Context, orgID int64, data ProgramData) (*model.Program, error) {
	var p model.Program
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/organizations/%d/programs", orgID), data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProgram rewrites a program's editable fields.
func (c *Client) UpdateProgram(ctx context.Context, id int64, data ProgramData) (*model.Program, error) {
	var p model.Program
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/v1/programs/%d", id), data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProgram removes a program and its offerings.
func (c *Client) DeleteProgram(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/programs/%d", id), nil, nil)
}

// PublishProgram makes an approved program publicly visible.
func (c *Client) PublishProgram(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/programs/%d/publish", id), nil, nil)
}

// UnpublishProgram withdraws a program from public view.
func (c *Client) UnpublishProgram(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/programs/%d/unpublish", id), nil, nil)
}

// Offerings lists the offerings of a program.
func (c *Client) Offerings(ctx context.Context, programID int64) ([]model.ProgramOffering, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/programs/%d/offerings", programID), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.ProgramOffering](data)
}

// CreateOffering links a program to a location with pricing and contact
// details.
func (c *Client) CreateOffering(ctx context.Context, programID int64, data OfferingData) (*model.ProgramOffering, error) {
	var o model.ProgramOffering
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/programs/%d/offerings", programID), data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOffering rewrites an offering.
func (c *Client) UpdateOffering(ctx context.Context, programID, offeringID int64, data OfferingData) (*model.ProgramOffering, error) {
	var o model.ProgramOffering
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/v1/programs/%d/offerings/%d", programID, offeringID), data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteOffering removes an offering.
func (c *Client) DeleteOffering(ctx context.Context, programID, offeringID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/programs/%d/offerings/%d", programID, offeringID), nil, nil)
}
