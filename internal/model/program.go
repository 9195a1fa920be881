package model

import "time"

// ProgramType classifies a service program.
type ProgramType string

const (
	ProgramTherapy      ProgramType = "therapy"
	ProgramSupportGroup ProgramType = "support_group"
	ProgramWorkshop     ProgramType = "workshop"
	ProgramConsultation ProgramType = "consultation"
	ProgramOther        ProgramType = "other"
)

// ProgramStatus is the backend approval/publication state of a program.
type ProgramStatus string

const (
	ProgramDraft     ProgramStatus = "draft"
	ProgramApproved  ProgramStatus = "approved"
	ProgramPublished ProgramStatus = "published"
	ProgramArchived  ProgramStatus = "archived"
)

// PricingType describes how an offering is priced.
type PricingType string

const (
	PricingFree         PricingType = "free"
	PricingPaid         PricingType = "paid"
	PricingSlidingScale PricingType = "sliding_scale"
	PricingInsurance    PricingType = "insurance"
	PricingContact      PricingType = "contact"
)

// Program is a service program owned by an organization.
type Program struct {
	ID               int64         `json:"id"`
	OrganizationID   int64         `json:"organization_id"`
	OrganizationName string        `json:"organization_name"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"short_description,omitempty"`
	BrochureURL      string        `json:"brochure_url,omitempty"`
	Language         string        `json:"language"`
	ProgramType      ProgramType   `json:"program_type"`
	Status           ProgramStatus `json:"status"`
	IsPublished      bool          `json:"is_published"`
	OfferingCount    int           `json:"offering_count"`
	ApprovedByEmail  string        `json:"approved_by_email,omitempty"`
	ApprovedAt       *time.Time    `json:"approved_at,omitempty"`
	PublishedAt      *time.Time    `json:"published_at,omitempty"`
	CreatedByEmail   string        `json:"created_by_email,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ProgramOffering prices a program at one physical location and carries
// the contact details shown to the public.
type ProgramOffering struct {
	ID             int64        `json:"id"`
	ProgramID      int64        `json:"program_id"`
	ProgramName    string       `json:"program_name"`
	Location       LocationInfo `json:"location"`
	ContactName    string       `json:"contact_name,omitempty"`
	ContactPhone   string       `json:"contact_phone,omitempty"`
	ContactEmail   string       `json:"contact_email,omitempty"`
	PricingType    PricingType  `json:"pricing_type"`
	Price          *float64     `json:"price,omitempty"`
	Currency       string       `json:"currency,omitempty"`
	PricingDetails string       `json:"pricing_details,omitempty"`
	ScheduleInfo   string       `json:"schedule_info,omitempty"`
	Capacity       *int         `json:"capacity,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
