// Package profile extracts a structured business profile from page content.
package profile

import "rivalscan-backend/internal/classify"

// Target market classes.
const (
	MarketLocal    = "local"
	MarketRegional = "regional"
	MarketNational = "national"
	MarketUnknown  = "unknown"
)

// Business type classes.
const (
	TypeB2B     = "B2B"
	TypeB2C     = "B2C"
	TypeBoth    = "both"
	TypeUnknown = "unknown"
)

// Location is the business's primary service location, when detectable.
type Location struct {
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	ServiceArea string `json:"serviceArea,omitempty"`
}

// BusinessProfile describes the subject business. It is produced once per run
// and immutable thereafter.
type BusinessProfile struct {
	Name         string       `json:"name"`
	Industry     classify.Tag `json:"industry"`
	Niche        string       `json:"niche,omitempty"`
	Services     []string     `json:"services,omitempty"`
	TargetMarket string       `json:"targetMarket"`
	Location     *Location    `json:"location,omitempty"`
	BusinessType string       `json:"businessType"`
	Keywords     []string     `json:"keywords,omitempty"`
}

// PrimaryService returns the first listed service, or the industry tag when no
// services were extracted.
func (p BusinessProfile) PrimaryService() string {
	if len(p.Services) > 0 {
		return p.Services[0]
	}
	return string(p.Industry)
}

// LocationLabel returns a human-readable "City, State" label, falling back to
// whatever parts are known.
func (p BusinessProfile) LocationLabel() string {
	if p.Location == nil {
		return ""
	}
	switch {
	case p.Location.City != "" && p.Location.State != "":
		return p.Location.City + ", " + p.Location.State
	case p.Location.City != "":
		return p.Location.City
	case p.Location.State != "":
		return p.Location.State
	default:
		return p.Location.ServiceArea
	}
}
