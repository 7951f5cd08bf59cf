package domain

import authdomain "github.com/arch-iv/archiv-api/internal/auth/domain"

type Typology struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type License struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	URL  *string `json:"url,omitempty"`
}

type Software struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Vendor *string `json:"vendor,omitempty"`
}

// Option is a plain id/name pair (tags, locations).
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog holds every option list the upload and filter screens need.
// Users is only populated for admins.
type Catalog struct {
	Typologies []Typology              `json:"typologies"`
	Licenses   []License               `json:"licenses"`
	Software   []Software              `json:"software"`
	Tags       []Option                `json:"tags"`
	Locations  []Option                `json:"locations"`
	Users      []authdomain.UserOption `json:"users,omitempty"`
}
