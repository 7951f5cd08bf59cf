package domain

import "time"

// Project statuses. Only published projects appear in the gallery.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusCompleted = "completed"
	StatusOngoing   = "ongoing"
)

const (
	DefaultAuthorName = "Unknown Architect"
	DefaultTypology   = "Unknown Type"
	DefaultLicense    = "All Rights Reserved"
	DefaultLocation   = "Indonesia"
	DefaultRole       = "Team Member"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPublished, StatusDraft, StatusCompleted, StatusOngoing:
		return true
	}
	return false
}

type Author struct {
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Card is the normalized gallery item.
type Card struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url"`
	GLTFURL      *string   `json:"gltf_url,omitempty"`
	Status       string    `json:"status"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
	Author       Author    `json:"author"`
	Typology     string    `json:"typology"`
	License      string    `json:"license"`
	Location     string    `json:"location"`
	Tags         []string  `json:"tags"`
	Software     []string  `json:"software"`
}

type Named struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Owner struct {
	ID        string  `json:"id"`
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type License struct {
	Name string  `json:"name"`
	URL  *string `json:"url,omitempty"`
}

type Typology struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type Contributor struct {
	UserID *string `json:"user_id,omitempty"`
	Name   string  `json:"name"`
	Role   string  `json:"role"`
}

type Image struct {
	ID        int64     `json:"id"`
	URL       string    `json:"image_url"`
	Caption   *string   `json:"caption,omitempty"`
	Position  *int      `json:"position,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Detail is everything the project page renders.
type Detail struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	Description    *string       `json:"description,omitempty"`
	ThumbnailURL   string        `json:"thumbnail_url"`
	GLTFURL        *string       `json:"gltf_url,omitempty"`
	Status         string        `json:"status"`
	Views          int64         `json:"views"`
	CompletionDate *time.Time    `json:"completion_date,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	UserID         *string       `json:"user_id,omitempty"`
	Author         Author        `json:"author"`
	Owner          *Owner        `json:"owner,omitempty"`
	Typology       Typology      `json:"typology"`
	License        License       `json:"license"`
	Location       string        `json:"location"`
	Tags           []Named       `json:"tags"`
	Software       []Named       `json:"software"`
	Contributors   []Contributor `json:"contributors"`
	Images         []Image       `json:"images"`
}

// ManualContributor is a team member without an account.
type ManualContributor struct {
	Name string
	Role string
}

type NewImage struct {
	URL     string
	Caption string
}

// CreateInput carries a validated project submission.
type CreateInput struct {
	Title              string
	Description        string
	BuildingTypologyID string
	LocationID         string
	LicenseID          string
	Status             string
	CompletionDate     *time.Time
	GLTFURL            string
	ThumbnailURL       string

	// Exactly one of OwnerID and AuthorName is set.
	OwnerID    string
	AuthorName string

	TagIDs             []string
	SoftwareIDs        []string
	ContributorIDs     []string
	ManualContributors []ManualContributor
	Images             []NewImage
}

// Created is returned after a successful insert.
type Created struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}
