package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrUsernameTooShort = errors.New("username too short")
)

const MinUsernameLength = 3

// SocialLinks is stored as JSONB in users.social_links.
type SocialLinks struct {
	Website  string `json:"website"`
	Twitter  string `json:"twitter"`
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedin"`
}

// Profile is a row of the public users table, keyed by the auth subject.
type Profile struct {
	ID          string      `json:"id" db:"id"`
	Email       *string     `json:"email,omitempty" db:"email"`
	Username    string      `json:"username" db:"username"`
	FullName    *string     `json:"full_name,omitempty" db:"full_name"`
	AvatarURL   *string     `json:"avatar_url,omitempty" db:"avatar_url"`
	Bio         *string     `json:"bio,omitempty" db:"bio"`
	SocialLinks SocialLinks `json:"social_links" db:"social_links"`
	IsAdmin     bool        `json:"is_admin" db:"is_admin"`
	CreatedAt   *time.Time  `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty" db:"updated_at"`
}

// UpdateProfileRequest represents data for updating the caller's profile
type UpdateProfileRequest struct {
	Username    string
	FullName    *string
	AvatarURL   *string
	Bio         *string
	SocialLinks SocialLinks
}

// UserOption is the compact user listing shown to admins when picking owners and contributors.
type UserOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
