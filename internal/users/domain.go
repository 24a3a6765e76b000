package users

import "time"

// User is a desk account, keyed by name. For regular accounts the name is
// the email address; reserved accounts use fixed names.
type User struct {
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name,omitempty"`
	UserImage         string    `json:"user_image,omitempty"`
	Gender            string    `json:"gender,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	Location          string    `json:"location,omitempty"`
	Interest          string    `json:"interest,omitempty"`
	BannerImage       string    `json:"banner_image,omitempty"`
	AllowedInMentions bool      `json:"allowed_in_mentions,omitempty"`
	UserType          string    `json:"user_type,omitempty"`
	Language          string    `json:"language,omitempty"`
	TimeZone          string    `json:"time_zone,omitempty"`
	Enabled           bool      `json:"enabled"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProfilePatch carries the updatable profile fields. Nil fields are left
// untouched.
type ProfilePatch struct {
	FullName    *string `json:"full_name"`
	UserImage   *string `json:"user_image"`
	Gender      *string `json:"gender"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	Interest    *string `json:"interest"`
	BannerImage *string `json:"banner_image"`
	Language    *string `json:"language"`
	TimeZone    *string `json:"time_zone"`
}
