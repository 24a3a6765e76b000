package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/atrium-hq/atrium/internal/timezones"
)

// CreateInput carries the fields accepted when opening an account.
type CreateInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email" validate:"required,email"`
	FullName string   `json:"full_name"`
	Password string   `json:"password" validate:"required,min=8"`
	Language string   `json:"language"`
	TimeZone string   `json:"time_zone"`
	Roles    []string `json:"roles"`
}

// Service handles account business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get fetches one account by name.
func (s *Service) Get(ctx context.Context, name string) (*User, error) {
	return s.repo.Get(ctx, name)
}

// Create opens an account. The name defaults to the email address, matching
// how desk accounts are keyed.
func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.TrimSpace(input.Email)
	}
	if name == "" {
		return nil, errors.New("users: name required")
	}
	if input.TimeZone != "" && !timezones.Known(input.TimeZone) {
		return nil, fmt.Errorf("users: unknown time zone %q", input.TimeZone)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &User{
		Name:     name,
		Email:    strings.TrimSpace(input.Email),
		FullName: strings.TrimSpace(input.FullName),
		UserType: "System User",
		Language: input.Language,
		TimeZone: input.TimeZone,
		Enabled:  true,
	}
	if err := s.repo.Create(ctx, user, string(hash), input.Roles); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, name)
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, name string, patch ProfilePatch) (*User, error) {
	if patch.TimeZone != nil && *patch.TimeZone != "" && !timezones.Known(*patch.TimeZone) {
		return nil, fmt.Errorf("users: unknown time zone %q", *patch.TimeZone)
	}
	return s.repo.UpdateProfile(ctx, name, patch)
}

// SetEnabled switches an account on or off.
func (s *Service) SetEnabled(ctx context.Context, name string, enabled bool) error {
	return s.repo.SetEnabled(ctx, name, enabled)
}
