package users

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

type stubRepo struct {
	users map[string]*User

	createdUser  *User
	createdHash  string
	createdRoles []string
	createCalls  int
}

func (s *stubRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, name string) (*User, error) {
	if u, ok := s.users[name]; ok {
		return u, nil
	}
	return nil, nil
}

func (s *stubRepo) Create(ctx context.Context, user *User, passwordHash string, roles []string) error {
	s.createCalls++
	s.createdUser = user
	s.createdHash = passwordHash
	s.createdRoles = roles
	if s.users == nil {
		s.users = map[string]*User{}
	}
	s.users[user.Name] = user
	return nil
}

func (s *stubRepo) UpdateProfile(ctx context.Context, name string, patch ProfilePatch) (*User, error) {
	return s.users[name], nil
}

func (s *stubRepo) SetEnabled(ctx context.Context, name string, enabled bool) error {
	return nil
}

func TestCreateDefaultsNameToEmail(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	user, err := svc.Create(context.Background(), CreateInput{
		Email:    " rani@example.com ",
		FullName: "Rani Kusuma",
		Password: "rahasia-sekali",
		Roles:    []string{"Accounts User"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Name != "rani@example.com" {
		t.Fatalf("expected name defaulted to email, got %q", user.Name)
	}
	if repo.createdUser.UserType != "System User" {
		t.Fatalf("expected System User type, got %q", repo.createdUser.UserType)
	}
	if !repo.createdUser.Enabled {
		t.Fatal("expected new account enabled")
	}
	if len(repo.createdRoles) != 1 || repo.createdRoles[0] != "Accounts User" {
		t.Fatalf("roles not forwarded: %v", repo.createdRoles)
	}
}

func TestCreateHashesPassword(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), CreateInput{
		Email:    "budi@example.com",
		Password: "kata-sandi-panjang",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if repo.createdHash == "" || strings.Contains(repo.createdHash, "kata-sandi-panjang") {
		t.Fatalf("password stored without hashing: %q", repo.createdHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.createdHash), []byte("kata-sandi-panjang")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestCreateRejectsUnknownTimeZone(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Email:    "tono@example.com",
		Password: "kata-sandi-panjang",
		TimeZone: "Mars/Olympus",
	})
	if err == nil {
		t.Fatal("expected unknown time zone to be rejected")
	}
	if repo.createCalls != 0 {
		t.Fatalf("repo.Create called %d times for invalid input", repo.createCalls)
	}
}

func TestCreateRequiresNameOrEmail(t *testing.T) {
	svc := NewService(&stubRepo{})

	if _, err := svc.Create(context.Background(), CreateInput{Password: "kata-sandi-panjang"}); err == nil {
		t.Fatal("expected error when both name and email are empty")
	}
}

func TestUpdateProfileRejectsUnknownTimeZone(t *testing.T) {
	tz := "Atlantis/Sunken"
	svc := NewService(&stubRepo{})

	if _, err := svc.UpdateProfile(context.Background(), "rani@example.com", ProfilePatch{TimeZone: &tz}); err == nil {
		t.Fatal("expected unknown time zone to be rejected")
	}
}
