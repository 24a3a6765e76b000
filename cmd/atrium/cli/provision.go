package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/users"
)

// ProvisionCLI creates desk accounts from the command line.
type ProvisionCLI struct {
	service *users.Service
}

// NewProvisionCLI wires the helper to a users service.
func NewProvisionCLI(service *users.Service) *ProvisionCLI {
	return &ProvisionCLI{service: service}
}

// ProvisionOptions defines available flags for the provision-user command.
type ProvisionOptions struct {
	Email      string
	Name       string
	FullName   string
	Password   string
	Language   string
	TimeZone   string
	Roles      []string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// ProvisionSummary describes the JSON response for provision-user.
type ProvisionSummary struct {
	OK      bool     `json:"ok"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	Message string   `json:"message,omitempty"`
}

// ProvisionCommand executes the account creation workflow and prints the
// outcome.
func (c *ProvisionCLI) ProvisionCommand(ctx context.Context, opts ProvisionOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if strings.TrimSpace(opts.Email) == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "provision-user: --email is required")
		return 1
	}
	if strings.TrimSpace(opts.Password) == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "provision-user: --password is required")
		return 1
	}

	user, err := c.service.Create(ctx, users.CreateInput{
		Name:     opts.Name,
		Email:    opts.Email,
		FullName: opts.FullName,
		Password: opts.Password,
		Language: opts.Language,
		TimeZone: opts.TimeZone,
		Roles:    opts.Roles,
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			_, _ = fmt.Fprintf(opts.Stderr, "provision-user: account %s already exists\n", opts.Email)
			return 10
		}
		_, _ = fmt.Fprintf(opts.Stderr, "provision-user: %v\n", err)
		return 1
	}

	roles := make([]string, len(opts.Roles))
	copy(roles, opts.Roles)
	sort.Strings(roles)

	if opts.JSONOutput {
		summary := ProvisionSummary{OK: true, Name: user.Name, Email: user.Email, Roles: roles}
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "provision-user: encode json: %v\n", err)
			return 1
		}
		return 0
	}

	_, _ = fmt.Fprintf(opts.Stdout, "Created account %s (%s)\n", user.Name, user.Email)
	if len(roles) > 0 {
		_, _ = fmt.Fprintf(opts.Stdout, "Roles: %s\n", strings.Join(roles, ", "))
	}
	return 0
}
