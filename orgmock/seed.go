package orgmock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nisimpson/orgmap"
)

// Seeder is a helper for seeding test data into an identity table through
// the same store operations production code uses.
type Seeder struct {
	store *orgmap.Store
}

// NewSeeder creates a new test data seeder.
func NewSeeder(client DynamoDBAPI, table *orgmap.Table) *Seeder {
	return &Seeder{store: orgmap.New(client, table)}
}

// Store returns the store the seeder writes through.
func (s *Seeder) Store() *orgmap.Store { return s.store }

// SeedUsers seeds users (and their email alias items) into the table.
func (s *Seeder) SeedUsers(ctx context.Context, users ...*orgmap.User) error {
	for _, user := range users {
		if err := s.store.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", user.ID, err)
		}
	}
	return nil
}

// SeedOrgs seeds orgs into the table.
func (s *Seeder) SeedOrgs(ctx context.Context, orgs ...*orgmap.Org) error {
	for _, org := range orgs {
		if err := s.store.CreateOrg(ctx, org); err != nil {
			return fmt.Errorf("failed to seed org %s: %w", org.ID, err)
		}
	}
	return nil
}

// SeedTeams seeds teams into the table.
func (s *Seeder) SeedTeams(ctx context.Context, teams ...*orgmap.Team) error {
	for _, team := range teams {
		if err := s.store.CreateTeam(ctx, team); err != nil {
			return fmt.Errorf("failed to seed team %s: %w", team.ID, err)
		}
	}
	return nil
}

// Resource is one entry in a JSON fixture document. Type selects the entity
// kind ("user", "org", "team" or "membership") and Attributes carries the
// kind-specific fields.
type Resource struct {
	Type       string          `json:"type"`
	ID         string          `json:"id,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

type userAttributes struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Roles     string `json:"roles"`
	Active    bool   `json:"active"`
	Hash      string `json:"hash"`
}

type namedAttributes struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type membershipAttributes struct {
	Org  string `json:"org,omitempty"`
	Team string `json:"team,omitempty"`
	User string `json:"user"`
}

// SeedFromJSON reads a JSON array of resources and persists each through the
// store. Returns the number of resources saved and the first error
// encountered.
func (s *Seeder) SeedFromJSON(ctx context.Context, r io.Reader) (int, error) {
	var document []Resource
	if err := json.NewDecoder(r).Decode(&document); err != nil {
		return 0, fmt.Errorf("failed to parse JSON document: %w", err)
	}

	count := 0
	for i, resource := range document {
		if err := s.seedResource(ctx, resource); err != nil {
			return count, fmt.Errorf("failed to seed resource at index %d: %w", i, err)
		}
		count++
	}
	return count, nil
}

func (s *Seeder) seedResource(ctx context.Context, resource Resource) error {
	switch resource.Type {
	case "user":
		var attrs userAttributes
		if err := json.Unmarshal(resource.Attributes, &attrs); err != nil {
			return err
		}
		return s.store.CreateUser(ctx, &orgmap.User{
			ID:        resource.ID,
			Email:     attrs.Email,
			FirstName: attrs.FirstName,
			LastName:  attrs.LastName,
			Roles:     orgmap.ParseRoles(attrs.Roles),
			Active:    attrs.Active,
			Hash:      attrs.Hash,
		})

	case "org":
		var attrs namedAttributes
		if err := json.Unmarshal(resource.Attributes, &attrs); err != nil {
			return err
		}
		return s.store.CreateOrg(ctx, &orgmap.Org{
			ID:     resource.ID,
			Name:   attrs.Name,
			Active: attrs.Active,
		})

	case "team":
		var attrs namedAttributes
		if err := json.Unmarshal(resource.Attributes, &attrs); err != nil {
			return err
		}
		return s.store.CreateTeam(ctx, &orgmap.Team{
			ID:     resource.ID,
			Name:   attrs.Name,
			Active: attrs.Active,
		})

	case "membership":
		var attrs membershipAttributes
		if err := json.Unmarshal(resource.Attributes, &attrs); err != nil {
			return err
		}
		user := &orgmap.User{ID: attrs.User}
		switch {
		case attrs.Org != "":
			return s.store.AddOrgMember(ctx, &orgmap.Org{ID: attrs.Org}, user)
		case attrs.Team != "":
			return s.store.AddTeamMember(ctx, &orgmap.Team{ID: attrs.Team}, user)
		default:
			return fmt.Errorf("membership resource missing org or team")
		}

	default:
		return fmt.Errorf("unknown resource type %q", resource.Type)
	}
}
