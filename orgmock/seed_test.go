package orgmock_test

import (
	"context"
	"strings"
	"testing"

	"github.com/nisimpson/orgmap"
	"github.com/nisimpson/orgmap/orgmock"
)

func newSeeder() (*orgmock.Seeder, *orgmock.MemoryClient) {
	table := orgmap.NewTable("identity-test")
	client := orgmock.NewMemoryClient(table)
	return orgmock.NewSeeder(client, table), client
}

func TestSeeder(t *testing.T) {
	ctx := context.Background()

	t.Run("seed users writes alias pairs", func(t *testing.T) {
		seeder, client := newSeeder()

		err := seeder.SeedUsers(ctx,
			&orgmap.User{ID: "u1", Email: "jane@example.com", Active: true},
			&orgmap.User{ID: "u2", Email: "john@example.com", Active: true},
		)
		if err != nil {
			t.Fatalf("Failed to seed users: %v", err)
		}
		if client.Len() != 4 {
			t.Errorf("Expected 4 items (2 users + 2 aliases), got %d", client.Len())
		}
	})

	t.Run("seed orgs and teams", func(t *testing.T) {
		seeder, _ := newSeeder()

		if err := seeder.SeedOrgs(ctx, &orgmap.Org{ID: "o1", Name: "Acme", Active: true}); err != nil {
			t.Fatalf("Failed to seed orgs: %v", err)
		}
		if err := seeder.SeedTeams(ctx, &orgmap.Team{ID: "t1", Name: "Platform", Active: true}); err != nil {
			t.Fatalf("Failed to seed teams: %v", err)
		}

		if _, err := seeder.Store().GetOrgByName(ctx, "Acme"); err != nil {
			t.Errorf("Failed to get seeded org: %v", err)
		}
		if _, err := seeder.Store().GetTeamByName(ctx, "Platform"); err != nil {
			t.Errorf("Failed to get seeded team: %v", err)
		}
	})
}

func TestSeedFromJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("full document", func(t *testing.T) {
		seeder, _ := newSeeder()

		document := `[
			{"type": "user", "id": "u1", "attributes": {
				"email": "jane@example.com",
				"first_name": "Jane",
				"last_name": "Doe",
				"roles": "SUPERUSER,USER",
				"active": true
			}},
			{"type": "org", "id": "o1", "attributes": {"name": "Acme", "active": true}},
			{"type": "team", "id": "t1", "attributes": {"name": "Platform", "active": true}},
			{"type": "membership", "attributes": {"org": "o1", "user": "u1"}},
			{"type": "membership", "attributes": {"team": "t1", "user": "u1"}}
		]`

		count, err := seeder.SeedFromJSON(ctx, strings.NewReader(document))
		if err != nil {
			t.Fatalf("Failed to seed from JSON: %v", err)
		}
		if count != 5 {
			t.Errorf("Expected 5 resources, got %d", count)
		}

		store := seeder.Store()
		user, err := store.GetUserByEmail(ctx, "jane@example.com")
		if err != nil {
			t.Fatalf("Failed to get seeded user: %v", err)
		}
		if !user.Roles.Contains(orgmap.RoleSuperuser) {
			t.Error("Expected seeded user to hold the superuser role")
		}

		for _, check := range []struct {
			name string
			fn   func() (bool, error)
		}{
			{"org membership", func() (bool, error) { return store.IsOrgMember(ctx, "o1", "u1") }},
			{"team membership", func() (bool, error) { return store.IsTeamMember(ctx, "t1", "u1") }},
		} {
			member, err := check.fn()
			if err != nil {
				t.Fatalf("Failed to check %s: %v", check.name, err)
			}
			if !member {
				t.Errorf("Expected %s to exist", check.name)
			}
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		seeder, _ := newSeeder()
		if _, err := seeder.SeedFromJSON(ctx, strings.NewReader("{not json")); err == nil {
			t.Error("Expected parse error")
		}
	})

	t.Run("unknown resource type", func(t *testing.T) {
		seeder, _ := newSeeder()

		count, err := seeder.SeedFromJSON(ctx, strings.NewReader(`[
			{"type": "org", "id": "o1", "attributes": {"name": "Acme", "active": true}},
			{"type": "widget", "id": "w1"}
		]`))
		if err == nil {
			t.Fatal("Expected error for unknown type")
		}
		if count != 1 {
			t.Errorf("Expected 1 resource seeded before failure, got %d", count)
		}
	})

	t.Run("membership without parent", func(t *testing.T) {
		seeder, _ := newSeeder()

		_, err := seeder.SeedFromJSON(ctx, strings.NewReader(`[
			{"type": "membership", "attributes": {"user": "u1"}}
		]`))
		if err == nil {
			t.Error("Expected error for membership without org or team")
		}
	})
}
