package orgmap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nisimpson/orgmap"
	"github.com/nisimpson/orgmap/orgmock"
)

func newTestStore() (*orgmap.Store, *orgmock.MemoryClient) {
	table := orgmap.NewTable("identity-test")
	client := orgmock.NewMemoryClient(table)
	return orgmap.New(client, table), client
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	store, client := newTestStore()

	user := &orgmap.User{
		ID:        "u1",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Roles:     orgmap.Roles{orgmap.RoleUser},
		Active:    true,
		Hash:      "hash",
	}

	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	t.Run("writes user and alias pair", func(t *testing.T) {
		if client.Len() != 2 {
			t.Errorf("Expected 2 items (user + alias), got %d", client.Len())
		}
	})

	t.Run("get by id returns equal entity", func(t *testing.T) {
		found, err := store.GetUserByID(ctx, "u1")
		if err != nil {
			t.Fatalf("Failed to get user: %v", err)
		}
		if found.ID != user.ID || found.Email != user.Email ||
			found.FirstName != user.FirstName || found.LastName != user.LastName ||
			found.Active != user.Active || found.Hash != user.Hash {
			t.Errorf("Expected %+v, got %+v", user, found)
		}
		if !found.Roles.Equal(user.Roles) {
			t.Errorf("Expected roles %v, got %v", user.Roles, found.Roles)
		}
	})

	t.Run("get by email resolves same id", func(t *testing.T) {
		found, err := store.GetUserByEmail(ctx, "jane@example.com")
		if err != nil {
			t.Fatalf("Failed to get user by email: %v", err)
		}
		if found.ID != "u1" {
			t.Errorf("Expected id 'u1', got %q", found.ID)
		}
	})
}

func TestGetUserNotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	if _, err := store.GetUserByID(ctx, "never-created"); !errors.Is(err, orgmap.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, orgmap.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetSuperusers(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	admin := &orgmap.User{
		ID: "u1", Email: "admin@example.com",
		Roles: orgmap.Roles{orgmap.RoleSuperuser}, Active: true,
	}
	regular := &orgmap.User{
		ID: "u2", Email: "user@example.com",
		Roles: orgmap.Roles{orgmap.RoleUser}, Active: true,
	}

	if err := store.CreateUser(ctx, admin); err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	if err := store.CreateUser(ctx, regular); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	supers, err := store.GetSuperusers(ctx)
	if err != nil {
		t.Fatalf("Failed to list superusers: %v", err)
	}
	if len(supers) != 1 {
		t.Fatalf("Expected 1 superuser, got %d", len(supers))
	}
	if supers[0].ID != "u1" {
		t.Errorf("Expected superuser 'u1', got %q", supers[0].ID)
	}
}

func TestOrgLifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	org := &orgmap.Org{ID: "o1", Name: "Acme", Active: true}
	user := &orgmap.User{ID: "u1", Email: "jane@example.com", Active: true}

	if err := store.CreateOrg(ctx, org); err != nil {
		t.Fatalf("Failed to create org: %v", err)
	}

	t.Run("get by id", func(t *testing.T) {
		found, err := store.GetOrgByID(ctx, "o1")
		if err != nil {
			t.Fatalf("Failed to get org: %v", err)
		}
		if *found != *org {
			t.Errorf("Expected %+v, got %+v", org, found)
		}
	})

	t.Run("get by name returns same entity", func(t *testing.T) {
		found, err := store.GetOrgByName(ctx, "Acme")
		if err != nil {
			t.Fatalf("Failed to get org by name: %v", err)
		}
		if *found != *org {
			t.Errorf("Expected %+v, got %+v", org, found)
		}
	})

	t.Run("delete leaves memberships behind", func(t *testing.T) {
		if err := store.AddOrgMember(ctx, org, user); err != nil {
			t.Fatalf("Failed to add member: %v", err)
		}
		if err := store.DeleteOrg(ctx, "o1"); err != nil {
			t.Fatalf("Failed to delete org: %v", err)
		}

		if _, err := store.GetOrgByID(ctx, "o1"); !errors.Is(err, orgmap.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}

		// No cascade: the adjacency item survives the root delete
		member, err := store.IsOrgMember(ctx, "o1", "u1")
		if err != nil {
			t.Fatalf("Failed to check membership: %v", err)
		}
		if !member {
			t.Error("Expected membership item to remain after org delete")
		}
	})
}

func TestGetOrgByName(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	t.Run("zero matches", func(t *testing.T) {
		if _, err := store.GetOrgByName(ctx, "Nowhere"); !errors.Is(err, orgmap.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate names conflict", func(t *testing.T) {
		// Two distinct orgs sharing a name violates the upstream
		// uniqueness invariant; the store must surface it.
		if err := store.CreateOrg(ctx, &orgmap.Org{ID: "o1", Name: "Acme", Active: true}); err != nil {
			t.Fatalf("Failed to create org: %v", err)
		}
		if err := store.CreateOrg(ctx, &orgmap.Org{ID: "o2", Name: "Acme", Active: true}); err != nil {
			t.Fatalf("Failed to create org: %v", err)
		}

		if _, err := store.GetOrgByName(ctx, "Acme"); !errors.Is(err, orgmap.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})
}

func TestMembershipIdempotence(t *testing.T) {
	ctx := context.Background()
	store, client := newTestStore()

	org := &orgmap.Org{ID: "o1", Name: "Acme", Active: true}
	user := &orgmap.User{ID: "u1", Email: "jane@example.com"}

	t.Run("remove of never-added pair is a no-op success", func(t *testing.T) {
		if err := store.RemoveOrgMember(ctx, org, user); err != nil {
			t.Errorf("Expected no-op success, got %v", err)
		}
	})

	t.Run("double add overwrites identically", func(t *testing.T) {
		if err := store.AddOrgMember(ctx, org, user); err != nil {
			t.Fatalf("Failed to add member: %v", err)
		}
		before := client.Len()
		if err := store.AddOrgMember(ctx, org, user); err != nil {
			t.Fatalf("Failed to re-add member: %v", err)
		}
		if client.Len() != before {
			t.Errorf("Expected item count to stay at %d, got %d", before, client.Len())
		}

		member, err := store.IsOrgMember(ctx, "o1", "u1")
		if err != nil {
			t.Fatalf("Failed to check membership: %v", err)
		}
		if !member {
			t.Error("Expected membership to exist")
		}
	})

	t.Run("remove then check", func(t *testing.T) {
		if err := store.RemoveOrgMember(ctx, org, user); err != nil {
			t.Fatalf("Failed to remove member: %v", err)
		}
		member, err := store.IsOrgMember(ctx, "o1", "u1")
		if err != nil {
			t.Fatalf("Failed to check membership: %v", err)
		}
		if member {
			t.Error("Expected membership to be gone")
		}
	})
}

func TestTeamOperations(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	t.Run("empty table lists no teams", func(t *testing.T) {
		teams, err := store.GetTeams(ctx)
		if err != nil {
			t.Fatalf("Expected empty result, got error: %v", err)
		}
		if len(teams) != 0 {
			t.Errorf("Expected 0 teams, got %d", len(teams))
		}
	})

	platform := &orgmap.Team{ID: "t1", Name: "Platform", Active: true}
	delivery := &orgmap.Team{ID: "t2", Name: "Delivery", Active: true}

	if err := store.CreateTeam(ctx, platform); err != nil {
		t.Fatalf("Failed to create team: %v", err)
	}
	if err := store.CreateTeam(ctx, delivery); err != nil {
		t.Fatalf("Failed to create team: %v", err)
	}

	t.Run("get by id", func(t *testing.T) {
		found, err := store.GetTeamByID(ctx, "t1")
		if err != nil {
			t.Fatalf("Failed to get team: %v", err)
		}
		if *found != *platform {
			t.Errorf("Expected %+v, got %+v", platform, found)
		}
	})

	t.Run("get by name", func(t *testing.T) {
		found, err := store.GetTeamByName(ctx, "Delivery")
		if err != nil {
			t.Fatalf("Failed to get team by name: %v", err)
		}
		if found.ID != "t2" {
			t.Errorf("Expected team 't2', got %q", found.ID)
		}
	})

	t.Run("type tag lists all teams", func(t *testing.T) {
		teams, err := store.GetTeams(ctx)
		if err != nil {
			t.Fatalf("Failed to list teams: %v", err)
		}
		if len(teams) != 2 {
			t.Errorf("Expected 2 teams, got %d", len(teams))
		}
	})

	t.Run("membership mirrors org semantics", func(t *testing.T) {
		user := &orgmap.User{ID: "u1", Email: "jane@example.com"}

		if err := store.AddTeamMember(ctx, platform, user); err != nil {
			t.Fatalf("Failed to add team member: %v", err)
		}
		member, err := store.IsTeamMember(ctx, "t1", "u1")
		if err != nil {
			t.Fatalf("Failed to check membership: %v", err)
		}
		if !member {
			t.Error("Expected team membership to exist")
		}

		if err := store.RemoveTeamMember(ctx, platform, user); err != nil {
			t.Fatalf("Failed to remove team member: %v", err)
		}
		if err := store.RemoveTeamMember(ctx, platform, user); err != nil {
			t.Errorf("Expected repeated remove to succeed, got %v", err)
		}
	})

	t.Run("delete team does not cascade", func(t *testing.T) {
		user := &orgmap.User{ID: "u2", Email: "john@example.com"}
		if err := store.AddTeamMember(ctx, delivery, user); err != nil {
			t.Fatalf("Failed to add team member: %v", err)
		}
		if err := store.DeleteTeam(ctx, "t2"); err != nil {
			t.Fatalf("Failed to delete team: %v", err)
		}
		member, err := store.IsTeamMember(ctx, "t2", "u2")
		if err != nil {
			t.Fatalf("Failed to check membership: %v", err)
		}
		if !member {
			t.Error("Expected membership item to remain after team delete")
		}
	})
}

func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	table := orgmap.NewTable("identity-test")
	serviceDown := errors.New("connection refused")

	t.Run("get failure is not absence", func(t *testing.T) {
		client := orgmock.NewMockClient(t)
		client.GetFunc = func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			return nil, serviceDown
		}
		store := orgmap.New(client, table)

		_, err := store.GetUserByID(ctx, "u1")
		if !errors.Is(err, orgmap.ErrUnavailable) {
			t.Errorf("Expected ErrUnavailable, got %v", err)
		}
		if errors.Is(err, orgmap.ErrNotFound) {
			t.Error("Expected outage to be distinct from absence")
		}
	})

	t.Run("query failure", func(t *testing.T) {
		client := orgmock.NewMockClient(t)
		client.QueryFunc = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			return nil, serviceDown
		}
		store := orgmap.New(client, table)

		if _, err := store.GetTeams(ctx); !errors.Is(err, orgmap.ErrUnavailable) {
			t.Errorf("Expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("partial user write leaves first item in place", func(t *testing.T) {
		memory := orgmock.NewMemoryClient(table)
		client := orgmock.NewMockClient(t)

		puts := 0
		client.PutFunc = func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			puts++
			if puts > 1 {
				return nil, serviceDown
			}
			return memory.PutItem(ctx, params, optFns...)
		}
		client.GetFunc = memory.GetItem
		store := orgmap.New(client, table)

		user := &orgmap.User{ID: "u1", Email: "jane@example.com", Active: true}
		err := store.CreateUser(ctx, user)
		if !errors.Is(err, orgmap.ErrUnavailable) {
			t.Fatalf("Expected ErrUnavailable from second write, got %v", err)
		}

		// The documented inconsistency window: the user item exists
		// while its email alias does not.
		if _, err := store.GetUserByID(ctx, "u1"); err != nil {
			t.Errorf("Expected user item to remain, got %v", err)
		}
		if _, err := store.GetUserByEmail(ctx, "jane@example.com"); !errors.Is(err, orgmap.ErrNotFound) {
			t.Errorf("Expected missing alias, got %v", err)
		}
	})
}
