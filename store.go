package orgmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBClient interface for easier testing and connection management.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
}

// Store performs point reads, point writes and index queries against the
// identity table. A Store is safe for concurrent use: each operation is a
// single request-response round trip holding no in-process lock, and the
// write set of every operation is disjoint per distinct key. The only state
// is the client handle and table configuration, held for the process
// lifetime.
//
// No operation retries, paginates, or applies timeouts; cancellation is
// inherited from the caller's context.
type Store struct {
	client DynamoDBClient
	table  *Table
}

// New creates a Store backed by the given client and table configuration.
func New(client DynamoDBClient, table *Table) *Store {
	return &Store{client: client, table: table}
}

// Table returns the table configuration the store is bound to.
func (s *Store) Table() *Table { return s.table }

func (s *Store) putItem(ctx context.Context, item Item) error {
	if _, err := s.client.PutItem(ctx, s.table.PutInput(item)); err != nil {
		return unavailable("put item", err)
	}
	return nil
}

// getItem performs a point read, mapping absence to ErrNotFound.
func (s *Store) getItem(ctx context.Context, key Key) (Item, error) {
	out, err := s.client.GetItem(ctx, s.table.GetInput(key))
	if err != nil {
		return nil, unavailable("get "+key.PK, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key.PK)
	}
	return out.Item, nil
}

func (s *Store) deleteItem(ctx context.Context, key Key) error {
	if _, err := s.client.DeleteItem(ctx, s.table.DeleteInput(key)); err != nil {
		return unavailable("delete "+key.PK, err)
	}
	return nil
}

func (s *Store) queryIndex(ctx context.Context, indexName, pkAttribute, value string) ([]Item, error) {
	input, err := s.table.QueryInput(indexName, pkAttribute, value)
	if err != nil {
		return nil, err
	}
	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, unavailable("query "+value, err)
	}
	return out.Items, nil
}

// CreateUser writes the user item and its email alias item as two
// independent point writes. The pair is not transactional: a failure on the
// second write leaves the user item in place, and a concurrent reader can
// observe either item before its counterpart exists. Callers that need the
// pair to be consistent must tolerate this window.
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	item, err := EncodeUser(user)
	if err != nil {
		return err
	}
	if err := s.putItem(ctx, item); err != nil {
		return err
	}

	alias, err := EncodeEmailAlias(&EmailAlias{Email: user.Email, UserID: user.ID})
	if err != nil {
		return err
	}
	return s.putItem(ctx, alias)
}

// GetUserByID reads a user by primary key, failing with ErrNotFound if
// absent.
func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	item, err := s.getItem(ctx, UserKey(id))
	if err != nil {
		return nil, err
	}
	return DecodeUser(item)
}

// GetUserByEmail resolves the email alias item, then reads the referenced
// user. Two sequential point reads, not a join; an alias miss fails with
// ErrNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	item, err := s.getItem(ctx, EmailKey(email))
	if err != nil {
		return nil, err
	}
	alias, err := DecodeEmailAlias(item)
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, alias.UserID)
}

// GetSuperusers queries the type tag overlay for all users carrying the
// superuser role tag. Returns an empty slice when none exist.
func (s *Store) GetSuperusers(ctx context.Context) ([]User, error) {
	items, err := s.queryIndex(ctx, s.table.GSI2Name, AttributeGSI2PK, TagSuperuser)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(items))
	for _, item := range items {
		user, err := DecodeUser(item)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

// CreateOrg writes the org item.
func (s *Store) CreateOrg(ctx context.Context, org *Org) error {
	item, err := EncodeOrg(org)
	if err != nil {
		return err
	}
	return s.putItem(ctx, item)
}

// GetOrgByID reads an org by primary key, failing with ErrNotFound if
// absent.
func (s *Store) GetOrgByID(ctx context.Context, id string) (*Org, error) {
	item, err := s.getItem(ctx, OrgKey(id))
	if err != nil {
		return nil, err
	}
	return DecodeOrg(item)
}

// GetOrgByName queries the alternate lookup overlay for the org name key.
// Exactly one match is the success path. Zero matches fail with ErrNotFound;
// more than one means the name uniqueness invariant was broken upstream and
// fails with ErrConflict rather than picking a winner.
func (s *Store) GetOrgByName(ctx context.Context, name string) (*Org, error) {
	items, err := s.queryIndex(ctx, s.table.GSI1Name, AttributeGSI1PK, PrefixOrgName+name)
	if err != nil {
		return nil, err
	}
	switch {
	case len(items) == 0:
		return nil, fmt.Errorf("%w: org name %q", ErrNotFound, name)
	case len(items) > 1:
		return nil, fmt.Errorf("%w: org name %q matched %d items", ErrConflict, name, len(items))
	}
	return DecodeOrg(items[0])
}

// AddOrgMember writes the membership adjacency item. Adding an existing
// membership overwrites it identically, so the operation is idempotent.
func (s *Store) AddOrgMember(ctx context.Context, org *Org, user *User) error {
	item, err := EncodeMembership(&Membership{Parent: PrefixOrg + org.ID, UserID: user.ID})
	if err != nil {
		return err
	}
	return s.putItem(ctx, item)
}

// RemoveOrgMember deletes the membership adjacency item. Removing an absent
// membership is a no-op success, not an error.
func (s *Store) RemoveOrgMember(ctx context.Context, org *Org, user *User) error {
	return s.deleteItem(ctx, OrgMemberKey(org.ID, user.ID))
}

// IsOrgMember reports whether the membership adjacency item exists.
func (s *Store) IsOrgMember(ctx context.Context, orgID, userID string) (bool, error) {
	_, err := s.getItem(ctx, OrgMemberKey(orgID, userID))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteOrg deletes only the root org item. Membership adjacency items are
// not cascaded and remain retrievable afterward; callers must accommodate
// orphaned memberships.
func (s *Store) DeleteOrg(ctx context.Context, id string) error {
	return s.deleteItem(ctx, OrgKey(id))
}

// CreateTeam writes the team item, tagged on the type overlay so it is
// visible to GetTeams.
func (s *Store) CreateTeam(ctx context.Context, team *Team) error {
	item, err := EncodeTeam(team)
	if err != nil {
		return err
	}
	return s.putItem(ctx, item)
}

// GetTeamByID reads a team by primary key, failing with ErrNotFound if
// absent.
func (s *Store) GetTeamByID(ctx context.Context, id string) (*Team, error) {
	item, err := s.getItem(ctx, TeamKey(id))
	if err != nil {
		return nil, err
	}
	return DecodeTeam(item)
}

// GetTeamByName queries the alternate lookup overlay for the team name key,
// with the same zero/one/many semantics as GetOrgByName.
func (s *Store) GetTeamByName(ctx context.Context, name string) (*Team, error) {
	items, err := s.queryIndex(ctx, s.table.GSI1Name, AttributeGSI1PK, PrefixTeamName+name)
	if err != nil {
		return nil, err
	}
	switch {
	case len(items) == 0:
		return nil, fmt.Errorf("%w: team name %q", ErrNotFound, name)
	case len(items) > 1:
		return nil, fmt.Errorf("%w: team name %q matched %d items", ErrConflict, name, len(items))
	}
	return DecodeTeam(items[0])
}

// GetTeams queries the type tag overlay for all team items. An empty table
// yields an empty slice, never an error. Untagged items are invisible to
// this query.
func (s *Store) GetTeams(ctx context.Context) ([]Team, error) {
	items, err := s.queryIndex(ctx, s.table.GSI2Name, AttributeGSI2PK, TagTeam)
	if err != nil {
		return nil, err
	}
	teams := make([]Team, 0, len(items))
	for _, item := range items {
		team, err := DecodeTeam(item)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	return teams, nil
}

// AddTeamMember writes the membership adjacency item. Idempotent, like
// AddOrgMember.
func (s *Store) AddTeamMember(ctx context.Context, team *Team, user *User) error {
	item, err := EncodeMembership(&Membership{Parent: PrefixTeam + team.ID, UserID: user.ID})
	if err != nil {
		return err
	}
	return s.putItem(ctx, item)
}

// RemoveTeamMember deletes the membership adjacency item. Removing an absent
// membership is a no-op success.
func (s *Store) RemoveTeamMember(ctx context.Context, team *Team, user *User) error {
	return s.deleteItem(ctx, TeamMemberKey(team.ID, user.ID))
}

// IsTeamMember reports whether the membership adjacency item exists.
func (s *Store) IsTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	_, err := s.getItem(ctx, TeamMemberKey(teamID, userID))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteTeam deletes only the root team item. Membership adjacency items are
// not cascaded.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	return s.deleteItem(ctx, TeamKey(id))
}
