package orgmap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is an alias for the dynamodb attribute value map.
type Item = map[string]types.AttributeValue

// Stored item shapes, one per entity kind. Key attributes are written
// alongside the denormalized fields; the GSI2 pair is present only on tagged
// items. Decoding a map that was not produced by the matching encode is a
// programmer error surfaced as ErrDecode.

type userRecord struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	GSI1PK    string `dynamodbav:"GSI1PK"`
	GSI1SK    string `dynamodbav:"GSI1SK"`
	GSI2PK    string `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK    string `dynamodbav:"GSI2SK,omitempty"`
	FirstName string `dynamodbav:"first_name"`
	LastName  string `dynamodbav:"last_name"`
	UserRoles string `dynamodbav:"user_roles"`
	Active    bool   `dynamodbav:"active"`
	Hash      string `dynamodbav:"hash"`
}

type emailRecord struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
}

type orgRecord struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
	Active bool   `dynamodbav:"active"`
}

type teamRecord struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
	GSI2PK string `dynamodbav:"GSI2PK"`
	Active bool   `dynamodbav:"active"`
}

type memberRecord struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
}

func marshalRecord(rec any) (Item, error) {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return item, nil
}

func unmarshalRecord(item Item, rec any, kind string) error {
	if err := attributevalue.UnmarshalMap(item, rec); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, kind, err)
	}
	return nil
}

// EncodeUser converts a user into its stored item. The email alias key is
// denormalized onto GSI1, and superusers additionally carry the role tag
// on GSI2.
func EncodeUser(u *User) (Item, error) {
	key := UserKey(u.ID)
	alias := EmailKey(u.Email)
	rec := userRecord{
		PK:        key.PK,
		SK:        key.SK,
		GSI1PK:    alias.PK,
		GSI1SK:    alias.SK,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserRoles: u.Roles.Encode(),
		Active:    u.Active,
		Hash:      u.Hash,
	}
	if u.Roles.Contains(RoleSuperuser) {
		rec.GSI2PK = TagSuperuser
		rec.GSI2SK = TagSuperuser
	}
	return marshalRecord(rec)
}

// DecodeUser converts a stored user item back into a User.
func DecodeUser(item Item) (*User, error) {
	var rec userRecord
	if err := unmarshalRecord(item, &rec, "user"); err != nil {
		return nil, err
	}
	id, err := trimKeyPrefix(rec.PK, PrefixUser)
	if err != nil {
		return nil, err
	}
	email, err := trimKeyPrefix(rec.GSI1PK, PrefixEmail)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:        id,
		Email:     email,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Roles:     ParseRoles(rec.UserRoles),
		Active:    rec.Active,
		Hash:      rec.Hash,
	}, nil
}

// EncodeEmailAlias converts an email alias into its stored item. The user key
// is denormalized onto GSI1 as the reverse pointer.
func EncodeEmailAlias(a *EmailAlias) (Item, error) {
	key := EmailKey(a.Email)
	user := UserKey(a.UserID)
	return marshalRecord(emailRecord{
		PK:     key.PK,
		SK:     key.SK,
		GSI1PK: user.PK,
		GSI1SK: user.SK,
	})
}

// DecodeEmailAlias converts a stored email alias item back into an EmailAlias.
func DecodeEmailAlias(item Item) (*EmailAlias, error) {
	var rec emailRecord
	if err := unmarshalRecord(item, &rec, "email alias"); err != nil {
		return nil, err
	}
	email, err := trimKeyPrefix(rec.PK, PrefixEmail)
	if err != nil {
		return nil, err
	}
	userID, err := trimKeyPrefix(rec.GSI1PK, PrefixUser)
	if err != nil {
		return nil, err
	}
	return &EmailAlias{Email: email, UserID: userID}, nil
}

// EncodeOrg converts an org into its stored item.
func EncodeOrg(o *Org) (Item, error) {
	key := OrgKey(o.ID)
	name := OrgNameKey(o.Name)
	return marshalRecord(orgRecord{
		PK:     key.PK,
		SK:     key.SK,
		GSI1PK: name.PK,
		GSI1SK: name.SK,
		Active: o.Active,
	})
}

// DecodeOrg converts a stored org item back into an Org.
func DecodeOrg(item Item) (*Org, error) {
	var rec orgRecord
	if err := unmarshalRecord(item, &rec, "org"); err != nil {
		return nil, err
	}
	id, err := trimKeyPrefix(rec.PK, PrefixOrg)
	if err != nil {
		return nil, err
	}
	name, err := trimKeyPrefix(rec.GSI1PK, PrefixOrgName)
	if err != nil {
		return nil, err
	}
	return &Org{ID: id, Name: name, Active: rec.Active}, nil
}

// EncodeTeam converts a team into its stored item. Teams always carry the
// type tag on GSI2, which is what makes GetTeams possible.
func EncodeTeam(t *Team) (Item, error) {
	key := TeamKey(t.ID)
	name := TeamNameKey(t.Name)
	return marshalRecord(teamRecord{
		PK:     key.PK,
		SK:     key.SK,
		GSI1PK: name.PK,
		GSI1SK: name.SK,
		GSI2PK: TagTeam,
		Active: t.Active,
	})
}

// DecodeTeam converts a stored team item back into a Team.
func DecodeTeam(item Item) (*Team, error) {
	var rec teamRecord
	if err := unmarshalRecord(item, &rec, "team"); err != nil {
		return nil, err
	}
	id, err := trimKeyPrefix(rec.PK, PrefixTeam)
	if err != nil {
		return nil, err
	}
	name, err := trimKeyPrefix(rec.GSI1PK, PrefixTeamName)
	if err != nil {
		return nil, err
	}
	return &Team{ID: id, Name: name, Active: rec.Active}, nil
}

// EncodeMembership converts a membership into its adjacency item. The reverse
// pair (user, parent) is denormalized onto GSI1 so a user's parents can be
// queried without scanning.
func EncodeMembership(m *Membership) (Item, error) {
	user := UserKey(m.UserID)
	return marshalRecord(memberRecord{
		PK:     m.Parent,
		SK:     user.PK,
		GSI1PK: user.PK,
		GSI1SK: m.Parent,
	})
}

// DecodeMembership converts a stored adjacency item back into a Membership.
func DecodeMembership(item Item) (*Membership, error) {
	var rec memberRecord
	if err := unmarshalRecord(item, &rec, "membership"); err != nil {
		return nil, err
	}
	userID, err := trimKeyPrefix(rec.SK, PrefixUser)
	if err != nil {
		return nil, err
	}
	return &Membership{Parent: rec.PK, UserID: userID}, nil
}
