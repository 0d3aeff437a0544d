package orgmap

import (
	"fmt"
	"strings"
)

// Attribute names for the table's primary key and the two index overlays.
const (
	AttributePK     = "PK"
	AttributeSK     = "SK"
	AttributeGSI1PK = "GSI1PK"
	AttributeGSI1SK = "GSI1SK"
	AttributeGSI2PK = "GSI2PK"
	AttributeGSI2SK = "GSI2SK"
)

// Key prefixes discriminate entity types within the single table. Identifiers
// must not contain the '#' delimiter; validation is an upstream concern.
const (
	PrefixUser     = "USER#"
	PrefixEmail    = "EMAIL#"
	PrefixOrg      = "ORG#"
	PrefixOrgName  = "ORGNAME#"
	PrefixTeam     = "TEAM#"
	PrefixTeamName = "TEAMNAME#"
)

// Tag values written to the GSI2 type-tag overlay. Items without a tag are
// invisible to GSI2 queries.
const (
	TagTeam      = "TYPE#TEAM"
	TagSuperuser = "USERROLE#SUPERUSER"
)

// Key addresses a single item in the table. Root items (users, orgs, teams,
// email aliases) have PK == SK; adjacency items key the parent with PK and
// the member with SK.
type Key struct {
	PK string
	SK string
}

// IsRoot reports whether the key addresses a root item rather than an
// adjacency item.
func (k Key) IsRoot() bool { return k.PK == k.SK }

func rootKey(prefix, id string) Key {
	s := prefix + id
	return Key{PK: s, SK: s}
}

// UserKey returns the primary key of a user item.
func UserKey(id string) Key { return rootKey(PrefixUser, id) }

// EmailKey returns the primary key of an email alias item.
func EmailKey(email string) Key { return rootKey(PrefixEmail, email) }

// OrgKey returns the primary key of an org item.
func OrgKey(id string) Key { return rootKey(PrefixOrg, id) }

// OrgNameKey returns the alternate lookup key of an org, as written to GSI1.
func OrgNameKey(name string) Key { return rootKey(PrefixOrgName, name) }

// TeamKey returns the primary key of a team item.
func TeamKey(id string) Key { return rootKey(PrefixTeam, id) }

// TeamNameKey returns the alternate lookup key of a team, as written to GSI1.
func TeamNameKey(name string) Key { return rootKey(PrefixTeamName, name) }

// OrgMemberKey returns the adjacency key of an org membership item.
func OrgMemberKey(orgID, userID string) Key {
	return Key{PK: PrefixOrg + orgID, SK: PrefixUser + userID}
}

// TeamMemberKey returns the adjacency key of a team membership item.
func TeamMemberKey(teamID, userID string) Key {
	return Key{PK: PrefixTeam + teamID, SK: PrefixUser + userID}
}

// trimKeyPrefix extracts the identifier from a prefixed key string. A missing
// prefix means the item is foreign to the expected entity kind.
func trimKeyPrefix(s, prefix string) (string, error) {
	if !strings.HasPrefix(s, prefix) {
		return "", fmt.Errorf("%w: key %q does not begin with %q", ErrDecode, s, prefix)
	}
	return strings.TrimPrefix(s, prefix), nil
}
