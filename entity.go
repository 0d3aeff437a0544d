package orgmap

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role is a coarse permission level attached to a user.
type Role string

const (
	RoleSuperuser Role = "SUPERUSER"
	RoleUser      Role = "USER"
)

// RoleDelimiter separates encoded roles in the user_roles attribute.
const RoleDelimiter = ","

// Roles is the set of roles held by a user. Encoding order is not
// significant; Equal compares as sets.
type Roles []Role

// Contains reports whether the set holds the given role.
func (r Roles) Contains(role Role) bool {
	for _, have := range r {
		if have == role {
			return true
		}
	}
	return false
}

// Encode joins the set into the single delimited string stored in the
// user_roles attribute.
func (r Roles) Encode() string {
	parts := make([]string, len(r))
	for i, role := range r {
		parts[i] = string(role)
	}
	return strings.Join(parts, RoleDelimiter)
}

// Equal reports set equality, ignoring order and duplicates.
func (r Roles) Equal(other Roles) bool {
	for _, role := range r {
		if !other.Contains(role) {
			return false
		}
	}
	for _, role := range other {
		if !r.Contains(role) {
			return false
		}
	}
	return true
}

// ParseRoles splits a delimited role string back into a set. Empty segments
// are dropped, so ParseRoles("") yields an empty set.
func ParseRoles(s string) Roles {
	var roles Roles
	for _, part := range strings.Split(s, RoleDelimiter) {
		if part == "" {
			continue
		}
		role := Role(part)
		if !roles.Contains(role) {
			roles = append(roles, role)
		}
	}
	return roles
}

// User is a root entity. The stored item carries the email alias key on GSI1
// and, for superusers, the role tag on GSI2.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Roles     Roles
	Active    bool
	Hash      string // bcrypt hash of the password
}

// NewUserInput carries the caller-supplied fields for NewUser.
type NewUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Roles     Roles
	Password  string
}

// NewUser builds an active user with a generated id and a bcrypt hash of the
// supplied password.
func NewUser(in NewUserInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Roles:     in.Roles,
		Active:    true,
		Hash:      string(hash),
	}, nil
}

// CheckPassword reports whether the password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) == nil
}

// EmailAlias is the reverse pointer item pairing an email address with a user
// id. It is created alongside the user item (as a separate, non-atomic write)
// and enables lookup by email without a second index read.
type EmailAlias struct {
	Email  string
	UserID string
}

// Org is a root entity. The stored item carries the org name key on GSI1.
type Org struct {
	ID     string
	Name   string
	Active bool
}

// NewOrg builds an active org with a generated id.
func NewOrg(name string) *Org {
	return &Org{ID: uuid.NewString(), Name: name, Active: true}
}

// Team is a root entity. The stored item carries the team name key on GSI1
// and the team type tag on GSI2.
type Team struct {
	ID     string
	Name   string
	Active bool
}

// NewTeam builds an active team with a generated id.
func NewTeam(name string) *Team {
	return &Team{ID: uuid.NewString(), Name: name, Active: true}
}

// Membership is an adjacency record between a parent org or team and a user.
// Parent holds the prefixed parent key (ORG#<id> or TEAM#<id>); callers must
// know the parent's entity type to interpret it. Membership existence is
// boolean, with no additional metadata.
type Membership struct {
	Parent string
	UserID string
}
