package model

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

// Principal is the authenticated caller extracted from the access token.
// Admins belong to an outfitter; clients are identified by email only.
type Principal struct {
	UserID      uuid.UUID
	OutfitterID uuid.UUID
	Email       string
	Role        Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsClient() bool {
	return p.Role == RoleClient
}

// NormalizedEmail is the lower-cased, trimmed form used for ownership
// comparisons.
func (p Principal) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(p.Email))
}
