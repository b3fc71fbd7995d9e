package domain

import "time"

// Role is the access tier stored on an identity.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleEditor   Role = "editor"
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// DefaultRole is assigned when registration does not name one.
const DefaultRole = RoleViewer

// Roles lists every role an identity may hold.
var Roles = []Role{RoleViewer, RoleEditor, RoleAdmin, RoleOperator}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Identity is a stored user record. PasswordHash never leaves the process.
type Identity struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicIdentity is the only projection of an Identity returned to callers.
type PublicIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Public strips credential material from the identity.
func (i *Identity) Public() *PublicIdentity {
	if i == nil {
		return nil
	}
	return &PublicIdentity{ID: i.ID, Username: i.Username, Role: i.Role}
}
