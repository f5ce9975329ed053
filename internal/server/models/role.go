package models

// Well-known role names. Roles are created lazily, so a fresh database may
// contain neither of them.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Role struct {
	ID   string
	Name string
}
