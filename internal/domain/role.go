package domain

import "slices"

// Built-in role names
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSeller  = "seller"
	RoleUser    = "user"
)

// Role owns a set of permission strings
type Role struct {
	Name        string   `json:"name" yaml:"name"`
	DisplayName string   `json:"displayName" yaml:"displayName"`
	Permissions []string `json:"permissions" yaml:"permissions"`
}

// HasPermission reports whether the role grants permission
func (r *Role) HasPermission(permission string) bool {
	return slices.Contains(r.Permissions, permission)
}

// RoleTable is the fixed set of roles, in declaration order
type RoleTable []Role

// Get returns the role with the given name
func (t RoleTable) Get(name string) (*Role, bool) {
	for i := range t {
		if t[i].Name == name {
			r := t[i]
			r.Permissions = slices.Clone(r.Permissions)
			return &r, true
		}
	}
	return nil, false
}

// Has reports whether name is a known role
func (t RoleTable) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Clone returns a deep copy
func (t RoleTable) Clone() RoleTable {
	out := make(RoleTable, len(t))
	for i, r := range t {
		r.Permissions = slices.Clone(r.Permissions)
		out[i] = r
	}
	return out
}

// DefaultRoles returns the built-in role table
func DefaultRoles() RoleTable {
	return RoleTable{
		{
			Name:        RoleAdmin,
			DisplayName: "Administrador",
			Permissions: []string{
				"users.read", "users.create", "users.update", "users.delete",
				"products.read", "products.create", "products.update", "products.delete",
				"orders.read", "orders.create", "orders.update", "orders.delete",
				"reports.read", "system.admin",
			},
		},
		{
			Name:        RoleManager,
			DisplayName: "Gerente",
			Permissions: []string{
				"users.read", "users.create", "users.update",
				"products.read", "products.create", "products.update", "products.delete",
				"orders.read", "orders.update", "reports.read",
			},
		},
		{
			Name:        RoleSeller,
			DisplayName: "Vendedor",
			Permissions: []string{
				"products.read", "products.create", "products.update",
				"orders.read", "orders.create", "orders.update",
			},
		},
		{
			Name:        RoleUser,
			DisplayName: "Cliente",
			Permissions: []string{
				"products.read", "orders.read", "orders.create", "profile.update",
			},
		},
	}
}
