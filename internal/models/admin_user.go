package models

import (
	"time"

	"github.com/lib/pq"
)

// CapabilityManageCatalog grants access to the stock grid.
const CapabilityManageCatalog = "manage_catalog"

// AdminUser represents an admin user for the panel.
type AdminUser struct {
	ID           int            `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Name         string         `db:"name" json:"name"`
	Capabilities pq.StringArray `db:"capabilities" json:"capabilities"`
	IsActive     bool           `db:"is_active" json:"isActive"`
	LastLoginAt  *time.Time     `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// Can reports whether the user holds capability.
func (u *AdminUser) Can(capability string) bool {
	for _, c := range u.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
