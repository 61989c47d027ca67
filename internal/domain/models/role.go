package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultRoleName is the seeded role new accounts start with
const DefaultRoleName = "member"

// Resource identifiers permission keys may refer to
const (
	ResourceUser       = "user"
	ResourceRole       = "role"
	ResourceRepository = "repository"
)

// Actions permission keys may refer to
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// PermissionKey builds a "<resource>:<action>" permission key
func PermissionKey(resource, action string) string {
	return resource + ":" + action
}

// ValidPermissionKey reports whether a key names a known resource and action
func ValidPermissionKey(key string) bool {
	for _, resource := range []string{ResourceUser, ResourceRole, ResourceRepository} {
		for _, action := range []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
			if key == PermissionKey(resource, action) {
				return true
			}
		}
	}
	return false
}

// PermissionMap maps permission keys to allow/deny flags. Stored as JSONB.
type PermissionMap map[string]bool

// Value implements driver.Valuer for JSONB storage
func (m PermissionMap) Value() (driver.Value, error) {
	if m == nil {
		m = PermissionMap{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB storage
func (m *PermissionMap) Scan(value interface{}) error {
	if value == nil {
		*m = PermissionMap{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported permission map type %T", value)
	}
	return json.Unmarshal(data, m)
}

// Role is a named set of permission flags assigned to users
type Role struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string        `json:"name" gorm:"uniqueIndex;not null;size:255"`
	Description string        `json:"description" gorm:"size:500"`
	Permissions PermissionMap `json:"permissions" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the Role model
func (Role) TableName() string {
	return "roles"
}

// Allows reports whether the role grants the given permission key.
// A missing flag denies: the gate fails closed.
func (r *Role) Allows(key string) bool {
	if r == nil || r.Permissions == nil {
		return false
	}
	return r.Permissions[key]
}
