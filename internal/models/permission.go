package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type Permission string

const (
	PermissionAdmin            Permission = "ADMIN"
	PermissionUser             Permission = "USER"
	PermissionItemCreate       Permission = "ITEMCREATE"
	PermissionItemUpdate       Permission = "ITEMUPDATE"
	PermissionItemDelete       Permission = "ITEMDELETE"
	PermissionPermissionUpdate Permission = "PERMISSIONUPDATE"
)

var knownPermissions = map[Permission]struct{}{
	PermissionAdmin:            {},
	PermissionUser:             {},
	PermissionItemCreate:       {},
	PermissionItemUpdate:       {},
	PermissionItemDelete:       {},
	PermissionPermissionUpdate: {},
}

// ParsePermission accepts the canonical labels case-insensitively. The
// plural "PERMISSIONSUPDATE" spelling is accepted as an alias.
func ParsePermission(s string) (Permission, error) {
	label := strings.ToUpper(strings.TrimSpace(s))
	if label == "PERMISSIONSUPDATE" {
		return PermissionPermissionUpdate, nil
	}
	p := Permission(label)
	if _, ok := knownPermissions[p]; !ok {
		return "", fmt.Errorf("unknown permission %q", s)
	}
	return p, nil
}

type PermissionSet []Permission

func ParsePermissionSet(labels []string) (PermissionSet, error) {
	set := make(PermissionSet, 0, len(labels))
	for _, l := range labels {
		p, err := ParsePermission(l)
		if err != nil {
			return nil, err
		}
		if !set.Has(p) {
			set = append(set, p)
		}
	}
	return set, nil
}

func (s PermissionSet) Has(p Permission) bool {
	for _, have := range s {
		if have == p {
			return true
		}
	}
	return false
}

// HasAny reports whether s and required intersect.
func (s PermissionSet) HasAny(required ...Permission) bool {
	for _, p := range required {
		if s.Has(p) {
			return true
		}
	}
	return false
}

func (s PermissionSet) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = string(p)
	}
	return out
}

func (s PermissionSet) Value() (driver.Value, error) {
	return pq.StringArray(s.Strings()).Value()
}

func (s *PermissionSet) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return fmt.Errorf("scan permissions: %w", err)
	}
	set := make(PermissionSet, len(arr))
	for i, v := range arr {
		set[i] = Permission(v)
	}
	*s = set
	return nil
}

func (PermissionSet) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
