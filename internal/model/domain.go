package model

import (
	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleSecurityAdmin   UserRole = "SECURITY_ADMIN"
	UserRoleSecurityOfficer UserRole = "SECURITY_OFFICER"
)

type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   UserRole
}

func (p Principal) IsSecurityAdmin() bool {
	return p.Role == UserRoleSecurityAdmin
}

// IsSecurityStaff проверяет, относится ли пользователь к службе безопасности
func (p Principal) IsSecurityStaff() bool {
	return p.Role == UserRoleSecurityAdmin || p.Role == UserRoleSecurityOfficer
}
