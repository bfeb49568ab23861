package enums

import "strings"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(value string) Role {
	if strings.EqualFold(strings.TrimSpace(value), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}
