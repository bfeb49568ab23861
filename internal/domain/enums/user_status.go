package enums

type UserStatus string

const (
	UserStatusPending UserStatus = "PENDING"
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBanned  UserStatus = "BANNED"
)
