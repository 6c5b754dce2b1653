package model

import (
	"insurai/shared/constant"
	"insurai/shared/model"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID       = "id"
	FieldEmail    = "email"
	FieldFullName = "full_name"
	FieldRole     = "role"
)

// User is the read-only identity the scheduling core resolves customers and agents against.
type User struct {
	ID       string `db:"id"`
	Email    string `db:"email"`
	FullName string `db:"full_name"`
	Role     string `db:"role"`
	model.Metadata
}

func (u User) IsAgent() bool {
	return u.Role == constant.RoleAgent
}

// DisplayName falls back to the email when no name was recorded.
func (u User) DisplayName() string {
	if u.FullName != constant.Empty {
		return u.FullName
	}

	return u.Email
}
