package model

import (
	"time"

	"github.com/google/uuid"
)

// User запись пользователя в хранилище
type User struct {
	UUID         uuid.UUID `db:"uuid" json:"uuid"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	IsSuperuser  bool      `db:"is_superuser" json:"is_superuser"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

// UserProfile снимок профиля, который вшивается в access токен
// swagger:model
type UserProfile struct {
	UUID        uuid.UUID `json:"uuid"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

func (user *User) Profile() UserProfile {
	return UserProfile{
		UUID:        user.UUID,
		Username:    user.Username,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt,
	}
}

// UserPatch частичное обновление профиля. nil означает, что поле не передано.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// MergeUser возвращает новую запись: старые значения плюс заданные поля патча.
// Пустые строки считаются непереданными. Пароль в патче должен быть уже захэширован.
func MergeUser(user User, patch UserPatch) User {
	merged := user
	if patch.Username != nil && *patch.Username != "" {
		merged.Username = *patch.Username
	}
	if patch.Email != nil && *patch.Email != "" {
		merged.Email = *patch.Email
	}
	if patch.Password != nil && *patch.Password != "" {
		merged.PasswordHash = *patch.Password
	}
	return merged
}

func (patch UserPatch) Empty() bool {
	return isBlank(patch.Username) && isBlank(patch.Email) && isBlank(patch.Password)
}

func isBlank(value *string) bool {
	return value == nil || *value == ""
}
