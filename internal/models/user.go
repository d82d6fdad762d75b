package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	// UserID is the externally visible identity, generated at registration.
	// It is stable across exports/imports, unlike the auto increment row ID.
	UserID         uint64 `gorm:"uniqueIndex"`
	Username       string `gorm:"uniqueIndex"`
	Email          string `gorm:"uniqueIndex"`
	HashedPassword string

	Posters []Poster `gorm:"constraint:OnDelete:CASCADE"`
}

// UserView is the user representation returned to API callers. The password
// hash never leaves the server.
type UserView struct {
	UserID    string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) View() *UserView {
	return &UserView{
		UserID:    strconv.FormatUint(u.UserID, 10),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
