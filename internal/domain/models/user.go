package models

import (
	"time"

	"bookmybus/internal/domain"
)

type User struct {
	ID           int64       `json:"_id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	PasswordHash string      `json:"-"`
	Role         domain.Role `json:"role"`
	IsVerified   bool        `json:"isVerified"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}
