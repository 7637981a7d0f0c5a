package models

import "time"

type Role string

const (
	RoleOrganizer Role = "ORGANIZER"
	RoleBuyer     Role = "BUYER"
)

func (r Role) Valid() bool {
	return r == RoleOrganizer || r == RoleBuyer
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
