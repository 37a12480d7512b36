package models

import "time"

// User is a registered forum member.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
	Username     string    `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:hashed_password;not null" json:"-"`

	// Relationships
	Questions []Question `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Answers   []Answer   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string { return "user" }
