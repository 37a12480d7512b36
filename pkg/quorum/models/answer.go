package models

import (
	"time"

	"gorm.io/gorm"
)

// Answer is a reply to a question
type Answer struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Published  time.Time  `gorm:"not null;index" json:"published"`
	Updated    *time.Time `json:"updated"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	QuestionID uint       `gorm:"not null;index" json:"question_id"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user"`
}

func (Answer) TableName() string { return "answer" }

func (a Answer) OwnerID() uint { return a.UserID }

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.Published.IsZero() {
		a.Published = time.Now().UTC()
	}
	return nil
}
