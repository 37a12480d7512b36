package models

import (
	"time"

	"gorm.io/gorm"
)

// Question is a user's post; answers and tag links hang off it.
type Question struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Content   *string    `gorm:"type:text" json:"content"`
	Published time.Time  `gorm:"not null;index" json:"published"`
	Updated   *time.Time `json:"updated"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`

	// Relationships
	User    User     `gorm:"foreignKey:UserID" json:"user"`
	Tags    []Tag    `gorm:"many2many:tagged_questions;" json:"tags"`
	Answers []Answer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Question) TableName() string { return "question" }

// OwnerID returns the id of the user who asked the question.
func (q Question) OwnerID() uint { return q.UserID }

// BeforeCreate stamps the publish time when the caller did not.
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.Published.IsZero() {
		q.Published = time.Now().UTC()
	}
	return nil
}
