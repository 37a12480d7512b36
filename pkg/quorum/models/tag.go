package models

// Tag is a normalized label shared between questions
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:255;uniqueIndex;not null" json:"name"`

	// Relationships
	Questions []Question `gorm:"many2many:tagged_questions;" json:"-"`
}

func (Tag) TableName() string { return "tag" }
