package model

// swagger:model Topic
type Topic struct {
	BaseModel
	SubjectID   uint   `gorm:"index;type:bigint unsigned;not null" json:"subjectId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	OrderIndex  int    `gorm:"default:0" json:"orderIndex"`
	Published   bool   `gorm:"default:false" json:"published"`

	Sections []Section `gorm:"foreignKey:TopicID" json:"sections,omitempty"`
}

func (Topic) TableName() string {
	return "topics"
}
