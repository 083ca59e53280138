package model

// swagger:model Flashcard
type Flashcard struct {
	BaseModel
	SectionID  uint   `gorm:"index;type:bigint unsigned;not null" json:"sectionId"`
	Front      string `gorm:"type:text;not null" json:"front"`
	Back       string `gorm:"type:text;not null" json:"back"`
	Hint       string `gorm:"size:500" json:"hint,omitempty"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
	XP         int    `gorm:"default:5" json:"xp"` // 首次复习的基础经验值
}

func (Flashcard) TableName() string {
	return "flashcards"
}
