package model

// swagger:model Subject
type Subject struct {
	BaseModel
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:255" json:"icon"`
	OrderIndex  int    `gorm:"default:0" json:"orderIndex"`
	Published   bool   `gorm:"default:false" json:"published"`

	Topics []Topic `gorm:"foreignKey:SubjectID" json:"topics,omitempty"`
}

func (Subject) TableName() string {
	return "subjects"
}
