package model

// UnlockPolicy 小节解锁策略
type UnlockPolicy string

const (
	UnlockAlways     UnlockPolicy = "always"
	UnlockSequential UnlockPolicy = "sequential"
	UnlockScoreBased UnlockPolicy = "score_based"
)

// Section 主题下的学习小节，解锁策略作用于同一主题内按OrderIndex排序的兄弟小节
// swagger:model Section
type Section struct {
	BaseModel
	TopicID     uint   `gorm:"index;type:bigint unsigned;not null" json:"topicId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	OrderIndex  int    `gorm:"default:0" json:"orderIndex"`

	UnlockPolicy      UnlockPolicy `gorm:"type:enum('always','sequential','score_based');default:'always'" json:"unlockPolicy"`
	RequiredScore     float64      `gorm:"default:70" json:"requiredScore"` // score_based策略的及格线
	RequireCompletion bool         `gorm:"default:false" json:"requireCompletion"`
	CompletionXP      int          `gorm:"default:0" json:"completionXp"` // 小节完成时的一次性奖励

	Questions  []Question  `gorm:"foreignKey:SectionID" json:"questions,omitempty"`
	Flashcards []Flashcard `gorm:"foreignKey:SectionID" json:"flashcards,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}
