package model

import (
	"time"
)

// UintList 以JSON列存储的ID集合
type UintList []uint

// Contains 判断ID是否在集合中
func (l UintList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// SectionProgress 每个(用户,小节)一条，首次答题时惰性创建
// Completed一旦为true不再回退
// swagger:model SectionProgress
type SectionProgress struct {
	BaseModel
	UserID    uint `gorm:"uniqueIndex:idx_user_section;type:bigint unsigned;not null" json:"userId"`
	SectionID uint `gorm:"uniqueIndex:idx_user_section;type:bigint unsigned;not null" json:"sectionId"`

	QuestionsAnswered int     `gorm:"default:0" json:"questionsAnswered"`
	CorrectAnswers    int     `gorm:"default:0" json:"correctAnswers"`
	TotalQuestions    int     `gorm:"default:0" json:"totalQuestions"` // 首次进入时的小节题量快照
	Score             float64 `gorm:"default:0" json:"score"`          // 0-100，每次答题重算
	BestScore         float64 `gorm:"default:0" json:"bestScore"`      // 历史最高得分，只增不减，解锁判定依据
	Completed         bool    `gorm:"default:false" json:"completed"`

	// 已作答题目ID集合，重复提交判定依据
	AnsweredQuestionIDs UintList `gorm:"type:json;serializer:json" json:"-"`

	CompletedAt *time.Time `json:"completedAt"`

	Version uint `gorm:"default:0" json:"-"`
}

func (SectionProgress) TableName() string {
	return "section_progress"
}
