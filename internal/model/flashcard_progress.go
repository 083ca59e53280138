package model

import (
	"time"
)

// MasteryLevel 卡片记忆强度的粗粒度分级
type MasteryLevel string

const (
	MasteryNew      MasteryLevel = "new"
	MasteryLearning MasteryLevel = "learning"
	MasteryFamiliar MasteryLevel = "familiar"
	MasteryMastered MasteryLevel = "mastered"
)

// Rank 分级的序数，用于推进/回退比较
func (m MasteryLevel) Rank() int {
	switch m {
	case MasteryNew:
		return 0
	case MasteryLearning:
		return 1
	case MasteryFamiliar:
		return 2
	case MasteryMastered:
		return 3
	}
	return -1
}

// MasteryForRank Rank的反函数，越界时饱和
func MasteryForRank(rank int) MasteryLevel {
	switch {
	case rank <= 0:
		return MasteryNew
	case rank == 1:
		return MasteryLearning
	case rank == 2:
		return MasteryFamiliar
	default:
		return MasteryMastered
	}
}

// FlashcardProgress 每个(用户,卡片)一条，首次复习时惰性创建，只由调度器变更
// swagger:model FlashcardProgress
type FlashcardProgress struct {
	BaseModel
	UserID      uint `gorm:"uniqueIndex:idx_user_flashcard;type:bigint unsigned;not null" json:"userId"`
	FlashcardID uint `gorm:"uniqueIndex:idx_user_flashcard;type:bigint unsigned;not null" json:"flashcardId"`

	MasteryLevel MasteryLevel `gorm:"type:enum('new','learning','familiar','mastered');default:'new'" json:"masteryLevel"`
	ReviewCount  int          `gorm:"default:0" json:"reviewCount"`
	EaseFactor   float64      `gorm:"default:2.5" json:"-"` // 调度器内部状态，不对外暴露
	IntervalMins int          `gorm:"default:0" json:"-"`   // 上一次排定的间隔（分钟）

	LastReviewedAt *time.Time `json:"lastReviewedAt"`
	NextDueAt      *time.Time `json:"nextDueAt"`

	Version uint `gorm:"default:0" json:"-"`
}

func (FlashcardProgress) TableName() string {
	return "flashcard_progress"
}
