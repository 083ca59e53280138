package model

import (
	"time"
)

// StringList 以JSON列存储的字符串集合
type StringList []string

// UserProfile 每个用户一条的游戏化进度聚合，只允许进度协调器写入
// swagger:model UserProfile
type UserProfile struct {
	BaseModel
	UserID         uint `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	TotalXP        int  `gorm:"default:0" json:"totalXp"`
	Level          int  `gorm:"default:0" json:"level"` // 始终由TotalXP推导，持久化仅供查询
	CurrentStreak  int  `gorm:"default:0" json:"currentStreak"`
	MaxStreak      int  `gorm:"default:0" json:"maxStreak"`
	LearningStreak int  `gorm:"default:0" json:"learningStreak"`

	// 日期标记：连续天数与每日加成判定全部基于这些列，而不是散落的时钟检查
	LastActivityAt   *time.Time `json:"lastActivityAt"`
	LastLearningAt   *time.Time `json:"lastLearningAt"`
	LastDailyBonusAt *time.Time `json:"lastDailyBonusAt"`

	// 成就规则用到的累计计数
	QuestionsAnswered  int `gorm:"default:0" json:"questionsAnswered"`
	SectionsCompleted  int `gorm:"default:0" json:"sectionsCompleted"`
	FlashcardsMastered int `gorm:"default:0" json:"flashcardsMastered"`

	Achievements StringList `gorm:"type:json;serializer:json" json:"achievements"`

	// 乐观锁版本号，upsert时比较并自增
	Version uint `gorm:"default:0" json:"-"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// HasAchievement 判断成就是否已解锁
func (p *UserProfile) HasAchievement(code string) bool {
	for _, a := range p.Achievements {
		if a == code {
			return true
		}
	}
	return false
}
