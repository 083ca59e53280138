package model

// QuestionType 题目类型为封闭集合，正确性判定处对其做穷举匹配
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillInBlank    QuestionType = "fill_in_blank"
	Numerical      QuestionType = "numerical"
	Matching       QuestionType = "matching"
)

// MatchingPair 匹配题的左右项
type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// swagger:model Question
type Question struct {
	BaseModel
	SectionID  uint         `gorm:"index;type:bigint unsigned;not null" json:"sectionId"`
	Type       QuestionType `gorm:"type:enum('multiple_choice','true_false','fill_in_blank','numerical','matching');not null" json:"type"`
	Prompt     string       `gorm:"type:text;not null" json:"prompt"`
	OrderIndex int          `gorm:"default:0" json:"orderIndex"`
	XP         int          `gorm:"default:10" json:"xp"` // 首次答对的基础经验值

	// 各类型的答案载荷，按Type取用
	Options       StringList     `gorm:"type:json;serializer:json" json:"options,omitempty"`       // multiple_choice
	CorrectAnswer string         `gorm:"size:500" json:"-"`                                        // multiple_choice / true_false / fill_in_blank
	NumericAnswer float64        `gorm:"default:0" json:"-"`                                       // numerical
	Tolerance     float64        `gorm:"default:0" json:"-"`                                       // numerical允许的绝对误差
	Pairs         []MatchingPair `gorm:"type:json;serializer:json" json:"pairs,omitempty"`         // matching
	Explanation   string         `gorm:"type:text" json:"explanation,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
