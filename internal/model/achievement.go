package model

// Achievement 成就定义目录，解锁规则在经验账本中维护
type Achievement struct {
	BaseModel
	Code        string `gorm:"size:50;uniqueIndex;not null"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:255"`
	Icon        string `gorm:"size:255"`
}

func (Achievement) TableName() string {
	return "achievements"
}
