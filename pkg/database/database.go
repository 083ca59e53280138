package database

import (
	"fmt"
	"learnquest_backend/internal/config"
	"learnquest_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release模式默认跳过自动迁移，需通过 -migrate 显式开启
	if cfg.Server.Mode == "release" && !cfg.ForceMigrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.Subject{},
		&model.Topic{},
		&model.Section{},
		&model.Question{},
		&model.Flashcard{},
		&model.Media{},
		&model.FlashcardProgress{},
		&model.SectionProgress{},
		&model.Achievement{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedAchievements(db)

	return db, nil
}

// seedAchievements 成就目录为空时写入默认定义，解锁规则本身在经验账本中
func seedAchievements(db *gorm.DB) {
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Achievement{
		{Code: "first_steps", Name: "初次尝试", Description: "回答第一道题目"},
		{Code: "level_5", Name: "渐入佳境", Description: "达到5级"},
		{Code: "level_10", Name: "学有所成", Description: "达到10级"},
		{Code: "streak_7", Name: "七日之约", Description: "连续学习7天"},
		{Code: "streak_30", Name: "月度坚持", Description: "连续学习30天"},
		{Code: "cards_10", Name: "记忆新星", Description: "掌握10张卡片"},
		{Code: "cards_100", Name: "记忆大师", Description: "掌握100张卡片"},
		{Code: "sections_10", Name: "步步为营", Description: "完成10个小节"},
		{Code: "xp_1000", Name: "千里之行", Description: "累计获得1000经验"},
	}
	for _, a := range defaults {
		db.Create(&a)
	}
}
