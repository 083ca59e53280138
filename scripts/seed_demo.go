// 手动写入演示内容脚本
//
// 在空库上建立一个带三种解锁策略的示例主题，便于前端联调与本地体验。
// 已有学科数据时直接退出，不会重复写入。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"learnquest_backend/internal/config"
	"learnquest_backend/internal/model"
	"learnquest_backend/pkg/database"
	"learnquest_backend/pkg/logger"
	"log"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	cfg.ForceMigrate = true

	logger.InitLogger(cfg)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var count int64
	db.Model(&model.Subject{}).Count(&count)
	if count > 0 {
		log.Println("已存在学科数据，跳过演示内容写入")
		return
	}

	subject := model.Subject{Title: "化学入门", Description: "从原子到反应的第一步", Published: true}
	if err := db.Create(&subject).Error; err != nil {
		log.Fatalf("写入学科失败: %v", err)
	}

	topic := model.Topic{SubjectID: subject.ID, Title: "物质的构成", Published: true}
	if err := db.Create(&topic).Error; err != nil {
		log.Fatalf("写入主题失败: %v", err)
	}

	sections := []model.Section{
		{TopicID: topic.ID, Title: "原子与分子", OrderIndex: 0, UnlockPolicy: model.UnlockAlways, CompletionXP: 50},
		{TopicID: topic.ID, Title: "化学键", OrderIndex: 1, UnlockPolicy: model.UnlockSequential, CompletionXP: 80},
		{TopicID: topic.ID, Title: "化学反应", OrderIndex: 2, UnlockPolicy: model.UnlockScoreBased, RequiredScore: 70, RequireCompletion: true, CompletionXP: 120},
	}
	for i := range sections {
		if err := db.Create(&sections[i]).Error; err != nil {
			log.Fatalf("写入小节失败: %v", err)
		}
	}

	questions := []model.Question{
		{
			SectionID: sections[0].ID, Type: model.MultipleChoice, OrderIndex: 0, XP: 10,
			Prompt:        "水分子由哪些原子构成？",
			Options:       model.StringList{"两个氢一个氧", "一个氢两个氧", "两个氧", "一个碳一个氧"},
			CorrectAnswer: "两个氢一个氧",
		},
		{
			SectionID: sections[0].ID, Type: model.TrueFalse, OrderIndex: 1, XP: 10,
			Prompt:        "原子是化学变化中的最小微粒。",
			CorrectAnswer: "true",
		},
		{
			SectionID: sections[1].ID, Type: model.Numerical, OrderIndex: 0, XP: 15,
			Prompt:        "水的摩尔质量约为多少 g/mol？",
			NumericAnswer: 18, Tolerance: 0.5,
		},
		{
			SectionID: sections[1].ID, Type: model.Matching, OrderIndex: 1, XP: 15,
			Prompt: "将物质与其化学式配对。",
			Pairs: []model.MatchingPair{
				{Left: "水", Right: "H2O"},
				{Left: "食盐", Right: "NaCl"},
				{Left: "二氧化碳", Right: "CO2"},
			},
		},
		{
			SectionID: sections[2].ID, Type: model.FillInBlank, OrderIndex: 0, XP: 20,
			Prompt:        "燃烧需要可燃物、温度和____。",
			CorrectAnswer: "氧气",
		},
	}
	for i := range questions {
		if err := db.Create(&questions[i]).Error; err != nil {
			log.Fatalf("写入题目失败: %v", err)
		}
	}

	flashcards := []model.Flashcard{
		{SectionID: sections[0].ID, Front: "原子序数", Back: "原子核内质子的数目", OrderIndex: 0, XP: 5},
		{SectionID: sections[0].ID, Front: "同位素", Back: "质子数相同、中子数不同的原子", OrderIndex: 1, XP: 5},
		{SectionID: sections[1].ID, Front: "共价键", Back: "原子间通过共用电子对形成的化学键", OrderIndex: 0, XP: 5},
	}
	for i := range flashcards {
		if err := db.Create(&flashcards[i]).Error; err != nil {
			log.Fatalf("写入闪卡失败: %v", err)
		}
	}

	log.Println("演示内容写入完成！")
}
