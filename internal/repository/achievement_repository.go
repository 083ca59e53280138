package repository

import (
	"learnquest_backend/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) ListAll() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("id ASC").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindByCodes(codes []string) ([]model.Achievement, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var achievements []model.Achievement
	err := r.DB.Where("code IN ?", codes).Find(&achievements).Error
	return achievements, err
}
