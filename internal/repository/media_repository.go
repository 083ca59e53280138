package repository

import (
	"errors"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/util"

	"gorm.io/gorm"
)

type MediaRepository struct {
	DB *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{DB: db}
}

func (r *MediaRepository) Create(media *model.Media) error {
	return r.DB.Create(media).Error
}

func (r *MediaRepository) FindByID(id string) (*model.Media, error) {
	var media model.Media
	err := r.DB.Where("id = ?", id).First(&media).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *MediaRepository) FindBySection(sectionID uint) ([]model.Media, error) {
	var media []model.Media
	err := r.DB.Where("section_id = ?", sectionID).Order("created_at ASC").Find(&media).Error
	return media, err
}

func (r *MediaRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Media{}).Error
}
