package repository

import (
	"errors"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/util"

	"gorm.io/gorm"
)

// ProgressRepository 进度引擎的存储实现
// 所有Upsert基于version列条件写：竞争失败返回ErrConcurrencyConflict，
// 由协调器整单重试，保证经验只增、完成不回退等单调不变量
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// GetFlashcardProgress 记录不存在时返回(nil, nil)，由调用方惰性创建
func (r *ProgressRepository) GetFlashcardProgress(userID, flashcardID uint) (*model.FlashcardProgress, error) {
	var rec model.FlashcardProgress
	err := r.DB.Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ProgressRepository) GetSectionProgress(userID, sectionID uint) (*model.SectionProgress, error) {
	var rec model.SectionProgress
	err := r.DB.Where("user_id = ? AND section_id = ?", userID, sectionID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetSectionProgressByTopic 拉取某主题下该用户的全部小节进度，键为小节ID
func (r *ProgressRepository) GetSectionProgressByTopic(userID, topicID uint) (map[uint]*model.SectionProgress, error) {
	var records []model.SectionProgress
	err := r.DB.
		Joins("JOIN sections ON sections.id = section_progress.section_id").
		Where("section_progress.user_id = ? AND sections.topic_id = ?", userID, topicID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uint]*model.SectionProgress, len(records))
	for i := range records {
		result[records[i].SectionID] = &records[i]
	}
	return result, nil
}

func (r *ProgressRepository) GetUserProfile(userID uint) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProgressRepository) CreateUserProfile(profile *model.UserProfile) error {
	return r.DB.Create(profile).Error
}

func (r *ProgressRepository) UpsertFlashcardProgress(rec *model.FlashcardProgress) error {
	if rec.ID == 0 {
		return r.casCreate(rec)
	}
	return r.casUpdate(&model.FlashcardProgress{}, rec.ID, rec.Version, map[string]interface{}{
		"mastery_level":    rec.MasteryLevel,
		"review_count":     rec.ReviewCount,
		"ease_factor":      rec.EaseFactor,
		"interval_mins":    rec.IntervalMins,
		"last_reviewed_at": rec.LastReviewedAt,
		"next_due_at":      rec.NextDueAt,
	})
}

func (r *ProgressRepository) UpsertSectionProgress(rec *model.SectionProgress) error {
	if rec.ID == 0 {
		return r.casCreate(rec)
	}
	return r.casUpdate(&model.SectionProgress{}, rec.ID, rec.Version, map[string]interface{}{
		"questions_answered":    rec.QuestionsAnswered,
		"correct_answers":       rec.CorrectAnswers,
		"total_questions":       rec.TotalQuestions,
		"score":                 rec.Score,
		"completed":             rec.Completed,
		"answered_question_ids": rec.AnsweredQuestionIDs,
		"completed_at":          rec.CompletedAt,
	})
}

func (r *ProgressRepository) UpsertUserProfile(profile *model.UserProfile) error {
	if profile.ID == 0 {
		return r.casCreate(profile)
	}
	return r.casUpdate(&model.UserProfile{}, profile.ID, profile.Version, map[string]interface{}{
		"total_xp":            profile.TotalXP,
		"level":               profile.Level,
		"current_streak":      profile.CurrentStreak,
		"max_streak":          profile.MaxStreak,
		"learning_streak":     profile.LearningStreak,
		"last_activity_at":    profile.LastActivityAt,
		"last_learning_at":    profile.LastLearningAt,
		"last_daily_bonus_at": profile.LastDailyBonusAt,
		"questions_answered":  profile.QuestionsAnswered,
		"sections_completed":  profile.SectionsCompleted,
		"flashcards_mastered": profile.FlashcardsMastered,
		"achievements":        profile.Achievements,
	})
}

// FindTopProfiles 排行榜用：按总经验取前N名
func (r *ProgressRepository) FindTopProfiles(limit int) ([]model.UserProfile, error) {
	var profiles []model.UserProfile
	err := r.DB.Order("total_xp DESC").Limit(limit).Find(&profiles).Error
	return profiles, err
}

// casCreate 首次写入：惰性创建的记录被并发创建两次时唯一索引兜底
func (r *ProgressRepository) casCreate(rec interface{}) error {
	err := r.DB.Create(rec).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrConcurrencyConflict
	}
	return err
}

// casUpdate 比较并交换：version未动才更新并自增，否则判为竞争失败
func (r *ProgressRepository) casUpdate(m interface{}, id uint, version uint, values map[string]interface{}) error {
	values["version"] = version + 1
	result := r.DB.Model(m).
		Where("id = ? AND version = ?", id, version).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrConcurrencyConflict
	}
	return nil
}
