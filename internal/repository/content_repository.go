package repository

import (
	"errors"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/util"

	"gorm.io/gorm"
)

// ContentRepository 内容树（科目→主题→小节→题目/卡片）的读写
type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) ListSubjects(publishedOnly bool) ([]model.Subject, error) {
	var subjects []model.Subject
	query := r.DB.Order("order_index ASC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	err := query.Find(&subjects).Error
	return subjects, err
}

func (r *ContentRepository) GetSubject(id uint) (*model.Subject, error) {
	var subject model.Subject
	err := r.DB.Preload("Topics", func(db *gorm.DB) *gorm.DB {
		return db.Order("topics.order_index ASC")
	}).First(&subject, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *ContentRepository) CreateSubject(subject *model.Subject) error {
	return r.DB.Create(subject).Error
}

func (r *ContentRepository) UpdateSubject(subject *model.Subject) error {
	return r.DB.Save(subject).Error
}

func (r *ContentRepository) DeleteSubject(id uint) error {
	return r.DB.Delete(&model.Subject{}, id).Error
}

func (r *ContentRepository) GetTopic(id uint) (*model.Topic, error) {
	var topic model.Topic
	err := r.DB.First(&topic, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *ContentRepository) CreateTopic(topic *model.Topic) error {
	return r.DB.Create(topic).Error
}

func (r *ContentRepository) UpdateTopic(topic *model.Topic) error {
	return r.DB.Save(topic).Error
}

func (r *ContentRepository) DeleteTopic(id uint) error {
	return r.DB.Delete(&model.Topic{}, id).Error
}

func (r *ContentRepository) GetSection(id uint) (*model.Section, error) {
	var section model.Section
	err := r.DB.First(&section, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// GetSectionsByTopic 解锁判定依赖这里的OrderIndex排序
func (r *ContentRepository) GetSectionsByTopic(topicID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("topic_id = ?", topicID).Order("order_index ASC").Find(&sections).Error
	return sections, err
}

func (r *ContentRepository) CreateSection(section *model.Section) error {
	return r.DB.Create(section).Error
}

func (r *ContentRepository) UpdateSection(section *model.Section) error {
	return r.DB.Save(section).Error
}

func (r *ContentRepository) DeleteSection(id uint) error {
	return r.DB.Delete(&model.Section{}, id).Error
}

func (r *ContentRepository) GetQuestion(id uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.First(&question, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *ContentRepository) ListQuestionsBySection(sectionID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("section_id = ?", sectionID).Order("order_index ASC").Find(&questions).Error
	return questions, err
}

func (r *ContentRepository) CountQuestions(sectionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("section_id = ?", sectionID).Count(&count).Error
	return count, err
}

// GetLastQuestionID 小节内排序最末的题目ID，非requireCompletion小节的完成判定依据
func (r *ContentRepository) GetLastQuestionID(sectionID uint) (uint, error) {
	var question model.Question
	err := r.DB.Where("section_id = ?", sectionID).
		Order("order_index DESC").
		Select("id").
		First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, util.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return question.ID, nil
}

// FindRandomQuestions 随机测验的抽题
func (r *ContentRepository) FindRandomQuestions(topicID uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.
		Joins("JOIN sections ON sections.id = questions.section_id").
		Where("sections.topic_id = ?", topicID).
		Order("RAND()").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *ContentRepository) CreateQuestion(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *ContentRepository) UpdateQuestion(question *model.Question) error {
	return r.DB.Save(question).Error
}

func (r *ContentRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *ContentRepository) GetFlashcard(id uint) (*model.Flashcard, error) {
	var card model.Flashcard
	err := r.DB.First(&card, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *ContentRepository) ListFlashcardsBySection(sectionID uint) ([]model.Flashcard, error) {
	var cards []model.Flashcard
	err := r.DB.Where("section_id = ?", sectionID).Order("order_index ASC").Find(&cards).Error
	return cards, err
}

// FindDueFlashcards 到期复习队列：已有进度且next_due_at已过的卡片，
// 以及该小节下尚无进度记录的新卡
func (r *ContentRepository) FindDueFlashcards(userID, sectionID uint, limit int) ([]model.Flashcard, error) {
	var cards []model.Flashcard
	err := r.DB.
		Joins("LEFT JOIN flashcard_progress ON flashcard_progress.flashcard_id = flashcards.id AND flashcard_progress.user_id = ?", userID).
		Where("flashcards.section_id = ?", sectionID).
		Where("flashcard_progress.id IS NULL OR flashcard_progress.next_due_at <= NOW()").
		Order("flashcard_progress.next_due_at ASC").
		Limit(limit).
		Find(&cards).Error
	return cards, err
}

func (r *ContentRepository) CreateFlashcard(card *model.Flashcard) error {
	return r.DB.Create(card).Error
}

func (r *ContentRepository) UpdateFlashcard(card *model.Flashcard) error {
	return r.DB.Save(card).Error
}

func (r *ContentRepository) DeleteFlashcard(id uint) error {
	// 级联清理进度记录，卡片删除由内容管理端发起
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flashcard_id = ?", id).Delete(&model.FlashcardProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Flashcard{}, id).Error
	})
}
