package service

import (
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/repository"
)

// LearningService 学生端的学习读取接口：带解锁状态的小节列表、
// 到期复习队列、随机测验出题。只读，不碰进度写路径
type LearningService struct {
	ContentRepo  *repository.ContentRepository
	ProgressRepo *repository.ProgressRepository
	gate         *UnlockGate
}

func NewLearningService(contentRepo *repository.ContentRepository, progressRepo *repository.ProgressRepository, defaultRequiredScore float64) *LearningService {
	return &LearningService{
		ContentRepo:  contentRepo,
		ProgressRepo: progressRepo,
		gate:         NewUnlockGate(defaultRequiredScore),
	}
}

// SectionStatus 小节在列表页的展示状态
type SectionStatus struct {
	Section      model.Section `json:"section"`
	Unlocked     bool          `json:"unlocked"`
	LockedReason string        `json:"lockedReason,omitempty"`
	Completed    bool          `json:"completed"`
	Score        float64       `json:"score"`
	Answered     int           `json:"answered"`
}

// GetTopicSections 主题下全部小节及该用户的解锁/完成状态
func (s *LearningService) GetTopicSections(userID, topicID uint) ([]SectionStatus, error) {
	sections, err := s.ContentRepo.GetSectionsByTopic(topicID)
	if err != nil {
		return nil, err
	}

	progress, err := s.ProgressRepo.GetSectionProgressByTopic(userID, topicID)
	if err != nil {
		return nil, err
	}

	statuses := make([]SectionStatus, len(sections))
	for i, section := range sections {
		unlocked, err := s.gate.IsUnlocked(sections, i, progress)
		if err != nil {
			return nil, err
		}

		status := SectionStatus{
			Section:  section,
			Unlocked: unlocked,
		}
		if !unlocked {
			reason, err := s.gate.UnlockReason(sections, i, progress)
			if err != nil {
				return nil, err
			}
			status.LockedReason = reason
		}
		if p := progress[section.ID]; p != nil {
			status.Completed = p.Completed
			status.Score = p.Score
			status.Answered = p.QuestionsAnswered
		}
		statuses[i] = status
	}

	return statuses, nil
}

// GetDueFlashcards 某小节下当前应复习的卡片（到期的加从未见过的）
func (s *LearningService) GetDueFlashcards(userID, sectionID uint, limit int) ([]model.Flashcard, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.ContentRepo.FindDueFlashcards(userID, sectionID, limit)
}

// GetRandomQuiz 从主题题库随机抽题组成每日测验，答案不回传
func (s *LearningService) GetRandomQuiz(topicID uint, count int) ([]model.Question, error) {
	if count <= 0 || count > 20 {
		count = 5
	}
	return s.ContentRepo.FindRandomQuestions(topicID, count)
}
