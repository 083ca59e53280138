package service

import (
	"context"
	"errors"
	"fmt"
	"learnquest_backend/internal/config"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/util"
	"learnquest_backend/pkg/logger"
	"learnquest_backend/pkg/monitoring"
	"learnquest_backend/pkg/tracing"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentType 交互针对的内容类别
type ContentType string

const (
	ContentQuestion  ContentType = "question"
	ContentFlashcard ContentType = "flashcard"
	ContentSection   ContentType = "section"
	ContentQuiz      ContentType = "quiz"
)

// ProgressStore 进度引擎依赖的持久化契约
// Get*在记录不存在时返回(nil, nil)以支持惰性创建；画像缺失返回ErrNotFound
// Upsert*基于版本号条件写，竞争失败返回ErrConcurrencyConflict
type ProgressStore interface {
	GetFlashcardProgress(userID, flashcardID uint) (*model.FlashcardProgress, error)
	GetSectionProgress(userID, sectionID uint) (*model.SectionProgress, error)
	GetSectionProgressByTopic(userID, topicID uint) (map[uint]*model.SectionProgress, error)
	GetUserProfile(userID uint) (*model.UserProfile, error)
	UpsertFlashcardProgress(rec *model.FlashcardProgress) error
	UpsertSectionProgress(rec *model.SectionProgress) error
	UpsertUserProfile(profile *model.UserProfile) error
}

// ContentReader 协调器需要的只读内容访问
type ContentReader interface {
	GetQuestion(id uint) (*model.Question, error)
	GetFlashcard(id uint) (*model.Flashcard, error)
	GetSection(id uint) (*model.Section, error)
	GetSectionsByTopic(topicID uint) ([]model.Section, error)
	CountQuestions(sectionID uint) (int64, error)
	GetLastQuestionID(sectionID uint) (uint, error)
}

// Outcome 交互结果载荷，按内容类别取用各字段
// swagger:model Outcome
type Outcome struct {
	Answer    string               `json:"answer,omitempty"`    // multiple_choice / true_false / fill_in_blank
	Value     *float64             `json:"value,omitempty"`     // numerical
	Matches   []model.MatchingPair `json:"matches,omitempty"`   // matching
	Rating    string               `json:"rating,omitempty"`    // flashcard: again/hard/good/easy
	Score     *float64             `json:"score,omitempty"`     // quiz得分
	TimeSpent int                  `json:"timeSpent,omitempty"` // 秒
}

// InteractionRequest 记录一次学习交互的入参
// swagger:model InteractionRequest
type InteractionRequest struct {
	ContentID   uint        `json:"contentId" binding:"required"`
	ContentType ContentType `json:"contentType" binding:"required"`
	Outcome     Outcome     `json:"outcome"`
}

// InteractionResult 交互结算摘要，返回给API层
// swagger:model InteractionResult
type InteractionResult struct {
	XPEarned             int                `json:"xpEarned"`
	LeveledUp            bool               `json:"leveledUp"`
	NewLevel             *int               `json:"newLevel,omitempty"`
	NewAchievements      []string           `json:"newAchievements"`
	SectionUnlockChanged bool               `json:"sectionUnlockChanged,omitempty"`
	Correct              *bool              `json:"correct,omitempty"`
	MasteryLevel         model.MasteryLevel `json:"masteryLevel,omitempty"`
	NextDueAt            *time.Time         `json:"nextDueAt,omitempty"`
}

// ProgressService 进度协调器：唯一允许写入进度存储的组件
// 同一(用户,内容)键的交互串行执行，乐观写冲突整单重试
type ProgressService struct {
	store     ProgressStore
	content   ContentReader
	scheduler *MasteryScheduler
	ledger    *XPLedger
	gate      *UnlockGate
	cfg       config.ProgressConfig
	keys      *util.KeyedMutex
	now       func() time.Time
}

func NewProgressService(store ProgressStore, content ContentReader, cfg config.ProgressConfig) *ProgressService {
	return &ProgressService{
		store:     store,
		content:   content,
		scheduler: NewMasteryScheduler(cfg.Scheduler),
		ledger:    NewXPLedger(cfg),
		gate:      NewUnlockGate(cfg.DefaultRequiredScore),
		cfg:       cfg,
		keys:      util.NewKeyedMutex(),
		now:       time.Now,
	}
}

// RecordInteraction 记录一次交互：先更新内容进度（决定是否首次完成），再结算经验，
// 最后条件写回。重放同一请求不会重复计数或重复发放经验
func (s *ProgressService) RecordInteraction(ctx context.Context, userID uint, req InteractionRequest) (*InteractionResult, error) {
	_, span := tracing.Tracer.Start(ctx, "progress.RecordInteraction")
	defer span.End()

	switch req.ContentType {
	case ContentQuestion, ContentFlashcard, ContentSection, ContentQuiz:
	default:
		return nil, fmt.Errorf("%w: unknown content type %q", util.ErrInvalidInput, req.ContentType)
	}

	key := fmt.Sprintf("%d:%s:%d", userID, req.ContentType, req.ContentID)
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	result, err := s.record(userID, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	monitoring.InteractionCounter.WithLabelValues(string(req.ContentType), status).Inc()
	if result != nil {
		monitoring.XPAwardedCounter.Add(float64(result.XPEarned))
	}

	return result, err
}

// record 分两段执行。内容进度段先写盘并固定首次完成/首次复习的判定；
// 画像段随后条件写，乐观写冲突时仅重载画像、用同一批事件重新结算，
// 已落库的内容进度不会被再次推进
func (s *ProgressService) record(userID uint, req InteractionRequest) (*InteractionResult, error) {
	now := s.now()

	profile, err := s.store.GetUserProfile(userID)
	if err != nil {
		return nil, err
	}

	var prep *preparedInteraction
	for attempt := 0; ; attempt++ {
		prep, err = s.prepare(userID, req, now)
		if !errors.Is(err, util.ErrConcurrencyConflict) || attempt >= s.cfg.ConflictRetries {
			break
		}
		s.noteConflict(userID, req, attempt)
	}
	if err != nil {
		return nil, err
	}

	var result *InteractionResult
	for attempt := 0; ; attempt++ {
		result, err = s.settle(profile, now, prep.events...)
		if !errors.Is(err, util.ErrConcurrencyConflict) || attempt >= s.cfg.ConflictRetries {
			break
		}
		s.noteConflict(userID, req, attempt)
		if profile, err = s.store.GetUserProfile(userID); err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	result.Correct = prep.correct
	result.MasteryLevel = prep.mastery
	result.NextDueAt = prep.nextDue
	result.SectionUnlockChanged = prep.unlockChanged
	return result, nil
}

func (s *ProgressService) noteConflict(userID uint, req InteractionRequest, attempt int) {
	monitoring.ConflictRetryCounter.Inc()
	logger.Log.Warn("interaction lost optimistic write, retrying",
		zap.Uint("userId", userID),
		zap.String("contentType", string(req.ContentType)),
		zap.Uint("contentId", req.ContentID),
		zap.Int("attempt", attempt+1))
}

// preparedInteraction 内容进度段的产物：待结算的账本事件与已定型的交互明细
type preparedInteraction struct {
	events        []LedgerEvent
	correct       *bool
	mastery       model.MasteryLevel
	nextDue       *time.Time
	unlockChanged bool
}

func (s *ProgressService) prepare(userID uint, req InteractionRequest, now time.Time) (*preparedInteraction, error) {
	switch req.ContentType {
	case ContentFlashcard:
		return s.prepareFlashcardReview(userID, req, now)
	case ContentQuestion:
		return s.prepareQuestionAnswer(userID, req, now)
	case ContentSection:
		return s.prepareSectionComplete(userID, req, now)
	default: // ContentQuiz，类型已在入口校验
		return s.prepareQuizComplete(), nil
	}
}

func (s *ProgressService) prepareFlashcardReview(userID uint, req InteractionRequest, now time.Time) (*preparedInteraction, error) {
	rating, err := ParseRating(req.Outcome.Rating)
	if err != nil {
		return nil, err
	}

	card, err := s.content.GetFlashcard(req.ContentID)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.GetFlashcardProgress(userID, card.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &model.FlashcardProgress{
			UserID:       userID,
			FlashcardID:  card.ID,
			MasteryLevel: model.MasteryNew,
			EaseFactor:   defaultEase,
		}
	}

	firstReview := rec.ReviewCount == 0
	wasMastered := rec.MasteryLevel == model.MasteryMastered

	updated, err := s.scheduler.Review(*rec, rating, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpsertFlashcardProgress(&updated); err != nil {
		return nil, err
	}

	return &preparedInteraction{
		events: []LedgerEvent{{
			Type:            EventFlashcardReview,
			BaseXP:          card.XP,
			Correct:         rating != RatingAgain,
			FirstCompletion: firstReview,
			CardMastered:    !wasMastered && updated.MasteryLevel == model.MasteryMastered,
		}},
		mastery: updated.MasteryLevel,
		nextDue: updated.NextDueAt,
	}, nil
}

func (s *ProgressService) prepareQuestionAnswer(userID uint, req InteractionRequest, now time.Time) (*preparedInteraction, error) {
	question, err := s.content.GetQuestion(req.ContentID)
	if err != nil {
		return nil, err
	}
	section, err := s.content.GetSection(question.SectionID)
	if err != nil {
		return nil, err
	}

	correct, err := evaluateAnswer(question, req.Outcome)
	if err != nil {
		return nil, err
	}

	sp, err := s.store.GetSectionProgress(userID, section.ID)
	if err != nil {
		return nil, err
	}
	var before *model.SectionProgress
	if sp == nil {
		total, err := s.content.CountQuestions(section.ID)
		if err != nil {
			return nil, err
		}
		sp = &model.SectionProgress{
			UserID:         userID,
			SectionID:      section.ID,
			TotalQuestions: int(total),
		}
	} else {
		snapshot := *sp
		before = &snapshot
	}

	firstAttempt := !sp.AnsweredQuestionIDs.Contains(question.ID)
	wasCompleted := sp.Completed

	if firstAttempt {
		sp.AnsweredQuestionIDs = append(sp.AnsweredQuestionIDs, question.ID)
		sp.QuestionsAnswered++
		if correct {
			sp.CorrectAnswers++
		}
		if sp.QuestionsAnswered > 0 {
			sp.Score = float64(sp.CorrectAnswers) / float64(sp.QuestionsAnswered) * 100
		}
		if sp.Score > sp.BestScore {
			sp.BestScore = sp.Score
		}
	}

	if !sp.Completed {
		completedNow, err := s.completionReached(section, sp, question.ID)
		if err != nil {
			return nil, err
		}
		if completedNow {
			sp.Completed = true
			completedAt := now
			sp.CompletedAt = &completedAt
		}
	}

	if err := s.store.UpsertSectionProgress(sp); err != nil {
		return nil, err
	}

	events := []LedgerEvent{{
		Type:            EventQuestionAnswer,
		BaseXP:          question.XP,
		Correct:         correct,
		FirstCompletion: firstAttempt,
	}}

	sectionCompletedNow := sp.Completed && !wasCompleted
	if sectionCompletedNow {
		events = append(events, LedgerEvent{
			Type:            EventSectionComplete,
			BaseXP:          section.CompletionXP,
			Correct:         true,
			FirstCompletion: true,
		})
	}

	prep := &preparedInteraction{events: events, correct: &correct}
	if firstAttempt || sectionCompletedNow {
		prep.unlockChanged, err = s.unlockFlipped(userID, section, before)
		if err != nil {
			return nil, err
		}
	}
	return prep, nil
}

func (s *ProgressService) prepareSectionComplete(userID uint, req InteractionRequest, now time.Time) (*preparedInteraction, error) {
	section, err := s.content.GetSection(req.ContentID)
	if err != nil {
		return nil, err
	}

	sp, err := s.store.GetSectionProgress(userID, section.ID)
	if err != nil {
		return nil, err
	}
	var before *model.SectionProgress
	if sp == nil {
		total, err := s.content.CountQuestions(section.ID)
		if err != nil {
			return nil, err
		}
		sp = &model.SectionProgress{
			UserID:         userID,
			SectionID:      section.ID,
			TotalQuestions: int(total),
		}
	} else {
		snapshot := *sp
		before = &snapshot
	}

	// 要求全部答题的小节不接受显式完成请求绕过
	if section.RequireCompletion && sp.QuestionsAnswered < sp.TotalQuestions {
		return nil, fmt.Errorf("%w: section %d requires all %d questions answered",
			util.ErrInvalidInput, section.ID, sp.TotalQuestions)
	}

	firstCompletion := !sp.Completed
	if firstCompletion {
		sp.Completed = true
		completedAt := now
		sp.CompletedAt = &completedAt
		if err := s.store.UpsertSectionProgress(sp); err != nil {
			return nil, err
		}
	}

	prep := &preparedInteraction{events: []LedgerEvent{{
		Type:            EventSectionComplete,
		BaseXP:          section.CompletionXP,
		Correct:         true,
		FirstCompletion: firstCompletion,
	}}}
	if firstCompletion {
		prep.unlockChanged, err = s.unlockFlipped(userID, section, before)
		if err != nil {
			return nil, err
		}
	}
	return prep, nil
}

func (s *ProgressService) prepareQuizComplete() *preparedInteraction {
	// 随机测验即开即答，无持久内容项；经验为每日加成，账本按日历日去重
	return &preparedInteraction{events: []LedgerEvent{{
		Type:            EventQuizComplete,
		BaseXP:          s.cfg.DailyQuizBonusXP,
		Correct:         true,
		FirstCompletion: true,
	}}}
}

// settle 按序结算事件并条件写回画像
func (s *ProgressService) settle(profile *model.UserProfile, now time.Time, events ...LedgerEvent) (*InteractionResult, error) {
	updated := *profile
	result := &InteractionResult{NewAchievements: []string{}}

	for _, ev := range events {
		ledgerResult, err := s.ledger.ApplyEvent(updated, ev, now)
		if err != nil {
			return nil, err
		}
		updated = ledgerResult.Profile
		result.XPEarned += ledgerResult.XPGained
		result.NewAchievements = append(result.NewAchievements, ledgerResult.NewAchievements...)
		if ledgerResult.LeveledUp {
			result.LeveledUp = true
			newLevel := ledgerResult.NewLevel
			result.NewLevel = &newLevel
		}
	}

	if err := s.store.UpsertUserProfile(&updated); err != nil {
		return nil, err
	}
	return result, nil
}

// completionReached 小节完成条件：requireCompletion要求全部题目作答，
// 否则提交末题即视为完成
func (s *ProgressService) completionReached(section *model.Section, sp *model.SectionProgress, questionID uint) (bool, error) {
	if section.RequireCompletion {
		return sp.TotalQuestions > 0 && sp.QuestionsAnswered >= sp.TotalQuestions, nil
	}
	lastID, err := s.content.GetLastQuestionID(section.ID)
	if err != nil {
		return false, err
	}
	return questionID == lastID, nil
}

// unlockFlipped 本次小节进度写入是否把后继兄弟小节由锁定翻为解锁。
// before为写入前的进度快照（惰性创建时为nil），用它代回即得前置状态
func (s *ProgressService) unlockFlipped(userID uint, section *model.Section, before *model.SectionProgress) (bool, error) {
	siblings, err := s.content.GetSectionsByTopic(section.TopicID)
	if err != nil {
		return false, err
	}
	idx := -1
	for i := range siblings {
		if siblings[i].ID == section.ID {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(siblings) {
		return false, nil
	}

	progress, err := s.store.GetSectionProgressByTopic(userID, section.TopicID)
	if err != nil {
		return false, err
	}

	nowUnlocked, err := s.gate.IsUnlocked(siblings, idx+1, progress)
	if err != nil {
		return false, err
	}

	if before == nil {
		delete(progress, section.ID)
	} else {
		progress[section.ID] = before
	}
	wasUnlocked, err := s.gate.IsUnlocked(siblings, idx+1, progress)
	if err != nil {
		return false, err
	}

	return !wasUnlocked && nowUnlocked, nil
}

// evaluateAnswer 按题型穷举判定正确性，库中出现未知题型视为损坏状态
func evaluateAnswer(q *model.Question, out Outcome) (bool, error) {
	switch q.Type {
	case model.MultipleChoice, model.TrueFalse:
		return strings.TrimSpace(out.Answer) == q.CorrectAnswer, nil
	case model.FillInBlank:
		return strings.EqualFold(strings.TrimSpace(out.Answer), strings.TrimSpace(q.CorrectAnswer)), nil
	case model.Numerical:
		if out.Value == nil {
			return false, fmt.Errorf("%w: numerical question requires a value", util.ErrInvalidInput)
		}
		diff := *out.Value - q.NumericAnswer
		if diff < 0 {
			diff = -diff
		}
		return diff <= q.Tolerance, nil
	case model.Matching:
		return matchPairs(q.Pairs, out.Matches), nil
	default:
		return false, fmt.Errorf("%w: question %d has unknown type %q", util.ErrCorruptState, q.ID, q.Type)
	}
}

func matchPairs(expected []model.MatchingPair, submitted []model.MatchingPair) bool {
	if len(submitted) != len(expected) {
		return false
	}
	canonical := make(map[string]string, len(expected))
	for _, p := range expected {
		canonical[p.Left] = p.Right
	}
	seen := make(map[string]bool, len(submitted))
	for _, p := range submitted {
		if seen[p.Left] {
			return false
		}
		seen[p.Left] = true
		if canonical[p.Left] != p.Right {
			return false
		}
	}
	return true
}
