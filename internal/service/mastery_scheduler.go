package service

import (
	"fmt"
	"learnquest_backend/internal/config"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/util"
	"time"
)

// Rating 一次卡片复习的回忆质量
type Rating string

const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// 难度因子的单次调整量，参考SM-2的质量惩罚幅度
const (
	easePenaltyAgain = 0.20
	easePenaltyHard  = 0.15
	easeBonusEasy    = 0.15
	defaultEase      = 2.5
)

const minutesPerDay = 24 * 60

// MasteryScheduler 计算单次复习后的记忆分级与下次到期时间
// 纯状态转移，无I/O，入参记录不被修改
type MasteryScheduler struct {
	cfg config.SchedulerConfig
}

func NewMasteryScheduler(cfg config.SchedulerConfig) *MasteryScheduler {
	return &MasteryScheduler{cfg: cfg}
}

// Review 根据评分推进一条卡片进度记录
// 任何评分都使ReviewCount加一，且NextDueAt严格晚于LastReviewedAt
func (s *MasteryScheduler) Review(rec model.FlashcardProgress, rating Rating, now time.Time) (model.FlashcardProgress, error) {
	if rec.EaseFactor <= 0 {
		rec.EaseFactor = defaultEase
	}

	prevInterval := rec.IntervalMins
	var interval int

	switch rating {
	case RatingAgain:
		// 回忆失败：分级退回Learning，短间隔重见，放缓后续增长
		rec.MasteryLevel = model.MasteryLearning
		rec.EaseFactor = s.clampEase(rec.EaseFactor - easePenaltyAgain)
		interval = s.cfg.AgainDelayMinutes
	case RatingHard:
		// 勉强想起：不高于Learning，间隔保持在一天内
		if rec.MasteryLevel.Rank() > model.MasteryLearning.Rank() {
			rec.MasteryLevel = model.MasteryLearning
		}
		rec.EaseFactor = s.clampEase(rec.EaseFactor - easePenaltyHard)
		interval = s.cfg.HardDelayMinutes
	case RatingGood:
		// 顺利想起：分级推进一档，间隔按难度因子增长，首次至少一天
		rec.MasteryLevel = model.MasteryForRank(rec.MasteryLevel.Rank() + 1)
		interval = s.grow(prevInterval, rec.EaseFactor)
	case RatingEasy:
		// 轻松想起：至少推进一档（Learning可直达Mastered），间隔额外加成
		rec.MasteryLevel = model.MasteryForRank(rec.MasteryLevel.Rank() + 2)
		interval = int(float64(s.grow(prevInterval, rec.EaseFactor)) * s.cfg.EasyBonus)
		rec.EaseFactor = rec.EaseFactor + easeBonusEasy
	default:
		return rec, fmt.Errorf("%w: unknown rating %q", util.ErrInvalidInput, rating)
	}

	if maxMins := s.cfg.MaxIntervalDays * minutesPerDay; maxMins > 0 && interval > maxMins {
		interval = maxMins
	}
	if interval < 1 {
		interval = 1
	}

	rec.IntervalMins = interval
	rec.ReviewCount++
	reviewedAt := now
	dueAt := now.Add(time.Duration(interval) * time.Minute)
	rec.LastReviewedAt = &reviewedAt
	rec.NextDueAt = &dueAt

	return rec, nil
}

// grow 成功回忆后的间隔：上次间隔乘以难度因子，但不少于一天
func (s *MasteryScheduler) grow(prevInterval int, ease float64) int {
	next := int(float64(prevInterval) * ease)
	if next < minutesPerDay {
		next = minutesPerDay
	}
	return next
}

func (s *MasteryScheduler) clampEase(ease float64) float64 {
	if ease < s.cfg.MinEaseFactor {
		return s.cfg.MinEaseFactor
	}
	return ease
}

// ParseRating 校验客户端提交的评分字符串，非法值是契约违规而不是可恢复错误
func ParseRating(raw string) (Rating, error) {
	switch Rating(raw) {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return Rating(raw), nil
	}
	return "", fmt.Errorf("%w: rating must be one of again/hard/good/easy, got %q", util.ErrInvalidInput, raw)
}
