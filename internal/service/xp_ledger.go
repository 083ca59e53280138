package service

import (
	"fmt"
	"learnquest_backend/internal/config"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/util"
	"math"
	"time"
)

// EventType 经验账本可处理的交互事件，封闭集合
type EventType string

const (
	EventQuestionAnswer  EventType = "question_answer"
	EventFlashcardReview EventType = "flashcard_review"
	EventSectionComplete EventType = "section_complete"
	EventQuizComplete    EventType = "quiz_complete"
)

// LedgerEvent 一次已发生交互的结算输入
// FirstCompletion由协调器在内容进度更新之后判定，账本自身不读存储
type LedgerEvent struct {
	Type            EventType
	BaseXP          int
	Correct         bool // 题目/卡片事件的正确性信号
	FirstCompletion bool // 是否该内容项的首次完成
	CardMastered    bool // 本次复习是否使卡片进入Mastered
}

// LedgerResult 结算输出，Profile为更新后的副本
type LedgerResult struct {
	Profile         model.UserProfile
	XPGained        int
	LeveledUp       bool
	NewLevel        int
	NewAchievements []string
}

// achievementRule 固定成就规则，判定须幂等：对同一画像求值两次不会重复授予
type achievementRule struct {
	code      string
	satisfied func(p *model.UserProfile) bool
}

var achievementRules = []achievementRule{
	{"first_steps", func(p *model.UserProfile) bool { return p.QuestionsAnswered >= 1 }},
	{"level_5", func(p *model.UserProfile) bool { return p.Level >= 5 }},
	{"level_10", func(p *model.UserProfile) bool { return p.Level >= 10 }},
	{"streak_7", func(p *model.UserProfile) bool { return p.MaxStreak >= 7 }},
	{"streak_30", func(p *model.UserProfile) bool { return p.MaxStreak >= 30 }},
	{"cards_10", func(p *model.UserProfile) bool { return p.FlashcardsMastered >= 10 }},
	{"cards_100", func(p *model.UserProfile) bool { return p.FlashcardsMastered >= 100 }},
	{"sections_10", func(p *model.UserProfile) bool { return p.SectionsCompleted >= 10 }},
	{"xp_1000", func(p *model.UserProfile) bool { return p.TotalXP >= 1000 }},
}

// XPLedger 把交互事件折算为经验、等级、连续天数与成就变化
// 纯函数式：时钟由调用方注入，画像以值传递
type XPLedger struct {
	cfg config.ProgressConfig
}

func NewXPLedger(cfg config.ProgressConfig) *XPLedger {
	return &XPLedger{cfg: cfg}
}

// ApplyEvent 结算一次交互。TotalXP只增不减，level始终等于LevelForXP(TotalXP)
func (l *XPLedger) ApplyEvent(profile model.UserProfile, ev LedgerEvent, now time.Time) (LedgerResult, error) {
	if err := l.checkProfile(&profile); err != nil {
		return LedgerResult{}, err
	}
	if ev.BaseXP < 0 {
		return LedgerResult{}, fmt.Errorf("%w: negative base XP", util.ErrInvalidInput)
	}

	oldLevel := l.LevelForXP(profile.TotalXP)

	var xp int
	switch ev.Type {
	case EventQuestionAnswer:
		if ev.Correct {
			xp = l.award(ev)
		}
		if ev.FirstCompletion {
			profile.QuestionsAnswered++
		}
	case EventFlashcardReview:
		if ev.Correct {
			xp = l.award(ev)
		}
		if ev.CardMastered {
			profile.FlashcardsMastered++
		}
	case EventSectionComplete:
		xp = l.award(ev)
		if ev.FirstCompletion {
			profile.SectionsCompleted++
		}
	case EventQuizComplete:
		// 每日加成：以画像上的日期标记判定，每个日历日至多发放一次
		if profile.LastDailyBonusAt == nil || !util.SameDay(*profile.LastDailyBonusAt, now) {
			xp = ev.BaseXP
			bonusAt := now
			profile.LastDailyBonusAt = &bonusAt
		}
	default:
		return LedgerResult{}, fmt.Errorf("%w: unknown event type %q", util.ErrInvalidInput, ev.Type)
	}

	profile.TotalXP += xp

	l.bumpStreaks(&profile, ev, now)

	newLevel := l.LevelForXP(profile.TotalXP)
	profile.Level = newLevel

	newAchievements := l.evaluateAchievements(&profile)

	return LedgerResult{
		Profile:         profile,
		XPGained:        xp,
		LeveledUp:       newLevel > oldLevel,
		NewLevel:        newLevel,
		NewAchievements: newAchievements,
	}, nil
}

// award 首次完成发全额，重复提交按折扣系数发放，防止刷分
func (l *XPLedger) award(ev LedgerEvent) int {
	if ev.FirstCompletion {
		return ev.BaseXP
	}
	return int(math.Floor(float64(ev.BaseXP) * l.cfg.RepeatXPFactor))
}

// bumpStreaks 任何有效交互推进活动连续天数；仅学习型事件（卡片复习、小节完成）
// 推进学习连续天数。前一日→加一，同日→不变，断档→归一
func (l *XPLedger) bumpStreaks(p *model.UserProfile, ev LedgerEvent, now time.Time) {
	p.CurrentStreak = nextStreak(p.LastActivityAt, p.CurrentStreak, now)
	at := now
	p.LastActivityAt = &at

	if ev.Type == EventFlashcardReview || ev.Type == EventSectionComplete {
		p.LearningStreak = nextStreak(p.LastLearningAt, p.LearningStreak, now)
		learnedAt := now
		p.LastLearningAt = &learnedAt
	}

	if p.CurrentStreak > p.MaxStreak {
		p.MaxStreak = p.CurrentStreak
	}
}

func nextStreak(last *time.Time, current int, now time.Time) int {
	switch {
	case last == nil:
		return 1
	case util.SameDay(*last, now):
		if current < 1 {
			return 1
		}
		return current
	case util.IsYesterday(*last, now):
		return current + 1
	default:
		return 1
	}
}

// LevelForXP 等级阶梯函数：满足 xp >= thresholds[i] 的最大下标
func (l *XPLedger) LevelForXP(xp int) int {
	level := 0
	for i, threshold := range l.cfg.LevelThresholds {
		if xp >= threshold {
			level = i
		}
	}
	return level
}

// NextLevelXP 距下一级还需的阈值，已满级时返回当前经验
func (l *XPLedger) NextLevelXP(xp int) int {
	for _, threshold := range l.cfg.LevelThresholds {
		if xp < threshold {
			return threshold
		}
	}
	return xp
}

func (l *XPLedger) evaluateAchievements(p *model.UserProfile) []string {
	var earned []string
	for _, rule := range achievementRules {
		if p.HasAchievement(rule.code) {
			continue
		}
		if rule.satisfied(p) {
			p.Achievements = append(p.Achievements, rule.code)
			earned = append(earned, rule.code)
		}
	}
	return earned
}

// checkProfile 画像自身违反不变量属于损坏状态，拒绝结算而不是悄悄修正
func (l *XPLedger) checkProfile(p *model.UserProfile) error {
	if p.TotalXP < 0 || p.CurrentStreak < 0 || p.MaxStreak < 0 || p.LearningStreak < 0 ||
		p.QuestionsAnswered < 0 || p.SectionsCompleted < 0 || p.FlashcardsMastered < 0 {
		return fmt.Errorf("%w: user %d profile has negative counters", util.ErrCorruptState, p.UserID)
	}
	if p.MaxStreak < p.CurrentStreak {
		return fmt.Errorf("%w: user %d maxStreak below currentStreak", util.ErrCorruptState, p.UserID)
	}
	return nil
}
