package service

import (
	"learnquest_backend/internal/config"
	"learnquest_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProgressConfig() config.ProgressConfig {
	return config.ProgressConfig{
		LevelThresholds:      []int{0, 100, 250, 500},
		RepeatXPFactor:       0,
		DefaultRequiredScore: 70,
		DailyQuizBonusXP:     30,
		ConflictRetries:      3,
		Scheduler:            testSchedulerConfig(),
	}
}

var ledgerNow = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func TestXPLedgerLevelProgression(t *testing.T) {
	l := NewXPLedger(testProgressConfig())

	// 50经验不升级
	res, err := l.ApplyEvent(model.UserProfile{TotalXP: 50}, LedgerEvent{
		Type: EventQuestionAnswer, BaseXP: 20, Correct: true, FirstCompletion: true,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 70, res.Profile.TotalXP)
	assert.False(t, res.LeveledUp)
	assert.Equal(t, 0, res.NewLevel)

	// 跨过100阈值升到1级
	res, err = l.ApplyEvent(res.Profile, LedgerEvent{
		Type: EventQuestionAnswer, BaseXP: 40, Correct: true, FirstCompletion: true,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 110, res.Profile.TotalXP)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 1, res.Profile.Level)
}

func TestXPLedgerLevelForXP(t *testing.T) {
	l := NewXPLedger(testProgressConfig())

	cases := []struct{ xp, level, next int }{
		{0, 0, 100},
		{99, 0, 100},
		{100, 1, 250},
		{110, 1, 250},
		{499, 2, 500},
		{500, 3, 500}, // 满级时NextLevelXP返回当前经验
		{9999, 3, 9999},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, l.LevelForXP(tc.xp), "xp=%d", tc.xp)
		assert.Equal(t, tc.next, l.NextLevelXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestXPLedgerRepeatDiscount(t *testing.T) {
	cfg := testProgressConfig()
	cfg.RepeatXPFactor = 0.5
	l := NewXPLedger(cfg)

	res, err := l.ApplyEvent(model.UserProfile{}, LedgerEvent{
		Type: EventQuestionAnswer, BaseXP: 11, Correct: true, FirstCompletion: false,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 5, res.XPGained) // floor(11 * 0.5)

	// 折扣系数0时重复提交不给经验
	l = NewXPLedger(testProgressConfig())
	res, err = l.ApplyEvent(model.UserProfile{}, LedgerEvent{
		Type: EventQuestionAnswer, BaseXP: 11, Correct: true, FirstCompletion: false,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 0, res.XPGained)
}

func TestXPLedgerIncorrectAnswerEarnsNothing(t *testing.T) {
	l := NewXPLedger(testProgressConfig())

	res, err := l.ApplyEvent(model.UserProfile{}, LedgerEvent{
		Type: EventQuestionAnswer, BaseXP: 10, Correct: false, FirstCompletion: true,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 0, res.XPGained)
	// 答错也算一次有效活动
	assert.Equal(t, 1, res.Profile.CurrentStreak)
	assert.Equal(t, 1, res.Profile.QuestionsAnswered)
}

func TestXPLedgerDailyQuizBonusOncePerDay(t *testing.T) {
	l := NewXPLedger(testProgressConfig())

	res, err := l.ApplyEvent(model.UserProfile{}, LedgerEvent{Type: EventQuizComplete, BaseXP: 30}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 30, res.XPGained)

	// 当日重复：不再发放
	res2, err := l.ApplyEvent(res.Profile, LedgerEvent{Type: EventQuizComplete, BaseXP: 30}, ledgerNow.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res2.XPGained)
	assert.Equal(t, 30, res2.Profile.TotalXP)

	// 次日恢复发放
	res3, err := l.ApplyEvent(res2.Profile, LedgerEvent{Type: EventQuizComplete, BaseXP: 30}, ledgerNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 30, res3.XPGained)
}

func TestXPLedgerStreaks(t *testing.T) {
	l := NewXPLedger(testProgressConfig())
	ev := LedgerEvent{Type: EventFlashcardReview, BaseXP: 5, Correct: true, FirstCompletion: true}

	// 第一次活动：双连续天数归1
	res, err := l.ApplyEvent(model.UserProfile{}, ev, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profile.CurrentStreak)
	assert.Equal(t, 1, res.Profile.LearningStreak)
	assert.Equal(t, 1, res.Profile.MaxStreak)

	// 同日再来：不变
	res, err = l.ApplyEvent(res.Profile, ev, ledgerNow.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profile.CurrentStreak)

	// 次日：加一
	res, err = l.ApplyEvent(res.Profile, ev, ledgerNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Profile.CurrentStreak)
	assert.Equal(t, 2, res.Profile.LearningStreak)
	assert.Equal(t, 2, res.Profile.MaxStreak)

	// 断档三天：归1，最长纪录保留
	res, err = l.ApplyEvent(res.Profile, ev, ledgerNow.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profile.CurrentStreak)
	assert.Equal(t, 2, res.Profile.MaxStreak)
}

func TestXPLedgerLearningStreakIgnoresQuestionEvents(t *testing.T) {
	l := NewXPLedger(testProgressConfig())

	// 答题推进活动连续天数但不推进学习连续天数
	res, err := l.ApplyEvent(model.UserProfile{}, LedgerEvent{
		Type: EventQuestionAnswer, BaseXP: 10, Correct: true, FirstCompletion: true,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profile.CurrentStreak)
	assert.Equal(t, 0, res.Profile.LearningStreak)
	assert.Nil(t, res.Profile.LastLearningAt)

	// 小节完成推进学习连续天数
	res, err = l.ApplyEvent(res.Profile, LedgerEvent{
		Type: EventSectionComplete, BaseXP: 20, Correct: true, FirstCompletion: true,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profile.LearningStreak)
}

func TestXPLedgerAchievementsIdempotent(t *testing.T) {
	l := NewXPLedger(testProgressConfig())

	res, err := l.ApplyEvent(model.UserProfile{}, LedgerEvent{
		Type: EventQuestionAnswer, BaseXP: 10, Correct: true, FirstCompletion: true,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Contains(t, res.NewAchievements, "first_steps")

	// 同一成就不会二次授予
	res2, err := l.ApplyEvent(res.Profile, LedgerEvent{
		Type: EventQuestionAnswer, BaseXP: 10, Correct: true, FirstCompletion: true,
	}, ledgerNow)
	require.NoError(t, err)
	assert.NotContains(t, res2.NewAchievements, "first_steps")
	assert.Equal(t, 1, countOf(res2.Profile.Achievements, "first_steps"))
}

func TestXPLedgerXPAchievement(t *testing.T) {
	l := NewXPLedger(testProgressConfig())

	res, err := l.ApplyEvent(model.UserProfile{TotalXP: 995}, LedgerEvent{
		Type: EventQuestionAnswer, BaseXP: 10, Correct: true, FirstCompletion: true,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Contains(t, res.NewAchievements, "xp_1000")
}

func TestXPLedgerMasteredCardCount(t *testing.T) {
	l := NewXPLedger(testProgressConfig())

	profile := model.UserProfile{FlashcardsMastered: 9}
	res, err := l.ApplyEvent(profile, LedgerEvent{
		Type: EventFlashcardReview, BaseXP: 5, Correct: true, FirstCompletion: false, CardMastered: true,
	}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Profile.FlashcardsMastered)
	assert.Contains(t, res.NewAchievements, "cards_10")
}

func TestXPLedgerRejectsCorruptProfile(t *testing.T) {
	l := NewXPLedger(testProgressConfig())
	ev := LedgerEvent{Type: EventQuestionAnswer, BaseXP: 10, Correct: true}

	_, err := l.ApplyEvent(model.UserProfile{TotalXP: -1}, ev, ledgerNow)
	assert.Error(t, err)

	_, err = l.ApplyEvent(model.UserProfile{CurrentStreak: 5, MaxStreak: 2}, ev, ledgerNow)
	assert.Error(t, err)
}

func TestXPLedgerRejectsBadEvent(t *testing.T) {
	l := NewXPLedger(testProgressConfig())

	_, err := l.ApplyEvent(model.UserProfile{}, LedgerEvent{Type: "coffee_break", BaseXP: 10}, ledgerNow)
	assert.Error(t, err)

	_, err = l.ApplyEvent(model.UserProfile{}, LedgerEvent{Type: EventQuestionAnswer, BaseXP: -5}, ledgerNow)
	assert.Error(t, err)
}

func countOf(list model.StringList, code string) int {
	n := 0
	for _, c := range list {
		if c == code {
			n++
		}
	}
	return n
}
