package service

import (
	"learnquest_backend/internal/config"
	"learnquest_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		AgainDelayMinutes: 1,
		HardDelayMinutes:  10,
		EasyBonus:         1.3,
		MinEaseFactor:     1.3,
		MaxIntervalDays:   365,
	}
}

func TestMasterySchedulerReview(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		rec          model.FlashcardProgress
		rating       Rating
		wantMastery  model.MasteryLevel
		wantInterval int
		wantEase     float64
	}{
		{
			name:         "good promotes new to learning with one day interval",
			rec:          model.FlashcardProgress{MasteryLevel: model.MasteryNew, EaseFactor: 2.5},
			rating:       RatingGood,
			wantMastery:  model.MasteryLearning,
			wantInterval: 1440,
			wantEase:     2.5,
		},
		{
			name:         "good grows interval by ease factor",
			rec:          model.FlashcardProgress{MasteryLevel: model.MasteryLearning, EaseFactor: 2.5, IntervalMins: 1440},
			rating:       RatingGood,
			wantMastery:  model.MasteryFamiliar,
			wantInterval: 3600, // 1440 * 2.5
			wantEase:     2.5,
		},
		{
			name:         "easy jumps two ranks with bonus interval",
			rec:          model.FlashcardProgress{MasteryLevel: model.MasteryLearning, EaseFactor: 2.5},
			rating:       RatingEasy,
			wantMastery:  model.MasteryMastered,
			wantInterval: 1872, // max(0*2.5, 1440) * 1.3
			wantEase:     2.65,
		},
		{
			name:         "again demotes to learning and shrinks ease",
			rec:          model.FlashcardProgress{MasteryLevel: model.MasteryMastered, EaseFactor: 2.5, IntervalMins: 10000},
			rating:       RatingAgain,
			wantMastery:  model.MasteryLearning,
			wantInterval: 1,
			wantEase:     2.3,
		},
		{
			name:         "hard caps mastery at learning",
			rec:          model.FlashcardProgress{MasteryLevel: model.MasteryFamiliar, EaseFactor: 2.0, IntervalMins: 2000},
			rating:       RatingHard,
			wantMastery:  model.MasteryLearning,
			wantInterval: 10,
			wantEase:     1.85,
		},
		{
			name:         "hard does not promote a new card",
			rec:          model.FlashcardProgress{MasteryLevel: model.MasteryNew, EaseFactor: 2.5},
			rating:       RatingHard,
			wantMastery:  model.MasteryNew,
			wantInterval: 10,
			wantEase:     2.35,
		},
		{
			name:         "ease factor never drops below floor",
			rec:          model.FlashcardProgress{MasteryLevel: model.MasteryLearning, EaseFactor: 1.3},
			rating:       RatingAgain,
			wantMastery:  model.MasteryLearning,
			wantInterval: 1,
			wantEase:     1.3,
		},
		{
			name:         "mastered stays mastered on good",
			rec:          model.FlashcardProgress{MasteryLevel: model.MasteryMastered, EaseFactor: 2.5, IntervalMins: 1440},
			rating:       RatingGood,
			wantMastery:  model.MasteryMastered,
			wantInterval: 3600,
			wantEase:     2.5,
		},
	}

	s := NewMasteryScheduler(testSchedulerConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prevCount := tt.rec.ReviewCount
			got, err := s.Review(tt.rec, tt.rating, now)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMastery, got.MasteryLevel)
			assert.Equal(t, tt.wantInterval, got.IntervalMins)
			assert.InDelta(t, tt.wantEase, got.EaseFactor, 1e-9)
			assert.Equal(t, prevCount+1, got.ReviewCount)

			require.NotNil(t, got.LastReviewedAt)
			require.NotNil(t, got.NextDueAt)
			assert.Equal(t, now, *got.LastReviewedAt)
			assert.True(t, got.NextDueAt.After(*got.LastReviewedAt), "next due must be strictly after last review")
		})
	}
}

func TestMasterySchedulerRejectsUnknownRating(t *testing.T) {
	s := NewMasteryScheduler(testSchedulerConfig())
	_, err := s.Review(model.FlashcardProgress{}, Rating("brilliant"), time.Now())
	assert.Error(t, err)
}

func TestMasterySchedulerCapsInterval(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.MaxIntervalDays = 30
	s := NewMasteryScheduler(cfg)

	rec := model.FlashcardProgress{
		MasteryLevel: model.MasteryFamiliar,
		EaseFactor:   2.5,
		IntervalMins: 100000,
	}
	got, err := s.Review(rec, RatingGood, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 30*1440, got.IntervalMins)
}

func TestMasterySchedulerRepeatedAgainNeverExceedsLearning(t *testing.T) {
	s := NewMasteryScheduler(testSchedulerConfig())
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	rec := model.FlashcardProgress{MasteryLevel: model.MasteryMastered, EaseFactor: 2.5, IntervalMins: 5000}
	for i := 0; i < 5; i++ {
		var err error
		rec, err = s.Review(rec, RatingAgain, now.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		assert.LessOrEqual(t, rec.MasteryLevel.Rank(), model.MasteryLearning.Rank())
	}
	assert.Equal(t, 5, rec.ReviewCount)
	assert.InDelta(t, 1.3, rec.EaseFactor, 1e-9) // floored after repeated penalties
}

func TestMasterySchedulerDefaultsZeroEase(t *testing.T) {
	s := NewMasteryScheduler(testSchedulerConfig())
	got, err := s.Review(model.FlashcardProgress{IntervalMins: 1440}, RatingGood, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3600, got.IntervalMins) // defaulted ease 2.5 applied
}

func TestParseRating(t *testing.T) {
	for _, raw := range []string{"again", "hard", "good", "easy"} {
		r, err := ParseRating(raw)
		require.NoError(t, err)
		assert.Equal(t, Rating(raw), r)
	}

	_, err := ParseRating("meh")
	assert.Error(t, err)
	_, err = ParseRating("")
	assert.Error(t, err)
}
