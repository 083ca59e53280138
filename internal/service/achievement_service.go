package service

import (
	"context"
	"encoding/json"
	"learnquest_backend/internal/config"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/repository"
	"time"

	"github.com/go-redis/redis/v8"
)

const leaderboardCacheKey = "leaderboard:xp"
const leaderboardCacheTTL = time.Minute

type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	ProgressRepo    *repository.ProgressRepository
	UserRepo        *repository.UserRepository
	Redis           *redis.Client
	ledger          *XPLedger
}

func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
	cfg config.ProgressConfig,
) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		ProgressRepo:    progressRepo,
		UserRepo:        userRepo,
		Redis:           rdb,
		ledger:          NewXPLedger(cfg),
	}
}

type UserAchievements struct {
	TotalXP        int                 `json:"totalXp"`
	CurrentLevel   int                 `json:"currentLevel"`
	NextLevelXP    int                 `json:"nextLevelXp"`
	CurrentStreak  int                 `json:"currentStreak"`
	MaxStreak      int                 `json:"maxStreak"`
	LearningStreak int                 `json:"learningStreak"`
	Badges         []model.Achievement `json:"badges"`
	Leaderboard    []LeaderboardEntry  `json:"leaderboard"`
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	User   string `json:"user"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Avatar string `json:"avatar,omitempty"`
}

// GetUserAchievements 用户成就页聚合：画像、徽章、排行榜
func (s *AchievementService) GetUserAchievements(userID uint) (*UserAchievements, error) {
	profile, err := s.ProgressRepo.GetUserProfile(userID)
	if err != nil {
		return nil, err
	}

	badges, err := s.AchievementRepo.FindByCodes(profile.Achievements)
	if err != nil {
		return nil, err
	}

	leaderboard, err := s.GetLeaderboard(10)
	if err != nil {
		return nil, err
	}

	return &UserAchievements{
		TotalXP:        profile.TotalXP,
		CurrentLevel:   s.ledger.LevelForXP(profile.TotalXP),
		NextLevelXP:    s.ledger.NextLevelXP(profile.TotalXP),
		CurrentStreak:  profile.CurrentStreak,
		MaxStreak:      profile.MaxStreak,
		LearningStreak: profile.LearningStreak,
		Badges:         badges,
		Leaderboard:    leaderboard,
	}, nil
}

// GetLeaderboard 按总经验排行，结果在Redis缓存一分钟
func (s *AchievementService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	ctx := context.Background()

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil && len(entries) >= limit {
				return entries[:limit], nil
			}
		}
	}

	profiles, err := s.ProgressRepo.FindTopProfiles(limit)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, len(profiles))
	for i, p := range profiles {
		userIDs[i] = p.UserID
	}
	users, err := s.UserRepo.FindByIDs(userIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]model.User, len(users))
	for _, u := range users {
		names[u.ID] = u
	}

	entries := make([]LeaderboardEntry, len(profiles))
	for i, p := range profiles {
		entry := LeaderboardEntry{
			Rank:  i + 1,
			XP:    p.TotalXP,
			Level: s.ledger.LevelForXP(p.TotalXP),
		}
		if u, ok := names[p.UserID]; ok {
			entry.User = u.Name
			entry.Avatar = u.Avatar
		}
		entries[i] = entry
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(entries); err == nil {
			s.Redis.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL)
		}
	}

	return entries, nil
}

// ListDefinitions 成就目录
func (s *AchievementService) ListDefinitions() ([]model.Achievement, error) {
	return s.AchievementRepo.ListAll()
}
