package service

import (
	"context"
	"fmt"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/repository"
	"learnquest_backend/internal/util"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// ProfileOverview 用户进度画像的只读汇总
type ProfileOverview struct {
	User        *model.User        `json:"user"`
	Profile     *model.UserProfile `json:"profile"`
	Level       int                `json:"level"`
	NextLevelXP int                `json:"nextLevelXp"` // 到下一级还差多少经验，已满级为0
}

type UserService struct {
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
	Ledger       *XPLedger
	Storage      *StorageService
}

func NewUserService(userRepo *repository.UserRepository, progressRepo *repository.ProgressRepository, ledger *XPLedger, storage *StorageService) *UserService {
	return &UserService{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
		Ledger:       ledger,
		Storage:      storage,
	}
}

func (s *UserService) GetOverview(userID uint) (*ProfileOverview, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	profile, err := s.ProgressRepo.GetUserProfile(userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOverview{
		User:        user,
		Profile:     profile,
		Level:       s.Ledger.LevelForXP(profile.TotalXP),
		NextLevelXP: s.Ledger.NextLevelXP(profile.TotalXP),
	}, nil
}

// UpdateProfile 只允许修改展示类字段
func (s *UserService) UpdateProfile(userID uint, name, language string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if name != "" {
		if len(name) > 100 {
			return nil, fmt.Errorf("%w: 昵称过长", util.ErrInvalidInput)
		}
		user.Name = name
	}
	if language != "" {
		user.Language = language
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UploadAvatar(ctx context.Context, userID uint, fileHeader *multipart.FileHeader) (string, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", util.ErrUserNotFound
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	objectName := fmt.Sprintf("avatars/%d%s", userID, ext)

	url, err := s.Storage.Upload(ctx, objectName, file, fileHeader.Size, mimeType)
	if err != nil {
		return "", err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}
