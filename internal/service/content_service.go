package service

import (
	"context"
	"fmt"
	"io"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/repository"
	"learnquest_backend/internal/util"
	"learnquest_backend/pkg/logger"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContentService 负责学科/主题/小节/题目/闪卡的管理端维护
type ContentService struct {
	Content *repository.ContentRepository
	Media   *repository.MediaRepository
	Storage *StorageService
}

func NewContentService(content *repository.ContentRepository, media *repository.MediaRepository, storage *StorageService) *ContentService {
	return &ContentService{Content: content, Media: media, Storage: storage}
}

// ---- 学科 ----

func (s *ContentService) ListSubjects(publishedOnly bool) ([]model.Subject, error) {
	return s.Content.ListSubjects(publishedOnly)
}

func (s *ContentService) GetSubject(id uint) (*model.Subject, error) {
	return s.Content.GetSubject(id)
}

func (s *ContentService) CreateSubject(subject *model.Subject) error {
	if strings.TrimSpace(subject.Title) == "" {
		return fmt.Errorf("%w: 学科标题不能为空", util.ErrInvalidInput)
	}
	return s.Content.CreateSubject(subject)
}

func (s *ContentService) UpdateSubject(subject *model.Subject) error {
	if _, err := s.Content.GetSubject(subject.ID); err != nil {
		return err
	}
	return s.Content.UpdateSubject(subject)
}

func (s *ContentService) DeleteSubject(id uint) error {
	return s.Content.DeleteSubject(id)
}

// ---- 主题 ----

func (s *ContentService) GetTopic(id uint) (*model.Topic, error) {
	return s.Content.GetTopic(id)
}

func (s *ContentService) CreateTopic(topic *model.Topic) error {
	if strings.TrimSpace(topic.Title) == "" {
		return fmt.Errorf("%w: 主题标题不能为空", util.ErrInvalidInput)
	}
	if _, err := s.Content.GetSubject(topic.SubjectID); err != nil {
		return err
	}
	return s.Content.CreateTopic(topic)
}

func (s *ContentService) UpdateTopic(topic *model.Topic) error {
	if _, err := s.Content.GetTopic(topic.ID); err != nil {
		return err
	}
	return s.Content.UpdateTopic(topic)
}

func (s *ContentService) DeleteTopic(id uint) error {
	return s.Content.DeleteTopic(id)
}

// ---- 小节 ----

func (s *ContentService) GetSection(id uint) (*model.Section, error) {
	return s.Content.GetSection(id)
}

func (s *ContentService) CreateSection(section *model.Section) error {
	if err := s.validateSection(section); err != nil {
		return err
	}
	if _, err := s.Content.GetTopic(section.TopicID); err != nil {
		return err
	}
	return s.Content.CreateSection(section)
}

func (s *ContentService) UpdateSection(section *model.Section) error {
	if err := s.validateSection(section); err != nil {
		return err
	}
	if _, err := s.Content.GetSection(section.ID); err != nil {
		return err
	}
	return s.Content.UpdateSection(section)
}

func (s *ContentService) DeleteSection(id uint) error {
	return s.Content.DeleteSection(id)
}

func (s *ContentService) validateSection(section *model.Section) error {
	if strings.TrimSpace(section.Title) == "" {
		return fmt.Errorf("%w: 小节标题不能为空", util.ErrInvalidInput)
	}
	switch section.UnlockPolicy {
	case "", model.UnlockAlways, model.UnlockSequential:
	case model.UnlockScoreBased:
		if section.RequiredScore < 0 || section.RequiredScore > 100 {
			return fmt.Errorf("%w: 及格线须在0~100之间", util.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: 未知的解锁策略 %s", util.ErrInvalidInput, section.UnlockPolicy)
	}
	if section.CompletionXP < 0 {
		return fmt.Errorf("%w: 完成奖励不能为负", util.ErrInvalidInput)
	}
	return nil
}

// ---- 题目 ----

func (s *ContentService) ListQuestions(sectionID uint) ([]model.Question, error) {
	return s.Content.ListQuestionsBySection(sectionID)
}

func (s *ContentService) CreateQuestion(q *model.Question) error {
	if err := validateQuestion(q); err != nil {
		return err
	}
	if _, err := s.Content.GetSection(q.SectionID); err != nil {
		return err
	}
	return s.Content.CreateQuestion(q)
}

func (s *ContentService) UpdateQuestion(q *model.Question) error {
	if err := validateQuestion(q); err != nil {
		return err
	}
	if _, err := s.Content.GetQuestion(q.ID); err != nil {
		return err
	}
	return s.Content.UpdateQuestion(q)
}

func (s *ContentService) DeleteQuestion(id uint) error {
	return s.Content.DeleteQuestion(id)
}

// validateQuestion 按题目类型校验答案载荷的完备性
func validateQuestion(q *model.Question) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: 题干不能为空", util.ErrInvalidInput)
	}
	if q.XP < 0 {
		return fmt.Errorf("%w: 经验值不能为负", util.ErrInvalidInput)
	}
	switch q.Type {
	case model.MultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: 选择题至少需要两个选项", util.ErrInvalidInput)
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: 正确答案必须是选项之一", util.ErrInvalidInput)
		}
	case model.TrueFalse:
		if q.CorrectAnswer != "true" && q.CorrectAnswer != "false" {
			return fmt.Errorf("%w: 判断题答案须为true或false", util.ErrInvalidInput)
		}
	case model.FillInBlank:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return fmt.Errorf("%w: 填空题答案不能为空", util.ErrInvalidInput)
		}
	case model.Numerical:
		if q.Tolerance < 0 {
			return fmt.Errorf("%w: 误差容限不能为负", util.ErrInvalidInput)
		}
	case model.Matching:
		if len(q.Pairs) == 0 {
			return fmt.Errorf("%w: 匹配题至少需要一对条目", util.ErrInvalidInput)
		}
		seen := make(map[string]bool, len(q.Pairs))
		for _, p := range q.Pairs {
			if p.Left == "" || p.Right == "" {
				return fmt.Errorf("%w: 匹配项不能为空", util.ErrInvalidInput)
			}
			if seen[p.Left] {
				return fmt.Errorf("%w: 匹配题左项重复 %s", util.ErrInvalidInput, p.Left)
			}
			seen[p.Left] = true
		}
	default:
		return fmt.Errorf("%w: 未知的题目类型 %s", util.ErrInvalidInput, q.Type)
	}
	return nil
}

// ---- 闪卡 ----

func (s *ContentService) ListFlashcards(sectionID uint) ([]model.Flashcard, error) {
	return s.Content.ListFlashcardsBySection(sectionID)
}

func (s *ContentService) CreateFlashcard(card *model.Flashcard) error {
	if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
		return fmt.Errorf("%w: 闪卡正反面不能为空", util.ErrInvalidInput)
	}
	if _, err := s.Content.GetSection(card.SectionID); err != nil {
		return err
	}
	return s.Content.CreateFlashcard(card)
}

func (s *ContentService) UpdateFlashcard(card *model.Flashcard) error {
	if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
		return fmt.Errorf("%w: 闪卡正反面不能为空", util.ErrInvalidInput)
	}
	if _, err := s.Content.GetFlashcard(card.ID); err != nil {
		return err
	}
	return s.Content.UpdateFlashcard(card)
}

func (s *ContentService) DeleteFlashcard(id uint) error {
	return s.Content.DeleteFlashcard(id)
}

// ---- 媒体 ----

// UploadMedia 校验并存储小节媒体文件，视频会探测时长并生成缩略图
func (s *ContentService) UploadMedia(ctx context.Context, sectionID, uploaderID uint, fileHeader *multipart.FileHeader, title string) (*model.Media, error) {
	if _, err := s.Content.GetSection(sectionID); err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, util.AllowedMediaMimeTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, err
	}

	ext := filepath.Ext(fileHeader.Filename)
	id := uuid.New().String()
	objectName := fmt.Sprintf("media/%d/%s%s", sectionID, id, ext)

	media := &model.Media{
		SectionID:  sectionID,
		Title:      title,
		MimeType:   mimeType,
		SizeBytes:  fileHeader.Size,
		UploaderID: uploaderID,
	}
	media.ID = id

	if util.IsVideo(mimeType) {
		// 视频先落临时文件供ffmpeg探测
		tmp := filepath.Join(os.TempDir(), id+ext)
		if err := saveToTemp(file, tmp); err != nil {
			return nil, err
		}
		defer os.Remove(tmp)

		if info, err := util.GetVideoInfo(tmp); err != nil {
			logger.Log.Warn("视频元数据探测失败", zap.String("media_id", id), zap.Error(err))
		} else {
			media.Duration = info.Duration
		}

		thumb := filepath.Join(os.TempDir(), id+"_thumb.jpg")
		if err := util.GenerateThumbnail(tmp, thumb, "00:00:01"); err != nil {
			logger.Log.Warn("缩略图生成失败", zap.String("media_id", id), zap.Error(err))
		} else {
			defer os.Remove(thumb)
			thumbName := fmt.Sprintf("media/%d/%s_thumb.jpg", sectionID, id)
			if url, err := s.Storage.UploadFile(ctx, thumbName, thumb, "image/jpeg"); err == nil {
				media.ThumbnailURL = url
			}
		}

		url, err := s.Storage.UploadFile(ctx, objectName, tmp, mimeType)
		if err != nil {
			return nil, err
		}
		media.URL = url
	} else {
		url, err := s.Storage.Upload(ctx, objectName, file, fileHeader.Size, mimeType)
		if err != nil {
			return nil, err
		}
		media.URL = url
	}

	if err := s.Media.Create(media); err != nil {
		return nil, err
	}

	logger.Log.Info("媒体上传完成",
		zap.String("media_id", id),
		zap.Uint("section_id", sectionID),
		zap.String("mime", mimeType),
		zap.Int64("size", fileHeader.Size))
	return media, nil
}

func (s *ContentService) ListMedia(sectionID uint) ([]model.Media, error) {
	return s.Media.FindBySection(sectionID)
}

func (s *ContentService) DeleteMedia(ctx context.Context, id string) error {
	media, err := s.Media.FindByID(id)
	if err != nil {
		return err
	}

	// 存储删除失败不阻塞记录删除，留给后台清理
	if err := s.Storage.Delete(ctx, strings.TrimPrefix(media.URL, "/uploads/")); err != nil {
		logger.Log.Warn("媒体文件删除失败", zap.String("media_id", id), zap.Error(err))
	}
	return s.Media.Delete(id)
}

func saveToTemp(src multipart.File, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
