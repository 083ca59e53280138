package service

import (
	"context"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/util"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore 内存版进度存储，语义与gorm实现一致：
// Get*缺失返回(nil,nil)，画像缺失返回ErrNotFound
type fakeStore struct {
	profiles  map[uint]model.UserProfile
	cards     map[[2]uint]model.FlashcardProgress
	sections  map[[2]uint]model.SectionProgress
	sectionOf map[uint]uint // sectionID -> topicID

	profileConflicts int // 注入：前N次画像写入返回并发冲突
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  make(map[uint]model.UserProfile),
		cards:     make(map[[2]uint]model.FlashcardProgress),
		sections:  make(map[[2]uint]model.SectionProgress),
		sectionOf: make(map[uint]uint),
	}
}

func (f *fakeStore) GetFlashcardProgress(userID, flashcardID uint) (*model.FlashcardProgress, error) {
	if rec, ok := f.cards[[2]uint{userID, flashcardID}]; ok {
		copied := rec
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) GetSectionProgress(userID, sectionID uint) (*model.SectionProgress, error) {
	if rec, ok := f.sections[[2]uint{userID, sectionID}]; ok {
		copied := rec
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) GetSectionProgressByTopic(userID, topicID uint) (map[uint]*model.SectionProgress, error) {
	out := make(map[uint]*model.SectionProgress)
	for key, rec := range f.sections {
		if key[0] == userID && f.sectionOf[key[1]] == topicID {
			copied := rec
			out[key[1]] = &copied
		}
	}
	return out, nil
}

func (f *fakeStore) GetUserProfile(userID uint) (*model.UserProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		copied := p
		return &copied, nil
	}
	return nil, util.ErrNotFound
}

func (f *fakeStore) UpsertFlashcardProgress(rec *model.FlashcardProgress) error {
	f.cards[[2]uint{rec.UserID, rec.FlashcardID}] = *rec
	return nil
}

func (f *fakeStore) UpsertSectionProgress(rec *model.SectionProgress) error {
	f.sections[[2]uint{rec.UserID, rec.SectionID}] = *rec
	return nil
}

func (f *fakeStore) UpsertUserProfile(profile *model.UserProfile) error {
	if f.profileConflicts > 0 {
		f.profileConflicts--
		return util.ErrConcurrencyConflict
	}
	f.profiles[profile.UserID] = *profile
	return nil
}

// fakeContent 内存内容目录
type fakeContent struct {
	questions  map[uint]model.Question
	flashcards map[uint]model.Flashcard
	sections   map[uint]model.Section
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		questions:  make(map[uint]model.Question),
		flashcards: make(map[uint]model.Flashcard),
		sections:   make(map[uint]model.Section),
	}
}

func (f *fakeContent) GetQuestion(id uint) (*model.Question, error) {
	if q, ok := f.questions[id]; ok {
		copied := q
		return &copied, nil
	}
	return nil, util.ErrNotFound
}

func (f *fakeContent) GetFlashcard(id uint) (*model.Flashcard, error) {
	if c, ok := f.flashcards[id]; ok {
		copied := c
		return &copied, nil
	}
	return nil, util.ErrNotFound
}

func (f *fakeContent) GetSection(id uint) (*model.Section, error) {
	if s, ok := f.sections[id]; ok {
		copied := s
		return &copied, nil
	}
	return nil, util.ErrNotFound
}

func (f *fakeContent) GetSectionsByTopic(topicID uint) ([]model.Section, error) {
	var out []model.Section
	for _, s := range f.sections {
		if s.TopicID == topicID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeContent) CountQuestions(sectionID uint) (int64, error) {
	var n int64
	for _, q := range f.questions {
		if q.SectionID == sectionID {
			n++
		}
	}
	return n, nil
}

func (f *fakeContent) GetLastQuestionID(sectionID uint) (uint, error) {
	var lastID uint
	lastOrder := -1
	for _, q := range f.questions {
		if q.SectionID == sectionID && q.OrderIndex > lastOrder {
			lastOrder = q.OrderIndex
			lastID = q.ID
		}
	}
	if lastOrder < 0 {
		return 0, util.ErrNotFound
	}
	return lastID, nil
}

type progressFixture struct {
	svc     *ProgressService
	store   *fakeStore
	content *fakeContent
	now     time.Time
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()

	store := newFakeStore()
	content := newFakeContent()
	store.profiles[1] = model.UserProfile{UserID: 1, Achievements: model.StringList{}}

	svc := NewProgressService(store, content, testProgressConfig())
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &progressFixture{svc: svc, store: store, content: content, now: now}
}

func (fx *progressFixture) addSection(s model.Section) {
	fx.content.sections[s.ID] = s
	fx.store.sectionOf[s.ID] = s.TopicID
}

func TestRecordInteractionFlashcardLifecycle(t *testing.T) {
	fx := newProgressFixture(t)
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1})
	fx.content.flashcards[100] = model.Flashcard{BaseModel: model.BaseModel{ID: 100}, SectionID: 10, XP: 5}

	// 首次复习good：发全额经验，进入learning
	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   100,
		ContentType: ContentFlashcard,
		Outcome:     Outcome{Rating: "good"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.XPEarned)
	assert.Equal(t, model.MasteryLearning, res.MasteryLevel)
	require.NotNil(t, res.NextDueAt)
	assert.True(t, res.NextDueAt.After(fx.now))

	rec := fx.store.cards[[2]uint{1, 100}]
	assert.Equal(t, 1, rec.ReviewCount)

	// 再次复习：非首次，折扣系数0不给经验，分级继续推进
	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   100,
		ContentType: ContentFlashcard,
		Outcome:     Outcome{Rating: "good"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.XPEarned)
	assert.Equal(t, model.MasteryFamiliar, res.MasteryLevel)
	assert.Equal(t, 2, fx.store.cards[[2]uint{1, 100}].ReviewCount)

	// easy推入mastered，画像掌握计数加一
	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   100,
		ContentType: ContentFlashcard,
		Outcome:     Outcome{Rating: "easy"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.MasteryMastered, res.MasteryLevel)
	assert.Equal(t, 1, fx.store.profiles[1].FlashcardsMastered)
}

func TestRecordInteractionFlashcardAgainEarnsNothing(t *testing.T) {
	fx := newProgressFixture(t)
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1})
	fx.content.flashcards[100] = model.Flashcard{BaseModel: model.BaseModel{ID: 100}, SectionID: 10, XP: 5}

	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   100,
		ContentType: ContentFlashcard,
		Outcome:     Outcome{Rating: "again"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.XPEarned)
	// 复习失败也推进学习连续天数
	assert.Equal(t, 1, fx.store.profiles[1].LearningStreak)
}

func TestRecordInteractionQuestionAnswer(t *testing.T) {
	fx := newProgressFixture(t)
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1, CompletionXP: 50})
	fx.content.questions[200] = model.Question{
		BaseModel: model.BaseModel{ID: 200}, SectionID: 10, OrderIndex: 0,
		Type: model.MultipleChoice, CorrectAnswer: "B", XP: 10,
	}
	fx.content.questions[201] = model.Question{
		BaseModel: model.BaseModel{ID: 201}, SectionID: 10, OrderIndex: 1,
		Type: model.TrueFalse, CorrectAnswer: "true", XP: 10,
	}

	// 答对第一题
	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   200,
		ContentType: ContentQuestion,
		Outcome:     Outcome{Answer: "B"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Correct)
	assert.True(t, *res.Correct)
	assert.Equal(t, 10, res.XPEarned)

	sp := fx.store.sections[[2]uint{1, 10}]
	assert.Equal(t, 1, sp.QuestionsAnswered)
	assert.InDelta(t, 100.0, sp.Score, 1e-9)
	assert.False(t, sp.Completed)

	// 重复提交同一题：不重复计数也不给经验
	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   200,
		ContentType: ContentQuestion,
		Outcome:     Outcome{Answer: "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.XPEarned)
	assert.Equal(t, 1, fx.store.sections[[2]uint{1, 10}].QuestionsAnswered)
	assert.Equal(t, 1, fx.store.profiles[1].QuestionsAnswered)

	// 答错末题：完成小节（非requireCompletion），拿完成奖励但不拿题目经验
	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   201,
		ContentType: ContentQuestion,
		Outcome:     Outcome{Answer: "false"},
	})
	require.NoError(t, err)
	assert.False(t, *res.Correct)
	assert.Equal(t, 50, res.XPEarned)

	sp = fx.store.sections[[2]uint{1, 10}]
	assert.True(t, sp.Completed)
	assert.InDelta(t, 50.0, sp.Score, 1e-9)
	assert.Equal(t, 1, fx.store.profiles[1].SectionsCompleted)
}

func TestRecordInteractionCompletionUnlocksNextSection(t *testing.T) {
	fx := newProgressFixture(t)
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1, OrderIndex: 0})
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 11}, TopicID: 1, OrderIndex: 1, UnlockPolicy: model.UnlockSequential})
	fx.content.questions[200] = model.Question{
		BaseModel: model.BaseModel{ID: 200}, SectionID: 10,
		Type: model.TrueFalse, CorrectAnswer: "true", XP: 10,
	}

	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   200,
		ContentType: ContentQuestion,
		Outcome:     Outcome{Answer: "true"},
	})
	require.NoError(t, err)
	assert.True(t, res.SectionUnlockChanged)
}

func TestRecordInteractionRequireCompletionGuards(t *testing.T) {
	fx := newProgressFixture(t)
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1, RequireCompletion: true, CompletionXP: 40})
	fx.content.questions[200] = model.Question{
		BaseModel: model.BaseModel{ID: 200}, SectionID: 10, OrderIndex: 0,
		Type: model.TrueFalse, CorrectAnswer: "true", XP: 10,
	}
	fx.content.questions[201] = model.Question{
		BaseModel: model.BaseModel{ID: 201}, SectionID: 10, OrderIndex: 1,
		Type: model.TrueFalse, CorrectAnswer: "true", XP: 10,
	}

	// 还有未作答题目时显式完成被拒绝
	_, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   10,
		ContentType: ContentSection,
	})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	// 答完末题但首题未答：仍不完成
	_, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   201,
		ContentType: ContentQuestion,
		Outcome:     Outcome{Answer: "true"},
	})
	require.NoError(t, err)
	assert.False(t, fx.store.sections[[2]uint{1, 10}].Completed)

	// 答完全部题目后小节完成
	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   200,
		ContentType: ContentQuestion,
		Outcome:     Outcome{Answer: "true"},
	})
	require.NoError(t, err)
	assert.True(t, fx.store.sections[[2]uint{1, 10}].Completed)
	assert.Equal(t, 10+40, res.XPEarned)
}

func TestRecordInteractionExplicitSectionComplete(t *testing.T) {
	fx := newProgressFixture(t)
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1, CompletionXP: 25})

	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   10,
		ContentType: ContentSection,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, res.XPEarned)
	assert.True(t, fx.store.sections[[2]uint{1, 10}].Completed)

	// 重复完成：Completed保持，不再给经验
	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   10,
		ContentType: ContentSection,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.XPEarned)
	assert.True(t, fx.store.sections[[2]uint{1, 10}].Completed)
	assert.Equal(t, 1, fx.store.profiles[1].SectionsCompleted)
}

func TestRecordInteractionQuizBonus(t *testing.T) {
	fx := newProgressFixture(t)

	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   1,
		ContentType: ContentQuiz,
		Outcome:     Outcome{Score: floatPtr(80)},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, res.XPEarned)

	// 同日重放：无经验
	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   1,
		ContentType: ContentQuiz,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.XPEarned)
}

func TestRecordInteractionAnswerKinds(t *testing.T) {
	fx := newProgressFixture(t)
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1})
	fx.content.questions[300] = model.Question{
		BaseModel: model.BaseModel{ID: 300}, SectionID: 10, OrderIndex: 0,
		Type: model.FillInBlank, CorrectAnswer: "Gettysburg", XP: 10,
	}
	fx.content.questions[301] = model.Question{
		BaseModel: model.BaseModel{ID: 301}, SectionID: 10, OrderIndex: 1,
		Type: model.Numerical, NumericAnswer: 3.14, Tolerance: 0.01, XP: 10,
	}
	fx.content.questions[302] = model.Question{
		BaseModel: model.BaseModel{ID: 302}, SectionID: 10, OrderIndex: 2,
		Type: model.Matching, XP: 10,
		Pairs: []model.MatchingPair{{Left: "水", Right: "H2O"}, {Left: "盐", Right: "NaCl"}},
	}

	// 填空忽略大小写与首尾空白
	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID: 300, ContentType: ContentQuestion,
		Outcome: Outcome{Answer: "  gettysburg "},
	})
	require.NoError(t, err)
	assert.True(t, *res.Correct)

	// 数值在容差内
	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID: 301, ContentType: ContentQuestion,
		Outcome: Outcome{Value: floatPtr(3.1405)},
	})
	require.NoError(t, err)
	assert.True(t, *res.Correct)

	// 数值题缺少value是契约违规
	_, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID: 301, ContentType: ContentQuestion,
	})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	// 匹配题顺序无关
	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID: 302, ContentType: ContentQuestion,
		Outcome: Outcome{Matches: []model.MatchingPair{{Left: "盐", Right: "NaCl"}, {Left: "水", Right: "H2O"}}},
	})
	require.NoError(t, err)
	assert.True(t, *res.Correct)
}

func TestRecordInteractionRejectsBadInput(t *testing.T) {
	fx := newProgressFixture(t)

	_, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   1,
		ContentType: "karaoke",
	})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1})
	fx.content.flashcards[100] = model.Flashcard{BaseModel: model.BaseModel{ID: 100}, SectionID: 10, XP: 5}
	_, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   100,
		ContentType: ContentFlashcard,
		Outcome:     Outcome{Rating: "perfect"},
	})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	// 未知用户
	_, err = fx.svc.RecordInteraction(context.Background(), 42, InteractionRequest{
		ContentID:   100,
		ContentType: ContentFlashcard,
		Outcome:     Outcome{Rating: "good"},
	})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestRecordInteractionConflictKeepsFirstReview(t *testing.T) {
	fx := newProgressFixture(t)
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1})
	fx.content.flashcards[100] = model.Flashcard{BaseModel: model.BaseModel{ID: 100}, SectionID: 10, XP: 5}

	// 画像写冲突发生在卡片进度已落库之后：重试只重结算画像，
	// 不得把同一次复习再次推进调度器
	fx.store.profileConflicts = 1
	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   100,
		ContentType: ContentFlashcard,
		Outcome:     Outcome{Rating: "good"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.XPEarned, "首次复习的经验不因重试丢失")
	assert.Equal(t, model.MasteryLearning, res.MasteryLevel, "一次good只推进一档")
	assert.Equal(t, 1, fx.store.cards[[2]uint{1, 100}].ReviewCount, "一次交互只计一次复习")
	assert.Equal(t, 5, fx.store.profiles[1].TotalXP)
}

func TestRecordInteractionScoreDropKeepsUnlock(t *testing.T) {
	fx := newProgressFixture(t)
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 10}, TopicID: 1, OrderIndex: 0, RequireCompletion: true})
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 11}, TopicID: 1, OrderIndex: 1, UnlockPolicy: model.UnlockScoreBased, RequiredScore: 70})
	fx.content.questions[400] = model.Question{
		BaseModel: model.BaseModel{ID: 400}, SectionID: 10, OrderIndex: 0,
		Type: model.TrueFalse, CorrectAnswer: "true", XP: 10,
	}
	fx.content.questions[401] = model.Question{
		BaseModel: model.BaseModel{ID: 401}, SectionID: 10, OrderIndex: 1,
		Type: model.TrueFalse, CorrectAnswer: "true", XP: 10,
	}

	// 首题答对：得分100越过及格线，后继小节翻为解锁
	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   400,
		ContentType: ContentQuestion,
		Outcome:     Outcome{Answer: "true"},
	})
	require.NoError(t, err)
	assert.True(t, res.SectionUnlockChanged)

	// 次题答错：当前得分回落到50，历史最高分保持100
	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   401,
		ContentType: ContentQuestion,
		Outcome:     Outcome{Answer: "false"},
	})
	require.NoError(t, err)
	assert.False(t, res.SectionUnlockChanged, "已解锁的小节不算再次翻转")

	sp := fx.store.sections[[2]uint{1, 10}]
	assert.InDelta(t, 50.0, sp.Score, 1e-9)
	assert.InDelta(t, 100.0, sp.BestScore, 1e-9)

	// 得分回落后重新判定：既得解锁不回退
	siblings, err := fx.content.GetSectionsByTopic(1)
	require.NoError(t, err)
	progress, err := fx.store.GetSectionProgressByTopic(1, 1)
	require.NoError(t, err)
	unlocked, err := fx.svc.gate.IsUnlocked(siblings, 1, progress)
	require.NoError(t, err)
	assert.True(t, unlocked)
}

func TestRecordInteractionUnlockChangeOnlyOnRealFlip(t *testing.T) {
	fx := newProgressFixture(t)

	// 及格线未达：完成前置小节不等于解锁后继小节
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 20}, TopicID: 2, OrderIndex: 0})
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 21}, TopicID: 2, OrderIndex: 1, UnlockPolicy: model.UnlockScoreBased, RequiredScore: 80})
	fx.content.questions[500] = model.Question{
		BaseModel: model.BaseModel{ID: 500}, SectionID: 20, OrderIndex: 0,
		Type: model.TrueFalse, CorrectAnswer: "true", XP: 10,
	}

	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   500,
		ContentType: ContentQuestion,
		Outcome:     Outcome{Answer: "false"},
	})
	require.NoError(t, err)
	assert.True(t, fx.store.sections[[2]uint{1, 20}].Completed)
	assert.False(t, res.SectionUnlockChanged, "得分0未达80，后继小节仍锁定")

	// 后继小节本就无条件解锁：完成不产生状态变化
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 30}, TopicID: 3, OrderIndex: 0})
	fx.addSection(model.Section{BaseModel: model.BaseModel{ID: 31}, TopicID: 3, OrderIndex: 1, UnlockPolicy: model.UnlockAlways})

	res, err = fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   30,
		ContentType: ContentSection,
	})
	require.NoError(t, err)
	assert.False(t, res.SectionUnlockChanged)
}

func TestRecordInteractionRetriesOnConflict(t *testing.T) {
	fx := newProgressFixture(t)

	// 前两次画像写入冲突，第三次成功，整单重试后结果不变
	fx.store.profileConflicts = 2
	res, err := fx.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   1,
		ContentType: ContentQuiz,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, res.XPEarned)
	assert.Equal(t, 30, fx.store.profiles[1].TotalXP)

	// 冲突次数超过重试上限时放弃
	fx2 := newProgressFixture(t)
	fx2.store.profileConflicts = 10
	_, err = fx2.svc.RecordInteraction(context.Background(), 1, InteractionRequest{
		ContentID:   1,
		ContentType: ContentQuiz,
	})
	assert.ErrorIs(t, err, util.ErrConcurrencyConflict)
}

func floatPtr(f float64) *float64 { return &f }
