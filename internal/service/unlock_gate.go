package service

import (
	"fmt"
	"learnquest_backend/internal/model"
	"learnquest_backend/internal/util"
)

// UnlockGate 判定小节对用户是否可进入
// 只读进度，绝不写入；progress以小节ID为键，缺失条目视为零进度
type UnlockGate struct {
	defaultRequiredScore float64
}

func NewUnlockGate(defaultRequiredScore float64) *UnlockGate {
	return &UnlockGate{defaultRequiredScore: defaultRequiredScore}
}

// IsUnlocked 小节sections[targetIndex]当前是否解锁
// sections须为同一主题下按OrderIndex排好序的兄弟小节
func (g *UnlockGate) IsUnlocked(sections []model.Section, targetIndex int, progress map[uint]*model.SectionProgress) (bool, error) {
	unlocked, _, err := g.evaluate(sections, targetIndex, progress)
	return unlocked, err
}

// UnlockReason 锁定时返回指明拦路小节的提示文案，解锁时返回空串
func (g *UnlockGate) UnlockReason(sections []model.Section, targetIndex int, progress map[uint]*model.SectionProgress) (string, error) {
	_, reason, err := g.evaluate(sections, targetIndex, progress)
	return reason, err
}

func (g *UnlockGate) evaluate(sections []model.Section, targetIndex int, progress map[uint]*model.SectionProgress) (bool, string, error) {
	if targetIndex < 0 || targetIndex >= len(sections) {
		return false, "", fmt.Errorf("%w: section index %d out of range", util.ErrInvalidInput, targetIndex)
	}

	target := sections[targetIndex]

	// 首节无条件解锁
	if targetIndex == 0 || target.UnlockPolicy == model.UnlockAlways {
		return true, "", nil
	}

	// 已完成过的小节永不回锁，策略调整不影响既得解锁
	if own := progress[target.ID]; own != nil && own.Completed {
		return true, "", nil
	}

	prev := sections[targetIndex-1]
	prevProgress := progress[prev.ID]

	switch target.UnlockPolicy {
	case model.UnlockSequential:
		if prevProgress != nil && prevProgress.Completed {
			return true, "", nil
		}
		return false, fmt.Sprintf("需要先完成小节「%s」", prev.Title), nil
	case model.UnlockScoreBased:
		required := target.RequiredScore
		if required <= 0 {
			required = g.defaultRequiredScore
		}
		// 按历史最高分判定：后续答错拉低当前得分时，已达标的解锁不回退
		score := 0.0
		if prevProgress != nil {
			score = prevProgress.BestScore
			if prevProgress.Score > score {
				score = prevProgress.Score
			}
		}
		if score >= required {
			return true, "", nil
		}
		return false, fmt.Sprintf("小节「%s」最高得分 %.0f%%，达到 %.0f%% 后解锁", prev.Title, score, required), nil
	default:
		return false, "", fmt.Errorf("%w: unknown unlock policy %q", util.ErrInvalidInput, target.UnlockPolicy)
	}
}
