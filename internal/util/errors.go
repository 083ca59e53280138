package util

import "errors"

// 进度引擎的四类错误：全部上抛给调用方，只有并发冲突在协调器内部有限重试
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("resource not found")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
	ErrCorruptState        = errors.New("stored state violates invariant")
)

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")
)
