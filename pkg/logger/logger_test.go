package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogUsableBeforeInit(t *testing.T) {
	assert.NotNil(t, Log)
	// InitLogger之前写日志落到nop核心，不应崩溃
	Log.Warn("pre-init message")
}
