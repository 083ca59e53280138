package configwatcher

import (
	"learnquest_backend/internal/config"
	"learnquest_backend/pkg/logger"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// 编辑器保存配置时往往触发多次write事件，合并为一次重载
const reloadDebounce = time.Second

// ConfigReloader 重载成功后收到新配置
type ConfigReloader func(cfg interface{})

// WatchConfig 监听配置文件变更并热重载，应在独立goroutine中运行。
// 重载失败只记日志，进程继续使用旧配置
func WatchConfig(configPath string, cfg interface{}, reloader ConfigReloader) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Log.Error("配置监听器创建失败，热重载不可用", zap.Error(err))
		return
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		logger.Log.Error("配置路径解析失败", zap.String("path", configPath), zap.Error(err))
		return
	}
	if err := watcher.Add(absPath); err != nil {
		logger.Log.Error("配置文件监听失败", zap.String("path", absPath), zap.Error(err))
		return
	}

	var mu sync.Mutex
	timer := time.NewTimer(0)
	<-timer.C

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				mu.Lock()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(reloadDebounce)
				mu.Unlock()
			}
		case <-timer.C:
			newCfg, err := config.LoadConfig(filepath.Dir(configPath))
			if err != nil {
				logger.Log.Error("配置重载失败，沿用当前配置", zap.Error(err))
				continue
			}
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("配置监听器错误", zap.Error(err))
		}
	}
}
