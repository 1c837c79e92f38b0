package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"gopkg.in/natefinch/lumberjack.v2"
)

const megabyte = 1024 * 1024

// ParseSize 解析 "10MB" 之类的大小配置
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}

// FileRotator 按大小轮转的日志文件
// 轮转后的文件命名为 <name>-<timestamp><ext>[.gz]，最多保留 maxFiles 个
type FileRotator struct {
	*lumberjack.Logger
}

// NewFileRotator 打开（或创建）日志文件；maxSize 以字节计，向上取整到 MB
func NewFileRotator(path string, maxSize int64, maxFiles int, compress bool) (*FileRotator, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	sizeMB := 0
	if maxSize > 0 {
		sizeMB = int((maxSize + megabyte - 1) / megabyte)
	}

	r := &FileRotator{Logger: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    sizeMB,
		MaxBackups: maxFiles,
		Compress:   compress,
		LocalTime:  true,
	}}

	// 立即打开，尽早暴露权限问题
	if _, err := r.Write(nil); err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return r, nil
}

// Sync lumberjack 每次 Write 直接落盘，无需额外刷新
func (r *FileRotator) Sync() error {
	return nil
}
