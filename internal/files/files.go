// Package files 读取用户选择的本地文件信息
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrNotRegularFile 路径不是普通文件（目录、设备等）
	ErrNotRegularFile = errors.New("not a regular file")
	// ErrFileTooLarge 文件超过读取上限
	ErrFileTooLarge = errors.New("file too large")
)

// LocalFile 本地文件描述
type LocalFile struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mimeType"`
	ModTime  time.Time `json:"modTime"`
}

// Describe 读取每个路径的大小、修改时间和 MIME 类型
func Describe(paths []string) ([]LocalFile, error) {
	out := make([]LocalFile, 0, len(paths))
	for _, p := range paths {
		f, err := describe(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func describe(path string) (LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return LocalFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return LocalFile{}, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return LocalFile{}, fmt.Errorf("detect type of %s: %w", path, err)
	}

	return LocalFile{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: mime.String(),
		ModTime:  info.ModTime(),
	}, nil
}

// Read 读取整个文件，limit > 0 时拒绝超过 limit 字节的文件
func Read(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), limit)
	}

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	// 读取过程中文件被追加
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, path)
	}
	return data, nil
}
