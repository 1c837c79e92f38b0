package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vaulter/internal/store"
)

const (
	// DefaultLimit 未指定数量时返回的条数
	DefaultLimit = 50
	// MaxLimit 单次查询的上限
	MaxLimit = 500
)

// FileIndex 索引服务依赖的存储
type FileIndex interface {
	Add(ctx context.Context, f *store.IndexedFile) error
	Get(ctx context.Context, cid string) (*store.IndexedFile, error)
	ListBySpace(ctx context.Context, spaceDID string, limit int) ([]*store.IndexedFile, error)
	Search(ctx context.Context, text, spaceDID string, limit int) ([]*store.IndexedFile, error)
	Delete(ctx context.Context, cid string) error
}

// UploadInput 内容层上传完成后提交的信息
type UploadInput struct {
	CID         string   `json:"cid"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Shards      []string `json:"shards"`
	SpaceDID    string   `json:"spaceDid"`
	SpaceName   string   `json:"spaceName"`
	Size        int64    `json:"size"`
	MimeType    string   `json:"mimeType"`
}

// Indexer 维护已上传文件的本地索引
type Indexer struct {
	files  FileIndex
	logger *slog.Logger
	now    func() time.Time
}

// NewIndexer 创建索引服务
func NewIndexer(files FileIndex, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{files: files, logger: logger, now: time.Now}
}

// IndexUpload 记录一次上传
func (ix *Indexer) IndexUpload(ctx context.Context, in UploadInput) (*store.IndexedFile, error) {
	in.CID = strings.TrimSpace(in.CID)
	in.Name = strings.TrimSpace(in.Name)
	in.SpaceDID = strings.TrimSpace(in.SpaceDID)
	switch {
	case in.CID == "":
		return nil, fmt.Errorf("%w: cid is required", ErrInvalidInput)
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.SpaceDID == "":
		return nil, fmt.Errorf("%w: space DID is required", ErrInvalidInput)
	case in.Size < 0:
		return nil, fmt.Errorf("%w: negative size", ErrInvalidInput)
	}

	tags := normalizeTags(in.Tags)
	now := ix.now()
	f := &store.IndexedFile{
		CID:         in.CID,
		Name:        in.Name,
		NameLower:   strings.ToLower(in.Name),
		Description: in.Description,
		Tags:        tags,
		Shards:      append([]string{}, in.Shards...),
		SpaceDID:    in.SpaceDID,
		SpaceName:   in.SpaceName,
		Size:        in.Size,
		MimeType:    in.MimeType,
		SearchText:  searchText(in.Name, in.Description, tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := ix.files.Add(ctx, f); err != nil {
		return nil, err
	}
	ix.logger.Info("📦 已索引上传文件", "cid", f.CID, "name", f.Name, "space", f.SpaceDID)
	return f, nil
}

// Search 按名称、描述和标签搜索，spaceDID 为空时覆盖全部空间。
// 查询为空时按时间倒序列出（指定空间或全部空间）
func (ix *Indexer) Search(ctx context.Context, query, spaceDID string, limit int) ([]*store.IndexedFile, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	spaceDID = strings.TrimSpace(spaceDID)
	if query == "" && spaceDID != "" {
		return ix.List(ctx, spaceDID, limit)
	}
	return ix.files.Search(ctx, query, spaceDID, clampLimit(limit))
}

// List 列出空间内文件，最新的在前
func (ix *Indexer) List(ctx context.Context, spaceDID string, limit int) ([]*store.IndexedFile, error) {
	if strings.TrimSpace(spaceDID) == "" {
		return nil, fmt.Errorf("%w: space DID is required", ErrInvalidInput)
	}
	return ix.files.ListBySpace(ctx, spaceDID, clampLimit(limit))
}

// Get 按 CID 读取索引
func (ix *Indexer) Get(ctx context.Context, cid string) (*store.IndexedFile, error) {
	return ix.files.Get(ctx, cid)
}

// Remove 删除索引
func (ix *Indexer) Remove(ctx context.Context, cid string) error {
	if err := ix.files.Delete(ctx, cid); err != nil {
		return err
	}
	ix.logger.Info("🗑️ 已移除文件索引", "cid", cid)
	return nil
}

func normalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	tags := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

func searchText(name, description string, tags []string) string {
	parts := []string{name}
	if d := strings.TrimSpace(description); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}
