package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFileNotFound 索引中不存在该 CID
	ErrFileNotFound = errors.New("indexed file not found")
	// ErrDuplicateFile 该 CID 已被索引
	ErrDuplicateFile = errors.New("file already indexed")
)

// IndexedFile 已上传文件的本地索引记录，CID 为主键
type IndexedFile struct {
	CID         string    `json:"cid"`
	Name        string    `json:"name"`
	NameLower   string    `json:"nameLower"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Shards      []string  `json:"shards"`
	SpaceDID    string    `json:"spaceDid"`
	SpaceName   string    `json:"spaceName"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mimeType"`
	SearchText  string    `json:"searchText"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FileIndexStore 上传文件索引
type FileIndexStore struct {
	db *sql.DB
}

// NewFileIndexStore 创建文件索引存储
func NewFileIndexStore(db *sql.DB) *FileIndexStore {
	return &FileIndexStore{db: db}
}

const fileColumns = `cid, name, name_lower, description, tags, shards, space_did, space_name,
	size, mime_type, search_text, created_at, updated_at`

// Add 插入一条索引，CID 已存在时返回 ErrDuplicateFile
func (s *FileIndexStore) Add(ctx context.Context, f *IndexedFile) error {
	tags, err := json.Marshal(nonNil(f.Tags))
	if err != nil {
		return fmt.Errorf("序列化 tags 失败: %w", err)
	}
	shards, err := json.Marshal(nonNil(f.Shards))
	if err != nil {
		return fmt.Errorf("序列化 shards 失败: %w", err)
	}

	query := `INSERT INTO files (` + fileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		f.CID, f.Name, f.NameLower, f.Description, string(tags), string(shards),
		f.SpaceDID, f.SpaceName, f.Size, f.MimeType, f.SearchText,
		formatSQLiteDateTime(f.CreatedAt), formatSQLiteDateTime(f.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateFile, f.CID)
	}
	if err != nil {
		return fmt.Errorf("写入文件索引失败: %w", err)
	}
	return nil
}

// Get 按 CID 读取
func (s *FileIndexStore) Get(ctx context.Context, cid string) (*IndexedFile, error) {
	f, err := withBusyRetry(ctx, func() (*IndexedFile, error) {
		return scanFile(s.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE cid = ?`, cid))
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, cid)
	}
	if err != nil {
		return nil, fmt.Errorf("读取文件索引失败: %w", err)
	}
	return f, nil
}

// ListBySpace 列出空间内的文件，最新的在前
func (s *FileIndexStore) ListBySpace(ctx context.Context, spaceDID string, limit int) ([]*IndexedFile, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE space_did = ? ORDER BY created_at DESC, cid LIMIT ?`
	return s.query(ctx, query, spaceDID, limit)
}

// Search 在 search_text 上做大小写无关的子串匹配，text 为空时不过滤，spaceDID 为空时搜索全部空间
func (s *FileIndexStore) Search(ctx context.Context, text, spaceDID string, limit int) ([]*IndexedFile, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE (? = '' OR instr(search_text, lower(?)) > 0) AND (? = '' OR space_did = ?)
		ORDER BY created_at DESC, cid LIMIT ?`
	return s.query(ctx, query, text, text, spaceDID, spaceDID, limit)
}

// Delete 删除索引，不存在时返回 ErrFileNotFound
func (s *FileIndexStore) Delete(ctx context.Context, cid string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE cid = ?`, cid)
	if err != nil {
		return fmt.Errorf("删除文件索引失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, cid)
	}
	return nil
}

func (s *FileIndexStore) query(ctx context.Context, query string, args ...any) ([]*IndexedFile, error) {
	rows, err := withBusyRetry(ctx, func() (*sql.Rows, error) {
		return s.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("查询文件索引失败: %w", err)
	}
	defer rows.Close()

	files := make([]*IndexedFile, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描文件索引失败: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(sc scanner) (*IndexedFile, error) {
	var f IndexedFile
	var tags, shards, createdAt, updatedAt string
	err := sc.Scan(
		&f.CID, &f.Name, &f.NameLower, &f.Description, &tags, &shards,
		&f.SpaceDID, &f.SpaceName, &f.Size, &f.MimeType, &f.SearchText,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &f.Tags); err != nil {
		return nil, fmt.Errorf("解析 tags 失败: %w", err)
	}
	if err := json.Unmarshal([]byte(shards), &f.Shards); err != nil {
		return nil, fmt.Errorf("解析 shards 失败: %w", err)
	}
	f.CreatedAt = parseSQLiteDateTime(createdAt)
	f.UpdatedAt = parseSQLiteDateTime(updatedAt)
	return &f, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
