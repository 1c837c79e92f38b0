package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KVEntry 键值存储中的一条记录
type KVEntry struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KVStore 按 bucket 分组的字符串键值存储
type KVStore struct {
	db *sql.DB
}

// NewKVStore 创建键值存储
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// Get 读取单个值，不存在时 ok 为 false
func (s *KVStore) Get(ctx context.Context, bucket, key string) (string, bool, error) {
	value, err := withBusyRetry(ctx, func() (string, error) {
		var v string
		err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE bucket = ? AND key = ?`, bucket, key).Scan(&v)
		return v, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("读取 %s.%s 失败: %w", bucket, key, err)
	}
	return value, true, nil
}

// Set 写入值（存在则更新）
func (s *KVStore) Set(ctx context.Context, bucket, key, value string) error {
	query := `
		INSERT INTO kv (bucket, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(bucket, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, bucket, key, value, formatSQLiteDateTime(time.Now())); err != nil {
		return fmt.Errorf("写入 %s.%s 失败: %w", bucket, key, err)
	}
	return nil
}

// Delete 删除键，键不存在不视为错误
func (s *KVStore) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE bucket = ? AND key = ?`, bucket, key); err != nil {
		return fmt.Errorf("删除 %s.%s 失败: %w", bucket, key, err)
	}
	return nil
}

// Entries 返回 bucket 下的全部记录（按 key 排序）
func (s *KVStore) Entries(ctx context.Context, bucket string) ([]KVEntry, error) {
	rows, err := withBusyRetry(ctx, func() (*sql.Rows, error) {
		return s.db.QueryContext(ctx, `SELECT key, value, updated_at FROM kv WHERE bucket = ? ORDER BY key`, bucket)
	})
	if err != nil {
		return nil, fmt.Errorf("查询 %s 失败: %w", bucket, err)
	}
	defer rows.Close()

	var entries []KVEntry
	for rows.Next() {
		e := KVEntry{Bucket: bucket}
		var updatedAt string
		if err := rows.Scan(&e.Key, &e.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("扫描记录失败: %w", err)
		}
		e.UpdatedAt = parseSQLiteDateTime(updatedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Keys 返回 bucket 下的全部键
func (s *KVStore) Keys(ctx context.Context, bucket string) ([]string, error) {
	entries, err := s.Entries(ctx, bucket)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}
