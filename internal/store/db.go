// Package store 提供本地 SQLite 存储：键值存储与上传文件索引
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// busyTimeout SQLite 锁等待时间（毫秒）
const busyTimeout = 10000

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	bucket TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (bucket, key)
);

CREATE TABLE IF NOT EXISTS files (
	cid TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	name_lower TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	shards TEXT NOT NULL DEFAULT '[]',
	space_did TEXT NOT NULL,
	space_name TEXT NOT NULL DEFAULT '',
	size INTEGER NOT NULL DEFAULT 0,
	mime_type TEXT NOT NULL DEFAULT '',
	search_text TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_space_did ON files(space_did);
CREATE INDEX IF NOT EXISTS idx_files_name_lower ON files(name_lower);
CREATE INDEX IF NOT EXISTS idx_files_created_at ON files(created_at);
`

// Open 打开（或创建）数据库并初始化表结构
// path 为 ":memory:" 时不创建目录
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", path, busyTimeout)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	// SQLite 写操作需要单一连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("✅ SQLite数据库已就绪", "path", path)
	return db, nil
}

// InitSchema 创建缺失的表和索引
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("初始化表结构失败: %w", err)
	}
	return nil
}
