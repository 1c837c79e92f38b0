package store

import (
	"strings"
	"time"
)

// sqliteTimeLayout 时间统一以 UTC 文本存储，字典序即时间序
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

func formatSQLiteDateTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteDateTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	layouts := []string{
		sqliteTimeLayout,
		"2006-01-02 15:04:05.999999-07:00",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
