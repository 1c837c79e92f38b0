package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
)

// BucketAuth 会话信息所在的 bucket
const BucketAuth = "auth"

const (
	keyEmail        = "email"
	keyCurrentSpace = "current_space"
)

// KV 会话服务依赖的键值存储
type KV interface {
	Get(ctx context.Context, bucket, key string) (string, bool, error)
	Set(ctx context.Context, bucket, key, value string) error
	Delete(ctx context.Context, bucket, key string) error
}

// SessionService 记住登录邮箱与当前空间
type SessionService struct {
	kv     KV
	logger *slog.Logger
}

// NewSessionService 创建会话服务
func NewSessionService(kv KV, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{kv: kv, logger: logger}
}

// RememberEmail 校验并保存邮箱
func (s *SessionService) RememberEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if err := s.kv.Set(ctx, BucketAuth, keyEmail, email); err != nil {
		return fmt.Errorf("保存邮箱失败: %w", err)
	}
	s.logger.Info("📧 已记住登录邮箱", "email", email)
	return nil
}

// RememberedEmail 返回已保存的邮箱，未保存时为空字符串
func (s *SessionService) RememberedEmail(ctx context.Context) (string, error) {
	email, _, err := s.kv.Get(ctx, BucketAuth, keyEmail)
	if err != nil {
		return "", fmt.Errorf("读取邮箱失败: %w", err)
	}
	return email, nil
}

// ForgetEmail 清除邮箱和当前空间
func (s *SessionService) ForgetEmail(ctx context.Context) error {
	for _, key := range []string{keyEmail, keyCurrentSpace} {
		if err := s.kv.Delete(ctx, BucketAuth, key); err != nil {
			return fmt.Errorf("清除会话失败: %w", err)
		}
	}
	s.logger.Info("🚪 已清除登录会话")
	return nil
}

// SetCurrentSpace 保存当前空间，DID 必须以 "did:" 开头
func (s *SessionService) SetCurrentSpace(ctx context.Context, spaceDID string) error {
	spaceDID = strings.TrimSpace(spaceDID)
	if !strings.HasPrefix(spaceDID, "did:") || len(spaceDID) == len("did:") {
		return fmt.Errorf("%w: space DID %q", ErrInvalidInput, spaceDID)
	}
	if err := s.kv.Set(ctx, BucketAuth, keyCurrentSpace, spaceDID); err != nil {
		return fmt.Errorf("保存当前空间失败: %w", err)
	}
	s.logger.Debug("当前空间已切换", "space", spaceDID)
	return nil
}

// CurrentSpace 返回当前空间 DID，未设置时为空字符串
func (s *SessionService) CurrentSpace(ctx context.Context) (string, error) {
	did, _, err := s.kv.Get(ctx, BucketAuth, keyCurrentSpace)
	if err != nil {
		return "", fmt.Errorf("读取当前空间失败: %w", err)
	}
	return did, nil
}
