package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Oskru/study-smart/config"
	pkgerrors "github.com/Oskru/study-smart/pkg/errors"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、登录限流与选择会话快照
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

// CheckRateLimit 固定窗口计数：窗口内第 limit+1 次起返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("限流计数失败", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// ── 选择会话 ──

const sessionPrefix = "selection:session:"

// SaveSession 保存会话快照（JSON），每次写入刷新 TTL
func (c *Client) SaveSession(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, sessionPrefix+id, data, ttl).Err()
}

// LoadSession 读取会话快照，不存在时返回 ErrSessionNotFound
func (c *Client) LoadSession(ctx context.Context, id string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, pkgerrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SwapSession 乐观写入：WATCH 会话键，仅当当前值仍为 prev 时覆盖
func (c *Client) SwapSession(ctx context.Context, id string, prev, data []byte, ttl time.Duration) error {
	key := sessionPrefix + id
	err := c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return pkgerrors.ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		if !bytes.Equal(cur, prev) {
			return pkgerrors.ErrSessionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, goredis.TxFailedErr) {
		return pkgerrors.ErrSessionConflict
	}
	return err
}

// DeleteSession 删除会话快照
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, sessionPrefix+id).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
