// Package cache 提供 Redis 缓存与分布式锁
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dumeirei/foodstay-backend/internal/common/config"
	"github.com/dumeirei/foodstay-backend/internal/common/logger"
)

// Init 初始化 Redis 连接
func Init(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	return rdb, nil
}

// Cache JSON 值缓存
type Cache struct {
	rdb *redis.Client
}

// New 创建缓存
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// GetJSON 读取缓存并反序列化，键不存在时返回 false
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

// SetJSON 序列化后写入缓存
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.rdb.Set(ctx, key, data, expiration).Err()
}

// Delete 删除缓存
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// 缓存键
const (
	KeyFoodCategories = "catalog:food:categories"
	KeyRoomTypes      = "catalog:room:types"
	KeyPrefixLock     = "lock:"
)

// RoomLockKey 房间预订锁键
func RoomLockKey(roomID int64) string {
	return fmt.Sprintf("%sroom:%d", KeyPrefixLock, roomID)
}

// GetOrLoad 读取缓存，未命中时调用 load 并回写，返回值 hit 表示是否命中缓存
// c 为 nil 时直接调用 load；缓存读写失败只记录日志，不影响主流程
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, bool, error) {
	var value T
	if c != nil {
		hit, err := c.GetJSON(ctx, key, &value)
		if err != nil {
			logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return value, true, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, false, err
	}

	if c != nil {
		if err := c.SetJSON(ctx, key, value, ttl); err != nil {
			logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, false, nil
}

// Invalidate 删除缓存键，c 为 nil 时忽略
func Invalidate(ctx context.Context, c *Cache, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		logger.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
