//go:build integration

// Package testutil 提供基于 testcontainers-go 的 Postgres 与 Redis 集成测试环境
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/foodstay-backend/internal/common/database"
)

// 容器镜像
const (
	PostgresImage = "postgres:15-alpine"
	RedisImage    = "redis:7-alpine"
)

// Containers 一组测试容器
type Containers struct {
	postgres    testcontainers.Container
	redis       testcontainers.Container
	PostgresDSN string
	RedisAddr   string
}

// Start 启动 Postgres 与 Redis 容器，测试结束时自动清理
func Start(t *testing.T) *Containers {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tc := &Containers{}
	t.Cleanup(func() { _ = tc.terminate(context.Background()) })

	if err := tc.startPostgres(ctx); err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	if err := tc.startRedis(ctx); err != nil {
		t.Fatalf("start redis: %v", err)
	}
	return tc
}

func (tc *Containers) startPostgres(ctx context.Context) error {
	container, err := tcPostgres.Run(ctx, PostgresImage,
		tcPostgres.WithDatabase("foodstay_test"),
		tcPostgres.WithUsername("test_user"),
		tcPostgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("run container: %w", err)
	}
	tc.postgres = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("connection string: %w", err)
	}
	tc.PostgresDSN = dsn
	return nil
}

func (tc *Containers) startRedis(ctx context.Context) error {
	container, err := tcRedis.Run(ctx, RedisImage,
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("run container: %w", err)
	}
	tc.redis = container

	host, err := container.Host(ctx)
	if err != nil {
		return fmt.Errorf("redis host: %w", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return fmt.Errorf("redis port: %w", err)
	}
	tc.RedisAddr = fmt.Sprintf("%s:%s", host, port.Port())
	return nil
}

// DB 连接 Postgres 容器并迁移全部模型
func (tc *Containers) DB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open(tc.PostgresDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// Redis 连接 Redis 容器
func (tc *Containers) Redis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: tc.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func (tc *Containers) terminate(ctx context.Context) error {
	var errs []error
	if tc.postgres != nil {
		if err := tc.postgres.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("terminate postgres: %w", err))
		}
	}
	if tc.redis != nil {
		if err := tc.redis.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("terminate redis: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
