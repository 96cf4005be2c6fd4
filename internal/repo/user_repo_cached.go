package repo

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-users/internal/core/cache"
	"go-gin-gorm-users/internal/domain"
)

// CachedUserRepo 按 id 读缓存；写入成功后失效
type CachedUserRepo struct {
	domain.UserRepository
	c   *cache.Cache
	ttl time.Duration
	log *zap.Logger
}

func NewCachedUserRepo(next domain.UserRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CachedUserRepo {
	if l == nil {
		l = zap.NewNop()
	}
	return &CachedUserRepo{UserRepository: next, c: c, ttl: ttl, log: l}
}

func userKey(id int64) string { return "user:" + strconv.FormatInt(id, 10) }

func (r *CachedUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return cache.GetOrLoadJSON(r.c, ctx, userKey(id), r.ttl, func(ctx context.Context) (*domain.User, error) {
		return r.UserRepository.FindByID(ctx, id)
	})
}

func (r *CachedUserRepo) Update(ctx context.Context, u *domain.User) error {
	if err := r.UserRepository.Update(ctx, u); err != nil {
		return err
	}
	// 写已提交：失效不随请求取消
	if err := r.c.Invalidate(context.WithoutCancel(ctx), userKey(u.ID)); err != nil {
		r.log.Warn("cache invalidate failed", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	return nil
}
