package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-users/internal/domain"
	"go-gin-gorm-users/pkg/utils"
)

// UserService 唯一负责业务约束（邮箱唯一、软删）与持久化写入
type UserService struct {
	repo domain.UserRepository
	log  *zap.Logger
	now  func() time.Time
	hash func(string) (string, error)
}

type Option func(*UserService)

func WithClock(now func() time.Time) Option { return func(s *UserService) { s.now = now } }

func WithPasswordHasher(h func(string) (string, error)) Option {
	return func(s *UserService) { s.hash = h }
}

func NewUserService(repo domain.UserRepository, l *zap.Logger, opts ...Option) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	s := &UserService{repo: repo, log: l, now: time.Now, hash: utils.HashPassword}
	for _, o := range opts {
		o(s)
	}
	return s
}

// timestamp UTC + 毫秒精度（mysql datetime(3) 可无损往返）
func (s *UserService) timestamp() time.Time { return s.now().UTC().Truncate(time.Millisecond) }

func (s *UserService) List(ctx context.Context) ([]domain.UserView, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, u.View())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.UserView, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return domain.UserView{}, err
	}
	return u.View(), nil
}

func (s *UserService) Create(ctx context.Context, in domain.CreateUserInput) (domain.UserView, error) {
	email := domain.NormalizeEmail(in.Email)
	taken, err := s.EmailTaken(ctx, email)
	if err != nil {
		return domain.UserView{}, err
	}
	if taken {
		return domain.UserView{}, domain.ErrEmailConflict
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Name:      in.Name,
		Email:     email,
		Password:  hashed,
		BirthDate: in.BirthDate.Time,
		Phone:     normalizePhone(in.Phone),
		Active:    true,
		CreatedAt: s.timestamp(),
	}
	if err := ctx.Err(); err != nil {
		return domain.UserView{}, err
	}
	// 预检与写入之间存在竞态，唯一索引兜底（repo 已转为 ErrEmailConflict）
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrEmailConflict) {
			return domain.UserView{}, err
		}
		return domain.UserView{}, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user created", zap.Int64("user_id", u.ID))
	return u.View(), nil
}

func (s *UserService) Update(ctx context.Context, id int64, in domain.UpdateUserInput) (domain.UserView, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return domain.UserView{}, err
	}
	email := domain.NormalizeEmail(in.Email)
	other, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("find user by email: %w", err)
	}
	if other != nil && other.ID != id {
		return domain.UserView{}, domain.ErrEmailConflict
	}

	now := s.timestamp()
	u.Name = in.Name
	u.Email = email
	u.BirthDate = in.BirthDate.Time
	u.Phone = normalizePhone(in.Phone)
	u.Active = in.Active
	u.UpdatedAt = &now
	if err := s.save(ctx, u); err != nil {
		return domain.UserView{}, err
	}
	return u.View(), nil
}

// Remove 软删：active=false；重复调用只刷新 updatedAt
func (s *UserService) Remove(ctx context.Context, id int64) error {
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	now := s.timestamp()
	u.Active = false
	u.UpdatedAt = &now
	if err := s.save(ctx, u); err != nil {
		return err
	}
	s.log.Info("user deactivated", zap.Int64("user_id", id))
	return nil
}

func (s *UserService) EmailTaken(ctx context.Context, email string) (bool, error) {
	ok, err := s.repo.EmailExists(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return ok, nil
}

func (s *UserService) find(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *UserService) save(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, domain.ErrEmailConflict) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}

func normalizePhone(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}
