package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-gin-gorm-users/internal/domain"
	"go-gin-gorm-users/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	m := user.FromDomain(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	u.ID = m.ID
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (r *UserRepo) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).Where(query, arg).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := m.ToDomain()
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var ms []user.UserModel
	if err := r.db.WithContext(ctx).Order("id asc").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

// Update 覆盖全部可变列（含零值 active=false）
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	m := user.FromDomain(u)
	err := r.db.WithContext(ctx).
		Model(&user.UserModel{ID: m.ID}).
		Select("name", "email", "password", "birth_date", "phone", "active", "updated_at").
		Updates(&m).Error
	if err != nil {
		return translate(err)
	}
	return nil
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&user.UserModel{}).
		Where("email = ?", domain.NormalizeEmail(email)).
		Count(&n).Error
	return n > 0, err
}

// translate 唯一索引冲突 → ErrEmailConflict（并发兜底）
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDupKey(err) {
		return domain.ErrEmailConflict
	}
	return err
}

func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
