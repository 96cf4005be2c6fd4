package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailConflict = errors.New("email already registered")
)

type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string // bcrypt 哈希，不对外输出
	BirthDate time.Time
	Phone     *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// UserView 对外输出（无密码）
type UserView struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	BirthDate Date       `json:"birthDate"`
	Phone     *string    `json:"phone,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func (u User) View() UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		BirthDate: DateOf(u.BirthDate),
		Phone:     u.Phone,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type CreateUserInput struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	BirthDate Date    `json:"birthDate"`
	Phone     *string `json:"phone"`
}

type UpdateUserInput struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	BirthDate Date    `json:"birthDate"`
	Phone     *string `json:"phone"`
	Active    bool    `json:"active"`
}

// NormalizeEmail 存储与比较统一用小写
func NormalizeEmail(email string) string { return strings.ToLower(email) }

// UserRepository 查询不到时返回 (nil, nil)；唯一索引冲突返回 ErrEmailConflict
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	EmailExists(ctx context.Context, email string) (bool, error)
}
