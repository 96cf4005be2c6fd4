package user

import (
	"time"

	"go-gin-gorm-users/internal/domain"
)

type UserModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:100;not null"`
	Email     string    `gorm:"uniqueIndex;size:191;not null"` // 已小写
	Password  string    `gorm:"size:100;not null"`
	BirthDate time.Time `gorm:"not null"`
	Phone     *string   `gorm:"size:32"`
	Active    bool      `gorm:"not null"`

	CreatedAt time.Time  `gorm:"autoCreateTime:false;not null"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"` // 首次修改前为 NULL
}

func (UserModel) TableName() string { return "users" }

func FromDomain(u *domain.User) UserModel {
	return UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		BirthDate: u.BirthDate,
		Phone:     u.Phone,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m UserModel) ToDomain() domain.User {
	u := domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Password:  m.Password,
		BirthDate: m.BirthDate.UTC(),
		Phone:     m.Phone,
		Active:    m.Active,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.UpdatedAt != nil {
		t := m.UpdatedAt.UTC()
		u.UpdatedAt = &t
	}
	return u
}
