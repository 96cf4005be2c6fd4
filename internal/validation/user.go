package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"go-gin-gorm-users/internal/domain"
)

const (
	MinNameLen     = 3
	MaxNameLen     = 100
	MinPasswordLen = 6
	MinAge         = 18
)

// PhonePattern 巴西号码：区号可带括号；座机首位 1-8，手机 9 后接 1-9；连字符可省略
// 例：(11) 91234-5678 / (11) 1234-5678 / 11912345678
var PhonePattern = regexp.MustCompile(`^\(?(?:[14689][1-9]|2[1-9]|3[1-5]|5[1-9]|7[134579])\)? ?(?:[1-8]|9[1-9])[0-9]{3}-?[0-9]{4}$`)

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Violations []Violation

func (vs Violations) Error() string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return strings.Join(parts, "; ")
}

// check 同一字段只记录第一条失败
type check struct {
	field string
	fails func() bool
	msg   string
}

func run(checks []check) Violations {
	var out Violations
	seen := map[string]bool{}
	for _, c := range checks {
		if seen[c.field] {
			continue
		}
		if c.fails() {
			seen[c.field] = true
			out = append(out, Violation{Field: c.field, Message: c.msg})
		}
	}
	return out
}

type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{v: validator.New(), now: now}
}

func (v *Validator) ValidateCreate(in domain.CreateUserInput) Violations {
	common := v.common(in.Name, in.Email, in.BirthDate, in.Phone)
	checks := make([]check, 0, len(common)+2)
	checks = append(checks, common[:4]...) // name, email
	checks = append(checks,
		check{"password", func() bool { return blank(in.Password) }, "password is required"},
		check{"password", func() bool { return utf8.RuneCountInString(in.Password) < MinPasswordLen }, "password must be at least 6 characters"},
	)
	checks = append(checks, common[4:]...)
	return run(checks)
}

func (v *Validator) ValidateUpdate(in domain.UpdateUserInput) Violations {
	return run(v.common(in.Name, in.Email, in.BirthDate, in.Phone))
}

// common 顺序：name(2) email(2) birthDate(2) phone(1)
func (v *Validator) common(name, email string, birth domain.Date, phone *string) []check {
	return []check{
		{"name", func() bool { return blank(name) }, "name is required"},
		{"name", func() bool {
			n := utf8.RuneCountInString(name)
			return n < MinNameLen || n > MaxNameLen
		}, "name must be between 3 and 100 characters"},
		{"email", func() bool { return blank(email) }, "email is required"},
		{"email", func() bool { return v.v.Var(email, "email") != nil }, "email must be a valid email address"},
		{"birthDate", func() bool { return birth.IsZero() }, "birthDate is required"},
		{"birthDate", func() bool { return AgeOn(birth.Time, v.now()) < MinAge }, "user must be at least 18 years old"},
		{"phone", func() bool {
			return phone != nil && *phone != "" && !PhonePattern.MatchString(*phone)
		}, "phone must match (XX) XXXXX-XXXX or (XX) XXXX-XXXX"},
	}
}

// AgeOn 整岁：生日（月/日）未到则减一；on 取其 UTC 日期
func AgeOn(birth, on time.Time) int {
	on = on.UTC()
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
