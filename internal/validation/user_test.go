package validation

import (
	"strings"
	"testing"
	"time"

	"go-gin-gorm-users/internal/domain"
)

var fixedNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func newTestValidator() *Validator {
	return New(func() time.Time { return fixedNow })
}

func strPtr(s string) *string { return &s }

func validCreate() domain.CreateUserInput {
	return domain.CreateUserInput{
		Name:      "Ana Silva",
		Email:     "Ana@Ex.com",
		Password:  "secret1",
		BirthDate: domain.NewDate(2000, time.January, 1),
	}
}

func fields(vs Violations) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Field)
	}
	return out
}

func TestValidateCreate_Valid(t *testing.T) {
	v := newTestValidator()
	if vs := v.ValidateCreate(validCreate()); len(vs) != 0 {
		t.Fatalf("expected no violations, got %v", vs)
	}
	in := validCreate()
	in.Phone = strPtr("")
	if vs := v.ValidateCreate(in); len(vs) != 0 {
		t.Fatalf("empty phone is absent, got %v", vs)
	}
}

func TestValidateCreate_FieldRules(t *testing.T) {
	v := newTestValidator()
	cases := []struct {
		name   string
		mutate func(*domain.CreateUserInput)
		field  string
		msg    string
	}{
		{"name missing", func(in *domain.CreateUserInput) { in.Name = "  " }, "name", "name is required"},
		{"name too short", func(in *domain.CreateUserInput) { in.Name = "Al" }, "name", "name must be between 3 and 100 characters"},
		{"name too long", func(in *domain.CreateUserInput) { in.Name = strings.Repeat("a", 101) }, "name", "name must be between 3 and 100 characters"},
		{"email missing", func(in *domain.CreateUserInput) { in.Email = "" }, "email", "email is required"},
		{"email malformed", func(in *domain.CreateUserInput) { in.Email = "ana.ex.com" }, "email", "email must be a valid email address"},
		{"password missing", func(in *domain.CreateUserInput) { in.Password = "" }, "password", "password is required"},
		{"password short", func(in *domain.CreateUserInput) { in.Password = "12345" }, "password", "password must be at least 6 characters"},
		{"birth date missing", func(in *domain.CreateUserInput) { in.BirthDate = domain.Date{} }, "birthDate", "birthDate is required"},
		{"underage", func(in *domain.CreateUserInput) { in.BirthDate = domain.NewDate(2010, time.May, 5) }, "birthDate", "user must be at least 18 years old"},
		{"phone malformed", func(in *domain.CreateUserInput) { in.Phone = strPtr("12345") }, "phone", "phone must match (XX) XXXXX-XXXX or (XX) XXXX-XXXX"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreate()
			tc.mutate(&in)
			vs := v.ValidateCreate(in)
			if len(vs) != 1 {
				t.Fatalf("expected exactly one violation, got %v", vs)
			}
			if vs[0].Field != tc.field || vs[0].Message != tc.msg {
				t.Fatalf("unexpected violation %+v", vs[0])
			}
		})
	}
}

func TestValidateCreate_OrderAndOnePerField(t *testing.T) {
	v := newTestValidator()
	vs := v.ValidateCreate(domain.CreateUserInput{Phone: strPtr("abc")})
	got := fields(vs)
	want := []string{"name", "email", "password", "birthDate", "phone"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if vs[0].Message != "name is required" {
		t.Fatalf("expected the required message to win, got %q", vs[0].Message)
	}
	if vs.Error() == "" {
		t.Fatalf("expected a non-empty error string")
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator()
	in := domain.UpdateUserInput{
		Name:      "Ana Silva",
		Email:     "ana@ex.com",
		BirthDate: domain.NewDate(1990, time.June, 1),
		Phone:     strPtr("(11) 1234-5678"),
		Active:    false,
	}
	if vs := v.ValidateUpdate(in); len(vs) != 0 {
		t.Fatalf("expected no violations, got %v", vs)
	}
	in.BirthDate = domain.NewDate(2008, time.October, 17)
	vs := v.ValidateUpdate(in)
	if len(vs) != 1 || vs[0].Field != "birthDate" {
		t.Fatalf("expected birthDate violation, got %v", vs)
	}
}

func TestAgeBoundary(t *testing.T) {
	v := newTestValidator()
	in := validCreate()

	in.BirthDate = domain.NewDate(2008, time.October, 16)
	if vs := v.ValidateCreate(in); len(vs) != 0 {
		t.Fatalf("18th birthday today must pass, got %v", vs)
	}
	in.BirthDate = domain.NewDate(2008, time.October, 17)
	if vs := v.ValidateCreate(in); len(vs) != 1 {
		t.Fatalf("one day short must fail, got %v", vs)
	}
}

func TestAgeOn(t *testing.T) {
	cases := []struct {
		birth time.Time
		on    time.Time
		want  int
	}{
		{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), 26},
		{time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 12, 30, 23, 59, 0, 0, time.UTC), 25},
		{time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), 26},
		{time.Date(2008, 2, 29, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), 17},
		{time.Date(2008, 2, 29, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 18},
		// evaluated on the UTC calendar date
		{time.Date(2008, 10, 16, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 15, 23, 0, 0, 0, time.FixedZone("BRT", -3*3600)), 18},
	}
	for _, tc := range cases {
		if got := AgeOn(tc.birth, tc.on); got != tc.want {
			t.Errorf("AgeOn(%s, %s) = %d, want %d", tc.birth.Format(domain.DateLayout), tc.on, got, tc.want)
		}
	}
}

func TestPhonePattern(t *testing.T) {
	ok := []string{"(11) 91234-5678", "(11) 1234-5678", "11912345678", "1112345678", "(21)98765-4321", "11 1234-5678"}
	bad := []string{"12345", "(00) 91234-5678", "(11) 123-4567", "(11) 91234-56789", "phone", "+55 11 91234-5678", "(11) 0123-4567", "(11) 90000-0000"}
	for _, p := range ok {
		if !PhonePattern.MatchString(p) {
			t.Errorf("expected %q to match", p)
		}
	}
	for _, p := range bad {
		if PhonePattern.MatchString(p) {
			t.Errorf("expected %q to be rejected", p)
		}
	}
}
