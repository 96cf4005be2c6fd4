package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-users/internal/domain"
	"go-gin-gorm-users/internal/transport/http/handler"
	mdw "go-gin-gorm-users/internal/transport/http/middleware"
	"go-gin-gorm-users/internal/validation"
)

// stubService 只返回空列表 / 404
type stubService struct{}

func (stubService) List(context.Context) ([]domain.UserView, error) { return []domain.UserView{}, nil }
func (stubService) Get(context.Context, int64) (domain.UserView, error) {
	return domain.UserView{}, domain.ErrNotFound
}
func (stubService) Create(context.Context, domain.CreateUserInput) (domain.UserView, error) {
	return domain.UserView{ID: 1}, nil
}
func (stubService) Update(context.Context, int64, domain.UpdateUserInput) (domain.UserView, error) {
	return domain.UserView{}, domain.ErrNotFound
}
func (stubService) Remove(context.Context, int64) error { return domain.ErrNotFound }

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := handler.NewUserHandler(nil, stubService{}, validation.New(time.Now))
	return NewAPIEngine(nil, h, Options{RequestTimeout: time.Second, MaxBodyBytes: 64, MaxInFlight: 4})
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(newEngine(t), "/health")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"ok":1}` {
		t.Fatalf("unexpected health %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(mdw.KeyRequestID) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newEngine(t)
	get(r, "/users")
	rec := get(r, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected prometheus exposition, got %d", rec.Code)
	}
}

func TestUsersMounted(t *testing.T) {
	r := newEngine(t)
	if rec := get(r, "/users"); rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("unexpected list %d %s", rec.Code, rec.Body.String())
	}
	if rec := get(r, "/users/5"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBodyLimitThroughChain(t *testing.T) {
	r := newEngine(t)
	body := `{"name":"` + strings.Repeat("a", 200) + `","email":"a@b.co","password":"secret1","birthDate":"2000-01-01"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d %s", rec.Code, rec.Body.String())
	}
}
