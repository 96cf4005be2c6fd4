package ez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type echoIn struct {
	Name string `json:"name"`
}

type echoOut struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func setup(t *testing.T, a Action[echoIn, echoOut]) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	RegisterAction(New(r, zap.New(core)), a)
	return r, logs
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return e
}

func TestRegisterAction_Created(t *testing.T) {
	r, _ := setup(t, Action[echoIn, echoOut]{
		Method: http.MethodPost,
		Path:   "/things",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *echoIn) (echoOut, error) {
			return echoOut{ID: 7, Name: in.Name}, nil
		},
		Location: func(o echoOut) string { return fmt.Sprintf("/things/%d", o.ID) },
	})

	rec := do(r, http.MethodPost, "/things", `{"name":"x"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/things/7" {
		t.Fatalf("unexpected location %q", rec.Header().Get("Location"))
	}
	var out echoOut
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out.Name != "x" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestRegisterAction_NoContent(t *testing.T) {
	r, _ := setup(t, Action[echoIn, echoOut]{
		Method:  http.MethodDelete,
		Path:    "/things/:id",
		Binder:  BindNone,
		Status:  http.StatusNoContent,
		Handler: func(c *gin.Context, _ *echoIn) (echoOut, error) { return echoOut{}, nil },
	})
	rec := do(r, http.MethodDelete, "/things/1", "")
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRegisterAction_BadJSON(t *testing.T) {
	called := false
	r, _ := setup(t, Action[echoIn, echoOut]{
		Method: http.MethodPost,
		Path:   "/things",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *echoIn) (echoOut, error) {
			called = true
			return echoOut{}, nil
		},
	})
	rec := do(r, http.MethodPost, "/things", `{"name":`)
	if rec.Code != http.StatusBadRequest || decode(t, rec).Code != 400 {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
	if called {
		t.Fatalf("handler must not run on bind failure")
	}
}

func TestRegisterAction_BodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 4)
		c.Next()
	})
	RegisterAction(New(r, nil), Action[echoIn, echoOut]{
		Method:  http.MethodPost,
		Path:    "/things",
		Binder:  BindJSON,
		Handler: func(c *gin.Context, in *echoIn) (echoOut, error) { return echoOut{}, nil },
	})
	rec := do(r, http.MethodPost, "/things", `{"name":"much too long"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterAction_CheckFails(t *testing.T) {
	r, _ := setup(t, Action[echoIn, echoOut]{
		Method: http.MethodPost,
		Path:   "/things",
		Binder: BindJSON,
		Check: func(in *echoIn) error {
			if in.Name == "" {
				return Validation([]map[string]string{{"field": "name", "message": "name is required"}})
			}
			return nil
		},
		Handler: func(c *gin.Context, in *echoIn) (echoOut, error) { return echoOut{}, nil },
	})
	rec := do(r, http.MethodPost, "/things", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	e := decode(t, rec)
	if e.Msg != "validation failed" || !strings.Contains(string(e.Data), `"field":"name"`) {
		t.Fatalf("unexpected envelope %+v data=%s", e, e.Data)
	}
}

func TestRegisterAction_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
		logged bool
	}{
		{"not found", NotFound("thing not found"), http.StatusNotFound, "thing not found", false},
		{"conflict", Conflict("taken"), http.StatusConflict, "taken", false},
		{"deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout", true},
		{"unexpected", errors.New("db exploded: secret dsn"), http.StatusInternalServerError, "internal error", true},
		{"server aerr", &AErr{Code: http.StatusInternalServerError, Msg: "db error", Err: errors.New("boom")}, http.StatusInternalServerError, "internal error", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, logs := setup(t, Action[echoIn, echoOut]{
				Method:  http.MethodGet,
				Path:    "/things/:id",
				Binder:  BindNone,
				Handler: func(c *gin.Context, _ *echoIn) (echoOut, error) { return echoOut{}, tc.err },
			})
			rec := do(r, http.MethodGet, "/things/1", "")
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			e := decode(t, rec)
			if e.Code != tc.status || e.Msg != tc.msg {
				t.Fatalf("unexpected envelope %+v", e)
			}
			if strings.Contains(rec.Body.String(), "secret") || strings.Contains(rec.Body.String(), "boom") {
				t.Fatalf("internal detail leaked: %s", rec.Body.String())
			}
			if got := logs.Len() > 0; got != tc.logged {
				t.Fatalf("logged=%v, want %v", got, tc.logged)
			}
		})
	}
}
