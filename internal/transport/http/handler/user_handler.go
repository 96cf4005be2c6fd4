package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-users/internal/domain"
	httpez "go-gin-gorm-users/internal/transport/http/ez"
	"go-gin-gorm-users/internal/validation"
)

// UserService handler 依赖的最小接口
type UserService interface {
	List(ctx context.Context) ([]domain.UserView, error)
	Get(ctx context.Context, id int64) (domain.UserView, error)
	Create(ctx context.Context, in domain.CreateUserInput) (domain.UserView, error)
	Update(ctx context.Context, id int64, in domain.UpdateUserInput) (domain.UserView, error)
	Remove(ctx context.Context, id int64) error
}

type UserHandler struct {
	log *zap.Logger
	svc UserService
	v   *validation.Validator
}

func NewUserHandler(l *zap.Logger, svc UserService, v *validation.Validator) *UserHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserHandler{log: l, svc: svc, v: v}
}

// Mount 挂载 /users 路由
func (h *UserHandler) Mount(g gin.IRoutes) {
	e := httpez.New(g, h.log)

	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.UserView]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.UserView, error) {
			return h.svc.List(c.Request.Context())
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, domain.UserView]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.UserView, error) {
			id, err := userID(c)
			if err != nil {
				return domain.UserView{}, err
			}
			out, err := h.svc.Get(c.Request.Context(), id)
			return out, mapErr(err)
		},
	})

	httpez.RegisterAction(e, httpez.Action[domain.CreateUserInput, domain.UserView]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Check: func(in *domain.CreateUserInput) error {
			if vs := h.v.ValidateCreate(*in); len(vs) > 0 {
				return httpez.Validation(vs)
			}
			return nil
		},
		Handler: func(c *gin.Context, in *domain.CreateUserInput) (domain.UserView, error) {
			out, err := h.svc.Create(c.Request.Context(), *in)
			return out, mapErr(err)
		},
		Location: func(out domain.UserView) string { return "/users/" + strconv.FormatInt(out.ID, 10) },
	})

	httpez.RegisterAction(e, httpez.Action[domain.UpdateUserInput, domain.UserView]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Check: func(in *domain.UpdateUserInput) error {
			if vs := h.v.ValidateUpdate(*in); len(vs) > 0 {
				return httpez.Validation(vs)
			}
			return nil
		},
		Handler: func(c *gin.Context, in *domain.UpdateUserInput) (domain.UserView, error) {
			id, err := userID(c)
			if err != nil {
				return domain.UserView{}, err
			}
			out, err := h.svc.Update(c.Request.Context(), id, *in)
			return out, mapErr(err)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			id, err := userID(c)
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, mapErr(h.svc.Remove(c.Request.Context(), id))
		},
	})
}

// userID 非数字或非正数一律按不存在处理
func userID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpez.NotFound(domain.ErrNotFound.Error())
	}
	return id, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return httpez.NotFound(domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrEmailConflict):
		return httpez.Conflict(domain.ErrEmailConflict.Error())
	default:
		return err
	}
}
