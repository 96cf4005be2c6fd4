package ez

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "go-gin-gorm-users/internal/transport/http/response"
)

type EZ struct {
	g   gin.IRoutes
	log *zap.Logger
}

func New(g gin.IRoutes, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// 绑定方式
type Binder string

const (
	BindJSON Binder = "json" // 从 JSON 绑定
	BindNone Binder = "none" // 不绑定，自己从 c.Param 取
)

// AErr 统一错误对象；Code 即 HTTP 状态码
type AErr struct {
	Code int
	Msg  string
	Data any
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string, data any) error {
	return &AErr{Code: resp.CodeBadRequest, Msg: msg, Data: data}
}

func NotFound(msg string) error { return &AErr{Code: resp.CodeNotFound, Msg: msg} }

func Conflict(msg string) error { return &AErr{Code: resp.CodeConflict, Msg: msg} }

func TooLarge(msg string) error { return &AErr{Code: resp.CodeTooLarge, Msg: msg} }

// Validation 字段级错误：data = {"errors": [...]}
func Validation(errs any) error {
	return &AErr{Code: resp.CodeBadRequest, Msg: "validation failed", Data: gin.H{"errors": errs}}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method string // "GET" | "POST" | "PUT" | "DELETE"
	Path   string // 例："/users/:id"
	Binder Binder

	// 成功状态码，默认 200；204 不写 body
	Status int

	// 绑定后、Handler 前的校验
	Check   func(in *I) error
	Handler func(c *gin.Context, in *I) (O, error)

	// Location 非空时写 Location 头（201 场景）
	Location func(out O) string
}

// RegisterAction 绑定 → 校验 → 执行 → 统一错误映射
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		if a.Binder == BindJSON {
			if err := c.ShouldBindJSON(&in); err != nil {
				e.fail(c, bindError(err))
				return
			}
		}
		if a.Check != nil {
			if err := a.Check(&in); err != nil {
				e.fail(c, err)
				return
			}
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		if a.Location != nil {
			if loc := a.Location(out); loc != "" {
				c.Header("Location", loc)
			}
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func bindError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return TooLarge("request body too large")
	}
	return BadRequest("invalid request body", gin.H{"detail": err.Error()})
}

// fail 已分类错误按 AErr 输出；其余一律 500，细节只进日志
func (e EZ) fail(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) && ae.Code < http.StatusInternalServerError {
		c.AbortWithStatusJSON(ae.Code, resp.New(ae.Code, ae.Msg, ae.Data))
		return
	}
	_ = c.Error(err)
	if errors.Is(err, context.DeadlineExceeded) {
		e.log.Warn("request deadline exceeded", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, resp.Error(resp.CodeGatewayTimeout, "timeout"))
		return
	}
	e.log.Error("unexpected error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("rid", c.GetString("X-Request-ID")),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
}
