// Package ez 一行注册一个接口：绑定入参、角色校验、统一错误映射
package ez

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"massage-booking-api/internal/domain"
	mdw "massage-booking-api/internal/transport/http/middleware"
	resp "massage-booking-api/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定，空 body 视为零值
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Group 子分组，可附加中间件
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log}
}

// Routes 模块挂载点：Public 匿名可访问，Private 已过 AuthJWT
type Routes struct {
	Public  EZ
	Private EZ
}

// Action 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/auth/login"、"/admin/approve/:id"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录
	Roles   []string // 满足其一即可；为空表示任意已登录用户
	Status  int      // 成功时的 HTTP 状态，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// Register 在当前分组下注册动作接口
func Register[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth || len(a.Roles) > 0 {
			p, ok := mdw.PrincipalFrom(c)
			if !ok {
				resp.Abort(c, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !p.HasAnyRole(a.Roles...) {
				resp.Abort(c, http.StatusForbidden, "forbidden")
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			if bindErr = c.ShouldBindJSON(&in); errors.Is(bindErr, io.EOF) {
				bindErr = nil
			}
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(bindErr, &tooLarge) {
				resp.Abort(c, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			e.log.Debug("bind request", zap.String("path", c.FullPath()), zap.Error(bindErr))
			resp.Abort(c, http.StatusBadRequest, "invalid request body")
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			e.Fail(c, err)
			return
		}
		c.JSON(status, resp.OK(out))
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

// Principal 已通过 AuthJWT 的调用方
func Principal(c *gin.Context) domain.Principal {
	p, _ := mdw.PrincipalFrom(c)
	return p
}
