package security

import (
	"net/http"
	"strings"

	"BetHub/tools/errs"
	jwtlib "BetHub/tools/security"

	"github.com/gin-gonic/gin"
)

// —— context key ——
// 后续模块统一用这个 key 读取当前登录用户
const (
	CtxUserIDKey = "currentUserId" // string
	CtxTokenKey  = "authorization" // string
)

type Options struct {
	// 读取哪个请求头
	HeaderToken               string // 默认 "authorization"
	EnableAuthorizationBearer bool   // 默认 true

	JWT jwtlib.Options
}

func DefaultOptions(jwtOpts jwtlib.Options) *Options {
	return &Options{
		HeaderToken:               CtxTokenKey,
		EnableAuthorizationBearer: true,
		JWT:                       jwtOpts,
	}
}

// Middleware 解析请求身份：校验 JWT 并把 userId 写入 gin context。
// 所有核心操作只消费解析结果，不自己碰请求头。
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token = strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		// 兼容 Authorization: Bearer xxx
		if token == "" && opts.EnableAuthorizationBearer {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrUnauthenticated)
			return
		}

		claims, err := jwtlib.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenExpired.WithDetail(err.Error()))
			return
		}
		uid := claims.UserID()
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrUnauthenticated)
			return
		}

		c.Set(CtxTokenKey, token)
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

// CurrentUserID 从 gin context 读取当前用户；未认证返回 false
func CurrentUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return "", false
	}
	uid, ok := v.(string)
	return uid, ok && uid != ""
}
