package user

import (
	"BetHub/global"
	"BetHub/logger"
	"BetHub/middleware"
	midsec "BetHub/middleware/security"
	"BetHub/module/user/service"
	"BetHub/service/storage"
	"BetHub/tools/errs"
	ids "BetHub/tools/ids"
	"BetHub/tools/resp"

	"github.com/gin-gonic/gin"
)

var dir service.Directory = service.NewMongoDirectory()

// UseDirectory 允许替换目录实现（测试注入）
func UseDirectory(d service.Directory) { dir = d }

func Directory() service.Directory { return dir }

type loginReq struct {
	UserID string `json:"userId"`
}

// HandlerLogin 演示级登录：仅签发身份令牌，不做口令校验
func HandlerLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		resp.Fail(c, errs.ErrArgs.WithDetail("userId required"))
		return
	}
	out, err := service.Login(global.GetJwtOptions(), service.LoginParams{UserID: req.UserID})
	if err != nil {
		resp.Fail(c, err)
		return
	}
	// 上线标记尽力而为，失败不影响登录
	if err := storage.PresenceOnline(out.UserID, ids.GenerateString(), global.PresenceTTL()); err != nil {
		logger.Warnf("presence online failed, user=%s: %v", out.UserID, err)
	}
	resp.OK(c, gin.H{"token": out.AccessToken, "userId": out.UserID, "expireAt": out.ExpireAt})
}

func HandlerMe(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	u, err := dir.GetUser(c.Request.Context(), uid)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"user": u})
}

func HandlerLogout(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	if err := storage.PresenceOffline(uid); err != nil {
		logger.Warnf("presence offline failed, user=%s: %v", uid, err)
	}
	resp.OK(c, nil)
}

func RegisterRoutes(r gin.IRoutes) {
	middleware.POST(r, "/api/login", HandlerLogin, middleware.RouteOpt{IsAuth: false})
	middleware.POST(r, "/api/logout", HandlerLogout, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/api/me", HandlerMe, middleware.RouteOpt{IsAuth: true})
}
