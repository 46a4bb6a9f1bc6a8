package notify

import (
	"BetHub/middleware"
	midsec "BetHub/middleware/security"
	"BetHub/module/notify/service"
	"BetHub/tools/errs"
	"BetHub/tools/resp"

	"github.com/gin-gonic/gin"
)

var svc *service.Service

func Init(s *service.Service) { svc = s }

func Service() *service.Service { return svc }

func HandlerList(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	unreadOnly := c.Query("unread") == "true"
	list, err := svc.List(c.Request.Context(), uid, unreadOnly)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"notifications": list})
}

type readReq struct {
	NotifyID string `json:"notifyId"`
}

func HandlerMarkRead(c *gin.Context) {
	if _, ok := midsec.CurrentUserID(c); !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	var req readReq
	if err := c.ShouldBindJSON(&req); err != nil || req.NotifyID == "" {
		resp.Fail(c, errs.ErrArgs.WithDetail("notifyId required"))
		return
	}
	if err := svc.MarkRead(c.Request.Context(), req.NotifyID); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, nil)
}

// HandlerClear 管理入口：清空某人的全部通知，不属于核心状态机
func HandlerClear(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	if err := svc.Clear(c.Request.Context(), uid); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, nil)
}

func RegisterRoutes(r gin.IRoutes) {
	middleware.GET(r, "/api/notifications", HandlerList, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(r, "/api/notifications/read", HandlerMarkRead, middleware.RouteOpt{IsAuth: true})
	middleware.DELETE(r, "/api/notifications", HandlerClear, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/ws/notifications", HandlerStream, middleware.RouteOpt{IsAuth: true})
}
