package lobby

import (
	"BetHub/middleware"
	midsec "BetHub/middleware/security"
	"BetHub/module/lobby/service"
	"BetHub/tools/errs"
	"BetHub/tools/resp"

	"github.com/gin-gonic/gin"
)

var svc *service.Service

// Init 注入业务实例（main 组装，测试可替换）
func Init(s *service.Service) { svc = s }

func Service() *service.Service { return svc }

func HandlerGet(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		resp.Fail(c, errs.ErrArgs.WithDetail("lobby id required"))
		return
	}
	view, err := svc.GetView(c.Request.Context(), id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"lobby": view})
}

type repairReq struct {
	LobbyID string `json:"lobbyId"`
}

// HandlerRepair 尽力而为修复，无保证效果
func HandlerRepair(c *gin.Context) {
	var req repairReq
	if err := c.ShouldBindJSON(&req); err != nil || req.LobbyID == "" {
		resp.Fail(c, errs.ErrArgs.WithDetail("lobbyId required"))
		return
	}
	if err := svc.Repair(c.Request.Context(), req.LobbyID); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"lobbyId": req.LobbyID})
}

type readyReq struct {
	IsReady bool `json:"isReady"`
}

func HandlerReady(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	var req readyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c, errs.ErrArgs.WithDetail("bad body"))
		return
	}
	if err := svc.SetReady(c.Request.Context(), c.Param("id"), uid, req.IsReady); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"isReady": req.IsReady})
}

type startReq struct {
	GameMode string `json:"gameMode"`
}

func HandlerStart(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	var req startReq
	_ = c.ShouldBindJSON(&req)
	matchID, err := svc.Start(c.Request.Context(), c.Param("id"), uid, req.GameMode)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"matchId": matchID, "redirect": "/match/" + matchID})
}

func HandlerLeave(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	if err := svc.Leave(c.Request.Context(), c.Param("id"), uid); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, nil)
}

func RegisterRoutes(r gin.IRoutes) {
	middleware.GET(r, "/api/lobby/:id", HandlerGet, middleware.RouteOpt{IsAuth: true})
	middleware.PATCH(r, "/api/lobby", HandlerRepair, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/api/lobby/:id/ready", HandlerReady, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/api/lobby/:id/start", HandlerStart, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/api/lobby/:id/leave", HandlerLeave, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/ws/lobby/:id", HandlerEvents, middleware.RouteOpt{IsAuth: false})
}
