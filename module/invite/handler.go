package invite

import (
	"BetHub/middleware"
	midsec "BetHub/middleware/security"
	"BetHub/module/invite/service"
	"BetHub/tools/errs"
	"BetHub/tools/resp"

	"github.com/gin-gonic/gin"
)

var svc *service.Service

func Init(s *service.Service) { svc = s }

func Service() *service.Service { return svc }

type sendReq struct {
	InviteeID string `json:"inviteeId"`
	LobbyID   string `json:"lobbyId"`
	GameMode  string `json:"gameMode"`
}

func HandlerSend(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c, errs.ErrArgs.WithDetail("bad body"))
		return
	}
	inv, err := svc.Send(c.Request.Context(), uid, service.SendParams{
		InviteeID: req.InviteeID,
		LobbyID:   req.LobbyID,
		GameMode:  req.GameMode,
	})
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"inviteId": inv.InviteID, "lobbyId": inv.LobbyID})
}

type resolveReq struct {
	InvitationID string `json:"invitationId"`
	Action       string `json:"action"`
}

func HandlerResolve(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	var req resolveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c, errs.ErrArgs.WithDetail("bad body"))
		return
	}
	out, err := svc.Resolve(c.Request.Context(), uid, req.InvitationID, req.Action)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"inviteStatus": out.Status, "lobbyId": out.LobbyID, "redirect": out.Redirect})
}

// HandlerReject DELETE ?inviteId= 的拒绝旁路
func HandlerReject(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	out, err := svc.Resolve(c.Request.Context(), uid, c.Query("inviteId"), service.ActionReject)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"inviteStatus": out.Status})
}

func HandlerListPending(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		resp.Fail(c, errs.ErrUnauthenticated)
		return
	}
	list, err := svc.ListPending(c.Request.Context(), uid)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"invites": list})
}

func RegisterRoutes(r gin.IRoutes) {
	middleware.POST(r, "/api/lobby-invite", HandlerSend, middleware.RouteOpt{IsAuth: true})
	middleware.PATCH(r, "/api/lobby-invite", HandlerResolve, middleware.RouteOpt{IsAuth: true})
	middleware.DELETE(r, "/api/lobby-invite", HandlerReject, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/api/lobby-invite", HandlerListPending, middleware.RouteOpt{IsAuth: true})
}
