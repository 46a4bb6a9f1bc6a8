package service

import (
	"context"
	"fmt"
	"time"

	"BetHub/logger"
	invitemodel "BetHub/module/invite/model"
	lobbyservice "BetHub/module/lobby/service"
	notifymodel "BetHub/module/notify/model"
	notifyservice "BetHub/module/notify/service"
	userservice "BetHub/module/user/service"
	"BetHub/service/kafka"
	"BetHub/tools/errs"
	ids "BetHub/tools/ids"
	"BetHub/tools/safe"

	pkgerr "github.com/pkg/errors"
)

// 动作
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// Service 邀请业务。主写（邀请插入、终态迁移、成员登记）失败上抛；
// 通知、审计、系统消息等旁路失败记日志后吞掉。
type Service struct {
	store   Store
	lobbies *lobbyservice.Service
	dir     userservice.Directory
	notices *notifyservice.Service
}

func NewService(store Store, lobbies *lobbyservice.Service, dir userservice.Directory, notices *notifyservice.Service) *Service {
	safe.MustNotNil(store, "invite store")
	safe.MustNotNil(lobbies, "lobby service")
	safe.MustNotNil(dir, "user directory")
	safe.MustNotNil(notices, "notify service")
	return &Service{store: store, lobbies: lobbies, dir: dir, notices: notices}
}

func (s *Service) Store() Store { return s.store }

type SendParams struct {
	InviteeID string
	LobbyID   string // 缺省时用邀请人自身 id 作大厅键
	GameMode  string
}

// Send 发起邀请：校验受邀人存在，大厅按需创建，插入 pending 记录。
// 同三元组已有 pending 时仍允许再发（不去重）。
func (s *Service) Send(ctx context.Context, inviterID string, in SendParams) (*invitemodel.Invite, error) {
	if inviterID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if in.InviteeID == "" {
		return nil, errs.ErrArgs.WithDetail("inviteeId required")
	}
	if _, err := s.dir.GetUser(ctx, in.InviteeID); err != nil {
		return nil, err
	}
	lobbyID := in.LobbyID
	if lobbyID == "" {
		lobbyID = inviterID
	}
	l, err := s.lobbies.EnsureForInviter(ctx, lobbyID, inviterID, in.GameMode)
	if err != nil {
		return nil, err
	}

	inv := &invitemodel.Invite{
		InviteID:   ids.GenerateString(),
		InviterID:  inviterID,
		InviteeID:  in.InviteeID,
		LobbyID:    l.LobbyID,
		GameMode:   in.GameMode,
		Status:     invitemodel.StatusPending,
		CreateTime: time.Now(),
	}
	if err := s.store.Insert(ctx, inv); err != nil {
		return nil, err
	}

	inviter := userservice.Snapshot(ctx, s.dir, inviterID)
	if _, err := s.notices.Create(ctx, notifyservice.CreateParams{
		RecipientID: in.InviteeID,
		Type:        notifymodel.TypeLobbyInvite,
		Title:       "Lobby invite",
		Message:     fmt.Sprintf("%s invited you to a lobby", inviter.Username),
		Payload: map[string]any{
			"invite_id": inv.InviteID,
			"lobby_id":  inv.LobbyID,
			"status":    inv.Status.String(),
		},
	}); err != nil {
		logger.Warnf("invite notification failed, invite=%s: %v", inv.InviteID, err)
	}
	s.audit(inv)
	return inv, nil
}

type ResolveResult struct {
	Status   string `json:"status"`
	LobbyID  string `json:"lobbyId,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Resolve 受邀人处理邀请。接受路径按因果序执行：
// 邀请终态 → 大厅成员集 → 成员明细 → 系统消息 → 通知已读。
// 跨库不保证事务，依赖插入前查重让客户端重试幂等。
func (s *Service) Resolve(ctx context.Context, responderID, inviteID, action string) (*ResolveResult, error) {
	if responderID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if inviteID == "" {
		return nil, errs.ErrArgs.WithDetail("invitationId required")
	}
	inv, err := s.store.Get(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.InviteeID != responderID {
		return nil, errs.ErrConflict.WithDetail("not the invitee")
	}
	if inv.Status != invitemodel.StatusPending {
		return nil, errs.ErrConflict.WithDetail("invite already " + inv.Status.String())
	}

	switch action {
	case ActionReject:
		return s.reject(ctx, inv)
	case ActionAccept:
		return s.accept(ctx, inv)
	default:
		return nil, errs.ErrArgs.WithDetail("action must be accept or reject")
	}
}

func (s *Service) reject(ctx context.Context, inv *invitemodel.Invite) (*ResolveResult, error) {
	if err := s.store.Resolve(ctx, inv.InviteID, invitemodel.StatusPending, invitemodel.StatusRejected); err != nil {
		return nil, err
	}
	inv.Status = invitemodel.StatusRejected
	s.markRead(ctx, inv.InviteID)
	s.audit(inv)
	return &ResolveResult{Status: inv.Status.String()}, nil
}

func (s *Service) accept(ctx context.Context, inv *invitemodel.Invite) (*ResolveResult, error) {
	l, err := s.lobbies.Store().Get(ctx, inv.LobbyID)
	if err != nil {
		if pkgerr.Is(err, errs.ErrRecordNotFound) {
			// 大厅已不在：邀请转 expired，调用方得到 Gone 而不是崩溃
			return nil, s.expireAndReport(ctx, inv, errs.ErrGone.WithDetail("lobby "+inv.LobbyID+" vanished"))
		}
		return nil, err
	}
	if l.IsFull() && !l.HasMember(inv.InviteeID) {
		return nil, s.expireAndReport(ctx, inv, errs.ErrConflict.WithDetail("lobby at capacity"))
	}

	if err := s.store.Resolve(ctx, inv.InviteID, invitemodel.StatusPending, invitemodel.StatusAccepted); err != nil {
		return nil, err
	}
	inv.Status = invitemodel.StatusAccepted
	if err := s.lobbies.Join(ctx, inv.LobbyID, inv.InviteeID); err != nil {
		return nil, err
	}
	s.markRead(ctx, inv.InviteID)
	s.audit(inv)
	return &ResolveResult{
		Status:   inv.Status.String(),
		LobbyID:  inv.LobbyID,
		Redirect: "/lobby/" + inv.LobbyID,
	}, nil
}

func (s *Service) expireAndReport(ctx context.Context, inv *invitemodel.Invite, report error) error {
	if err := s.store.Resolve(ctx, inv.InviteID, invitemodel.StatusPending, invitemodel.StatusExpired); err != nil {
		logger.Warnf("expire invite failed, invite=%s: %v", inv.InviteID, err)
	} else {
		inv.Status = invitemodel.StatusExpired
		s.markRead(ctx, inv.InviteID)
		s.audit(inv)
	}
	return report
}

// Expire 管理/超时入口：pending → expired
func (s *Service) Expire(ctx context.Context, inviteID string) error {
	inv, err := s.store.Get(ctx, inviteID)
	if err != nil {
		return err
	}
	if err := s.store.Resolve(ctx, inviteID, invitemodel.StatusPending, invitemodel.StatusExpired); err != nil {
		return err
	}
	inv.Status = invitemodel.StatusExpired
	s.markRead(ctx, inviteID)
	s.audit(inv)
	return nil
}

func (s *Service) ListPending(ctx context.Context, inviteeID string) ([]invitemodel.Invite, error) {
	return s.store.ListPendingByInvitee(ctx, inviteeID)
}

func (s *Service) markRead(ctx context.Context, inviteID string) {
	if err := s.notices.MarkReadByInvite(ctx, inviteID); err != nil {
		logger.Warnf("mark notification read failed, invite=%s: %v", inviteID, err)
	}
}

// audit 生命周期审计流，旁路
func (s *Service) audit(inv *invitemodel.Invite) {
	if !kafka.Available() {
		return
	}
	if err := kafka.PublishInviteEvent(kafka.InviteEvent{
		InviteID:  inv.InviteID,
		LobbyID:   inv.LobbyID,
		InviterID: inv.InviterID,
		InviteeID: inv.InviteeID,
		Status:    inv.Status.String(),
		TsMS:      time.Now().UnixMilli(),
	}); err != nil {
		logger.Warnf("invite audit publish failed, invite=%s: %v", inv.InviteID, err)
	}
}
