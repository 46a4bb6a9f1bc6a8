package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	invitemodel "BetHub/module/invite/model"
	lobbymodel "BetHub/module/lobby/model"
	lobbyservice "BetHub/module/lobby/service"
	"BetHub/module/match"
	notifyservice "BetHub/module/notify/service"
	usermodel "BetHub/module/user/model"
	userservice "BetHub/module/user/service"
	"BetHub/tools/errs"
)

// lobbyMemStore 叠加测试辅助的消息读取
type lobbyMemStore interface {
	lobbyservice.Store
	Messages(lobbyID string) []lobbymodel.LobbyMessage
}

type env struct {
	invites    *Service
	lobbies    *lobbyservice.Service
	lobbyStore lobbyMemStore
	notices    *notifyservice.Service
	dir        userservice.Directory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	dir := userservice.NewMemDirectory()
	for _, u := range []*usermodel.User{
		{UserID: "A", Username: "alice", Level: 3},
		{UserID: "B", Username: "bob", Level: 1},
	} {
		if err := dir.UpsertUser(ctx, u); err != nil {
			t.Fatalf("seed user %s: %v", u.UserID, err)
		}
	}
	ls := lobbyservice.NewMemStore()
	lobbies := lobbyservice.NewService(ls, dir, match.NewMemCreator())
	notices := notifyservice.NewService(notifyservice.NewMemStore())
	return &env{
		invites:    NewService(NewMemStore(), lobbies, dir, notices),
		lobbies:    lobbies,
		lobbyStore: ls,
		notices:    notices,
		dir:        dir,
	}
}

func TestSendCreatesLobbyOnDemand(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	inv, err := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if inv.Status != invitemodel.StatusPending {
		t.Errorf("new invite status = %s, want pending", inv.Status)
	}
	// 未给 lobbyId 时用邀请人 id 作大厅键
	if inv.LobbyID != "A" {
		t.Errorf("lobby key = %s, want inviter id", inv.LobbyID)
	}
	l, err := e.lobbyStore.Get(ctx, "A")
	if err != nil {
		t.Fatalf("lobby not auto-created: %v", err)
	}
	if l.OwnerID != "A" || len(l.MemberIDs) != 1 || l.MemberIDs[0] != "A" {
		t.Errorf("auto lobby owner/members = %s/%v, want A/{A}", l.OwnerID, l.MemberIDs)
	}
	if l.Kind != lobbymodel.KindDuo || l.Capacity != 2 || l.Status != lobbymodel.StatusActive {
		t.Errorf("auto lobby kind/capacity/status = %s/%d/%s", l.Kind, l.Capacity, l.Status)
	}
	m, err := e.lobbyStore.GetMember(ctx, "A", "A")
	if err != nil {
		t.Fatalf("owner member record missing: %v", err)
	}
	if !m.IsLeader || m.Username != "alice" {
		t.Errorf("owner record leader/username = %v/%s", m.IsLeader, m.Username)
	}

	// 受邀人收到未读通知
	list, err := e.notices.List(ctx, "B", true)
	if err != nil || len(list) != 1 {
		t.Fatalf("invitee notifications = %d (%v), want 1", len(list), err)
	}
	if list[0].Payload["invite_id"] != inv.InviteID {
		t.Errorf("notification payload invite_id = %v", list[0].Payload["invite_id"])
	}
}

func TestSendValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.invites.Send(ctx, "", SendParams{InviteeID: "B"}); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Errorf("empty inviter: got %v, want Unauthenticated", err)
	}
	if _, err := e.invites.Send(ctx, "A", SendParams{}); !errors.Is(err, errs.ErrArgs) {
		t.Errorf("missing invitee: got %v, want Args", err)
	}
	if _, err := e.invites.Send(ctx, "A", SendParams{InviteeID: "ghost"}); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Errorf("unknown invitee: got %v, want NotFound", err)
	}
}

func TestSendDoesNotDeduplicate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	second, err := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if first.InviteID == second.InviteID {
		t.Fatal("duplicate sends must create distinct invites")
	}
	pend, err := e.invites.ListPending(ctx, "B")
	if err != nil || len(pend) != 2 {
		t.Errorf("pending invites = %d (%v), want 2", len(pend), err)
	}
}

func TestAcceptJoinsLobby(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	inv, err := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	out, err := e.invites.Resolve(ctx, "B", inv.InviteID, ActionAccept)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if out.Status != "accepted" || out.LobbyID != "A" || out.Redirect == "" {
		t.Errorf("resolve result = %+v", out)
	}

	l, _ := e.lobbyStore.Get(ctx, "A")
	if len(l.MemberIDs) != 2 || !l.HasMember("A") || !l.HasMember("B") {
		t.Errorf("lobby members = %v, want {A,B}", l.MemberIDs)
	}
	if _, err := e.lobbyStore.GetMember(ctx, "A", "B"); err != nil {
		t.Errorf("member record for B missing: %v", err)
	}

	got, _ := e.invites.Store().Get(ctx, inv.InviteID)
	if got.Status != invitemodel.StatusAccepted {
		t.Errorf("invite status = %s, want accepted", got.Status)
	}

	// 系统消息播报受邀人用户名
	var mentioned bool
	for _, m := range e.lobbyStore.Messages("A") {
		if m.Kind == lobbymodel.MessageSystem && strings.Contains(m.Text, "bob") {
			mentioned = true
		}
	}
	if !mentioned {
		t.Error("join system message mentioning bob not found")
	}

	list, _ := e.notices.List(ctx, "B", false)
	if len(list) != 1 || !list[0].IsRead {
		t.Errorf("notification after accept: %+v, want read=true", list)
	}
}

func TestAcceptTwiceIsConflictNotDuplicate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	inv, _ := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	if _, err := e.invites.Resolve(ctx, "B", inv.InviteID, ActionAccept); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := e.invites.Resolve(ctx, "B", inv.InviteID, ActionAccept); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("second accept: got %v, want Conflict", err)
	}
	l, _ := e.lobbyStore.Get(ctx, "A")
	if len(l.MemberIDs) != 2 {
		t.Errorf("member set size = %d after double accept, want 2", len(l.MemberIDs))
	}
	members, _ := e.lobbyStore.ListMembers(ctx, "A")
	if len(members) != 2 {
		t.Errorf("member records = %d after double accept, want 2", len(members))
	}
}

func TestRejectLeavesLobbyUntouched(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	inv, _ := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	out, err := e.invites.Resolve(ctx, "B", inv.InviteID, ActionReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if out.Status != "rejected" {
		t.Errorf("status = %s, want rejected", out.Status)
	}
	l, _ := e.lobbyStore.Get(ctx, "A")
	if len(l.MemberIDs) != 1 {
		t.Errorf("reject must not mutate lobby, members = %v", l.MemberIDs)
	}
	list, _ := e.notices.List(ctx, "B", false)
	if len(list) != 1 || !list[0].IsRead {
		t.Error("notification not marked read on reject")
	}
}

func TestResolveByWrongResponder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	inv, _ := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	if _, err := e.invites.Resolve(ctx, "A", inv.InviteID, ActionAccept); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("foreign responder: got %v, want Conflict", err)
	}
	if _, err := e.invites.Resolve(ctx, "B", "nope", ActionAccept); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Errorf("unknown invite: got %v, want NotFound", err)
	}
	if _, err := e.invites.Resolve(ctx, "B", inv.InviteID, "maybe"); !errors.Is(err, errs.ErrArgs) {
		t.Errorf("bad action: got %v, want Args", err)
	}
}

func TestAcceptAfterLobbyVanished(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	inv, _ := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	if err := e.lobbyStore.Delete(ctx, "A"); err != nil {
		t.Fatalf("out-of-band delete: %v", err)
	}
	_, err := e.invites.Resolve(ctx, "B", inv.InviteID, ActionAccept)
	if !errors.Is(err, errs.ErrGone) {
		t.Fatalf("accept on vanished lobby: got %v, want Gone", err)
	}
	got, _ := e.invites.Store().Get(ctx, inv.InviteID)
	if got.Status != invitemodel.StatusExpired {
		t.Errorf("invite status = %s, want expired", got.Status)
	}
}

func TestAcceptIntoFullLobby(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	inv, _ := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	// duo 容量 2：C 先占掉余位
	if err := e.lobbies.Join(ctx, "A", "C"); err != nil {
		t.Fatalf("fill lobby: %v", err)
	}
	_, err := e.invites.Resolve(ctx, "B", inv.InviteID, ActionAccept)
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("accept into full lobby: got %v, want Conflict", err)
	}
	l, _ := e.lobbyStore.Get(ctx, "A")
	if int32(len(l.MemberIDs)) > l.Capacity {
		t.Errorf("member count %d exceeds capacity %d", len(l.MemberIDs), l.Capacity)
	}
	got, _ := e.invites.Store().Get(ctx, inv.InviteID)
	if got.Status != invitemodel.StatusExpired {
		t.Errorf("invite status = %s, want expired", got.Status)
	}
}

func TestExpire(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	inv, _ := e.invites.Send(ctx, "A", SendParams{InviteeID: "B"})
	if err := e.invites.Expire(ctx, inv.InviteID); err != nil {
		t.Fatalf("expire: %v", err)
	}
	got, _ := e.invites.Store().Get(ctx, inv.InviteID)
	if got.Status != invitemodel.StatusExpired {
		t.Errorf("status = %s, want expired", got.Status)
	}
	if err := e.invites.Expire(ctx, inv.InviteID); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("expire terminal invite: got %v, want Conflict", err)
	}
	// 过期后不可再接受
	if _, err := e.invites.Resolve(ctx, "B", inv.InviteID, ActionAccept); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("accept expired invite: got %v, want Conflict", err)
	}
}
