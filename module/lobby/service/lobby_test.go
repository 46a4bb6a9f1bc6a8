package service

import (
	"context"
	"errors"
	"testing"

	lobbymodel "BetHub/module/lobby/model"
	"BetHub/module/match"
	usermodel "BetHub/module/user/model"
	userservice "BetHub/module/user/service"
	"BetHub/tools/errs"
)

func newTestService(t *testing.T) (*Service, *memStore, *match.MemCreator) {
	t.Helper()
	ctx := context.Background()
	dir := userservice.NewMemDirectory()
	for _, u := range []*usermodel.User{
		{UserID: "A", Username: "alice"},
		{UserID: "B", Username: "bob"},
		{UserID: "C", Username: "carol"},
	} {
		if err := dir.UpsertUser(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	store := NewMemStore()
	creator := match.NewMemCreator()
	return NewService(store, dir, creator), store, creator
}

func seedLobby(t *testing.T, store Store, members ...string) *lobbymodel.Lobby {
	t.Helper()
	l := &lobbymodel.Lobby{
		LobbyID:   "L1",
		OwnerID:   members[0],
		Kind:      lobbymodel.KindSquad,
		Status:    lobbymodel.StatusActive,
		Capacity:  4,
		MemberIDs: members,
	}
	if err := store.Insert(context.Background(), l); err != nil {
		t.Fatalf("seed lobby: %v", err)
	}
	return l
}

func TestEnsureForInviterIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	l, err := svc.EnsureForInviter(ctx, "A", "A", "")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if l.OwnerID != "A" || l.Capacity != 2 {
		t.Errorf("created lobby = %+v", l)
	}
	// 已存在时直接返回，不重置成员
	if err := store.AddMember(ctx, "A", "B"); err != nil {
		t.Fatal(err)
	}
	l2, err := svc.EnsureForInviter(ctx, "A", "A", "")
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if len(l2.MemberIDs) != 2 {
		t.Errorf("ensure must not recreate, members = %v", l2.MemberIDs)
	}
}

func TestSetReadyRules(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	seedLobby(t, store, "A", "B")

	// 非成员报冲突
	if err := svc.SetReady(ctx, "L1", "C", true); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("non-member ready: got %v, want Conflict", err)
	}
	// 房主就绪是隐含的，调用为 no-op
	if err := svc.SetReady(ctx, "L1", "A", true); err != nil {
		t.Errorf("owner ready no-op: %v", err)
	}
	l, _ := store.Get(ctx, "L1")
	if len(l.ReadyIDs) != 0 {
		t.Errorf("owner must not enter ready set, got %v", l.ReadyIDs)
	}

	if err := svc.SetReady(ctx, "L1", "B", true); err != nil {
		t.Fatalf("member ready: %v", err)
	}
	l, _ = store.Get(ctx, "L1")
	if !l.IsReady("B") {
		t.Error("B not in ready set after SetReady(true)")
	}
	if err := svc.SetReady(ctx, "L1", "B", false); err != nil {
		t.Fatalf("member unready: %v", err)
	}
	l, _ = store.Get(ctx, "L1")
	if l.IsReady("B") {
		t.Error("B still ready after SetReady(false)")
	}
}

func TestCanStart(t *testing.T) {
	l := &lobbymodel.Lobby{
		LobbyID:   "L1",
		OwnerID:   "A",
		MemberIDs: []string{"A", "B", "C"},
	}
	if CanStart(l, "B") {
		t.Error("non-owner must not be able to start")
	}
	if CanStart(l, "A") {
		t.Error("start must wait for all non-owner members")
	}
	l.ReadyIDs = []string{"B"}
	if CanStart(l, "A") {
		t.Error("one unready member must block start")
	}
	l.ReadyIDs = []string{"B", "C"}
	if !CanStart(l, "A") {
		t.Error("owner with all members ready must be able to start")
	}
	if CanStart(&lobbymodel.Lobby{OwnerID: "A"}, "A") {
		t.Error("empty member set must block start")
	}
	if CanStart(nil, "A") {
		t.Error("nil lobby must block start")
	}
}

func TestStart(t *testing.T) {
	svc, store, creator := newTestService(t)
	ctx := context.Background()
	seedLobby(t, store, "A", "B")

	if _, err := svc.Start(ctx, "L1", "B", ""); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("non-owner start: got %v, want Conflict", err)
	}
	if _, err := svc.Start(ctx, "L1", "A", ""); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("unready start: got %v, want Conflict", err)
	}

	if err := svc.SetReady(ctx, "L1", "B", true); err != nil {
		t.Fatal(err)
	}
	matchID, err := svc.Start(ctx, "L1", "A", "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if matchID == "" {
		t.Fatal("empty match id")
	}
	if len(creator.Matches) != 1 || creator.Matches[0].LobbyID != "L1" || len(creator.Matches[0].PlayerIDs) != 2 {
		t.Errorf("created match = %+v", creator.Matches)
	}
	// 未指定模式时沿用大厅类型
	if creator.Matches[0].GameMode != lobbymodel.KindSquad {
		t.Errorf("game mode = %s, want lobby kind", creator.Matches[0].GameMode)
	}
	l, _ := store.Get(ctx, "L1")
	if l.Status != lobbymodel.StatusStarted {
		t.Errorf("lobby status = %s, want started", l.Status)
	}
}

func TestLeave(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	seedLobby(t, store, "A", "B")
	_ = store.SetReady(ctx, "L1", "B", true)

	if err := svc.Leave(ctx, "L1", "C"); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("non-member leave: got %v, want Conflict", err)
	}

	// 房主退出：移交给剩余成员
	if err := svc.Leave(ctx, "L1", "A"); err != nil {
		t.Fatalf("owner leave: %v", err)
	}
	l, err := store.Get(ctx, "L1")
	if err != nil {
		t.Fatalf("lobby gone after non-final leave: %v", err)
	}
	if l.OwnerID != "B" {
		t.Errorf("owner after handoff = %s, want B", l.OwnerID)
	}

	// 最后一人退出：大厅删除
	if err := svc.Leave(ctx, "L1", "B"); err != nil {
		t.Fatalf("final leave: %v", err)
	}
	if _, err := store.Get(ctx, "L1"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Errorf("lobby should be deleted when empty, got %v", err)
	}
}

func TestRepair(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// 编造不一致：房主不在成员集、就绪集含外人与房主、成员超容量
	broken := &lobbymodel.Lobby{
		LobbyID:   "L1",
		OwnerID:   "A",
		Kind:      lobbymodel.KindDuo,
		Capacity:  2,
		MemberIDs: []string{"B", "C"},
		ReadyIDs:  []string{"A", "B", "ghost"},
	}
	if err := store.Insert(ctx, broken); err != nil {
		t.Fatal(err)
	}
	if err := svc.Repair(ctx, "L1"); err != nil {
		t.Fatalf("repair: %v", err)
	}
	l, _ := store.Get(ctx, "L1")
	if !l.HasMember("A") {
		t.Error("owner not restored into member set")
	}
	if int32(len(l.MemberIDs)) > l.Capacity {
		t.Errorf("members %v exceed capacity %d after repair", l.MemberIDs, l.Capacity)
	}
	for _, uid := range l.ReadyIDs {
		if !l.HasMember(uid) || uid == l.OwnerID {
			t.Errorf("ready set not converged: %v", l.ReadyIDs)
		}
	}
	if l.Status == "" {
		t.Error("empty status not defaulted")
	}

	if err := svc.Repair(ctx, "missing"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Errorf("repair missing lobby: got %v, want NotFound", err)
	}
}

func TestGetViewDecoratesMembers(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	seedLobby(t, store, "A", "B")
	_ = store.SetReady(ctx, "L1", "B", true)

	view, err := svc.GetView(ctx, "L1")
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if len(view.Members) != 2 {
		t.Fatalf("view members = %d, want 2", len(view.Members))
	}
	byUser := map[string]MemberView{}
	for _, m := range view.Members {
		byUser[m.UserID] = m
	}
	// 明细缺失时回退目录快照
	if byUser["A"].Username != "alice" || !byUser["A"].IsLeader {
		t.Errorf("owner view = %+v", byUser["A"])
	}
	if !byUser["B"].IsReady {
		t.Error("ready flag not mirrored into view")
	}
}
