package service

import (
	"context"
	"fmt"
	"time"

	"BetHub/logger"
	lobbymodel "BetHub/module/lobby/model"
	"BetHub/module/match"
	userservice "BetHub/module/user/service"
	"BetHub/service/storage"
	"BetHub/tools/errs"
	ids "BetHub/tools/ids"
	"BetHub/tools/safe"

	pkgerr "github.com/pkg/errors"
)

// Service 大厅业务：成员/就绪/开局/修复。所有协调都经由 Store，进程内不持共享可变状态。
type Service struct {
	store   Store
	dir     userservice.Directory
	matches match.Creator
}

func NewService(store Store, dir userservice.Directory, matches match.Creator) *Service {
	safe.MustNotNil(store, "lobby store")
	safe.MustNotNil(dir, "user directory")
	safe.MustNotNil(matches, "match creator")
	return &Service{store: store, dir: dir, matches: matches}
}

func (s *Service) Store() Store { return s.store }

// MemberView 成员快照 + 在线状态装饰（Redis presence，尽力而为）
type MemberView struct {
	lobbymodel.LobbyMember
	Online bool `json:"Online"`
}

type View struct {
	lobbymodel.Lobby
	Members []MemberView `json:"Members"`
}

// GetView 权威读路径：大厅 + 成员明细 + 在线装饰。
// presence 查询失败只降级（全部离线），不影响主读取。
func (s *Service) GetView(ctx context.Context, lobbyID string) (*View, error) {
	l, err := s.store.Get(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, lobbyID)
	if err != nil {
		logger.Warnf("list members failed, lobby=%s: %v", lobbyID, err)
		members = nil
	}
	byUser := make(map[string]lobbymodel.LobbyMember, len(members))
	for _, m := range members {
		byUser[m.UserID] = m
	}
	online, err := storage.PresenceLookupMany(l.MemberIDs)
	if err != nil {
		logger.Warnf("presence lookup failed, lobby=%s: %v", lobbyID, err)
	}
	view := &View{Lobby: *l}
	for _, uid := range l.MemberIDs {
		m, ok := byUser[uid]
		if !ok {
			// 成员明细缺失时回退目录快照，主档为准
			snap := userservice.Snapshot(ctx, s.dir, uid)
			m = lobbymodel.LobbyMember{
				LobbyID:  lobbyID,
				UserID:   uid,
				Username: snap.Username,
				FaceURL:  snap.FaceURL,
				Level:    snap.Level,
				IsLeader: uid == l.OwnerID,
			}
		}
		m.IsReady = l.IsReady(uid)
		view.Members = append(view.Members, MemberView{LobbyMember: m, Online: online[uid]})
	}
	return view, nil
}

// EnsureForInviter 读取目标大厅；不存在则按需创建：房主=邀请人、唯一成员=邀请人、
// duo 容量、active 状态。用可用性换前置校验的严格性。
func (s *Service) EnsureForInviter(ctx context.Context, lobbyID, inviterID, gameMode string) (*lobbymodel.Lobby, error) {
	l, err := s.store.Get(ctx, lobbyID)
	if err == nil {
		return l, nil
	}
	if !pkgerr.Is(err, errs.ErrRecordNotFound) {
		return nil, err
	}
	kind := lobbymodel.KindDuo
	switch gameMode {
	case lobbymodel.KindSolo, lobbymodel.KindDuo, lobbymodel.KindSquad:
		kind = gameMode
	}
	l = &lobbymodel.Lobby{
		LobbyID:   lobbyID,
		OwnerID:   inviterID,
		Kind:      kind,
		Status:    lobbymodel.StatusActive,
		Capacity:  lobbymodel.CapacityForKind(kind),
		MemberIDs: []string{inviterID},
	}
	if err := s.store.Insert(ctx, l); err != nil {
		return nil, err
	}
	snap := userservice.Snapshot(ctx, s.dir, inviterID)
	if err := s.store.InsertMember(ctx, &lobbymodel.LobbyMember{
		LobbyID:  lobbyID,
		UserID:   inviterID,
		Username: snap.Username,
		FaceURL:  snap.FaceURL,
		Level:    snap.Level,
		IsLeader: true,
		JoinedAt: time.Now(),
	}); err != nil {
		logger.Warnf("insert owner member record failed, lobby=%s: %v", lobbyID, err)
	}
	return l, nil
}

// Join 会员登记：成员集走 $addToSet，明细记录插入前查重（重试幂等），
// 系统消息播报为尽力而为。
func (s *Service) Join(ctx context.Context, lobbyID, userID string) error {
	if err := s.store.AddMember(ctx, lobbyID, userID); err != nil {
		return err
	}
	snap := userservice.Snapshot(ctx, s.dir, userID)
	if _, err := s.store.GetMember(ctx, lobbyID, userID); err != nil {
		if !pkgerr.Is(err, errs.ErrRecordNotFound) {
			return err
		}
		if err := s.store.InsertMember(ctx, &lobbymodel.LobbyMember{
			LobbyID:  lobbyID,
			UserID:   userID,
			Username: snap.Username,
			FaceURL:  snap.FaceURL,
			Level:    snap.Level,
			JoinedAt: time.Now(),
		}); err != nil {
			return err
		}
	}
	s.SystemMessage(ctx, lobbyID, fmt.Sprintf("%s joined the lobby", snap.Username))
	return nil
}

// SystemMessage 追加系统消息；失败只记日志
func (s *Service) SystemMessage(ctx context.Context, lobbyID, text string) {
	err := s.store.InsertMessage(ctx, &lobbymodel.LobbyMessage{
		MessageID: ids.GenerateString(),
		LobbyID:   lobbyID,
		Kind:      lobbymodel.MessageSystem,
		Text:      text,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logger.Warnf("append system message failed, lobby=%s: %v", lobbyID, err)
	}
}

// SetReady 成员自报就绪。房主就绪是隐含的，房主调用为 no-op；非成员报 Conflict。
func (s *Service) SetReady(ctx context.Context, lobbyID, userID string, ready bool) error {
	l, err := s.store.Get(ctx, lobbyID)
	if err != nil {
		return err
	}
	if !l.HasMember(userID) {
		return errs.ErrConflict.WithDetail("not a lobby member")
	}
	if userID == l.OwnerID {
		return nil
	}
	if err := s.store.SetReady(ctx, lobbyID, userID, ready); err != nil {
		return err
	}
	if err := s.store.SetMemberReady(ctx, lobbyID, userID, ready); err != nil {
		logger.Warnf("mirror ready flag failed, lobby=%s user=%s: %v", lobbyID, userID, err)
	}
	return nil
}

// CanStart 纯函数：调用者是房主、成员非空、且所有非房主成员均已就绪。
func CanStart(l *lobbymodel.Lobby, callerID string) bool {
	if l == nil || callerID != l.OwnerID || len(l.MemberIDs) == 0 {
		return false
	}
	for _, uid := range l.MemberIDs {
		if uid == l.OwnerID {
			continue
		}
		if !l.IsReady(uid) {
			return false
		}
	}
	return true
}

// Start 开局：严格由 CanStart 把关，成功后大厅转 started 并返回对局ID
func (s *Service) Start(ctx context.Context, lobbyID, callerID, gameMode string) (string, error) {
	l, err := s.store.Get(ctx, lobbyID)
	if err != nil {
		return "", err
	}
	if callerID != l.OwnerID {
		return "", errs.ErrConflict.WithDetail("only the owner can start")
	}
	if !CanStart(l, callerID) {
		return "", errs.ErrConflict.WithDetail("lobby not ready")
	}
	if gameMode == "" {
		gameMode = l.Kind
	}
	matchID, err := s.matches.CreateMatch(ctx, lobbyID, gameMode, l.MemberIDs)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateStatus(ctx, lobbyID, lobbymodel.StatusStarted); err != nil {
		logger.Warnf("mark lobby started failed, lobby=%s: %v", lobbyID, err)
	}
	return matchID, nil
}

// Leave 退出：摘成员与就绪标记，删明细；空厅即删，房主退出则移交首位剩余成员
func (s *Service) Leave(ctx context.Context, lobbyID, userID string) error {
	l, err := s.store.Get(ctx, lobbyID)
	if err != nil {
		return err
	}
	if !l.HasMember(userID) {
		return errs.ErrConflict.WithDetail("not a lobby member")
	}
	if err := s.store.RemoveMember(ctx, lobbyID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteMember(ctx, lobbyID, userID); err != nil {
		logger.Warnf("delete member record failed, lobby=%s user=%s: %v", lobbyID, userID, err)
	}
	snap := userservice.Snapshot(ctx, s.dir, userID)
	s.SystemMessage(ctx, lobbyID, fmt.Sprintf("%s left the lobby", snap.Username))

	l, err = s.store.Get(ctx, lobbyID)
	if err != nil {
		return nil
	}
	if len(l.MemberIDs) == 0 {
		return s.store.Delete(ctx, lobbyID)
	}
	if l.OwnerID == userID {
		l.OwnerID = l.MemberIDs[0]
		if err := s.store.Replace(ctx, l); err != nil {
			logger.Warnf("reassign owner failed, lobby=%s: %v", lobbyID, err)
		}
	}
	return nil
}

// Repair 尽力而为的一致性修复：就绪集收敛到成员集内、房主回归成员集、
// 成员数收敛到容量内（房主保留）、空状态兜底。无保证效果。
func (s *Service) Repair(ctx context.Context, lobbyID string) error {
	l, err := s.store.Get(ctx, lobbyID)
	if err != nil {
		return err
	}
	changed := false

	if l.OwnerID != "" && !l.HasMember(l.OwnerID) {
		l.MemberIDs = append([]string{l.OwnerID}, l.MemberIDs...)
		changed = true
	}
	if l.Capacity > 0 && int32(len(l.MemberIDs)) > l.Capacity {
		kept := make([]string, 0, l.Capacity)
		kept = append(kept, l.OwnerID)
		for _, uid := range l.MemberIDs {
			if int32(len(kept)) >= l.Capacity {
				break
			}
			if uid != l.OwnerID {
				kept = append(kept, uid)
			}
		}
		l.MemberIDs = kept
		changed = true
	}
	var ready []string
	for _, uid := range l.ReadyIDs {
		if l.HasMember(uid) && uid != l.OwnerID {
			ready = append(ready, uid)
		}
	}
	if len(ready) != len(l.ReadyIDs) {
		l.ReadyIDs = ready
		changed = true
	}
	if l.Status == "" {
		l.Status = lobbymodel.StatusWaiting
		changed = true
	}
	if !changed {
		return nil
	}
	return s.store.Replace(ctx, l)
}
