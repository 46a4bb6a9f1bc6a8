package service

import (
	"context"
	"sync"
	"time"

	lobbymodel "BetHub/module/lobby/model"
	"BetHub/tools/errs"
)

type memStore struct {
	mu       sync.RWMutex
	lobbies  map[string]*lobbymodel.Lobby
	members  map[string]*lobbymodel.LobbyMember // lobby|user
	messages []lobbymodel.LobbyMessage
}

func NewMemStore() *memStore {
	return &memStore{
		lobbies: make(map[string]*lobbymodel.Lobby),
		members: make(map[string]*lobbymodel.LobbyMember),
	}
}

func memberKey(lobbyID, userID string) string { return lobbyID + "|" + userID }

func copyLobby(l *lobbymodel.Lobby) *lobbymodel.Lobby {
	cp := *l
	cp.MemberIDs = append([]string(nil), l.MemberIDs...)
	cp.ReadyIDs = append([]string(nil), l.ReadyIDs...)
	return &cp
}

func (s *memStore) Get(ctx context.Context, lobbyID string) (*lobbymodel.Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lobbies[lobbyID]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("lobby " + lobbyID)
	}
	return copyLobby(l), nil
}

func (s *memStore) Insert(ctx context.Context, l *lobbymodel.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if l.CreateTime.IsZero() {
		l.CreateTime = now
	}
	l.UpdateTime = now
	s.lobbies[l.LobbyID] = copyLobby(l)
	return nil
}

func (s *memStore) Replace(ctx context.Context, l *lobbymodel.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.UpdateTime = time.Now()
	s.lobbies[l.LobbyID] = copyLobby(l)
	return nil
}

func (s *memStore) Delete(ctx context.Context, lobbyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, lobbyID)
	return nil
}

func containsStr(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func removeStr(ss []string, v string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func (s *memStore) AddMember(ctx context.Context, lobbyID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[lobbyID]
	if !ok {
		return errs.ErrRecordNotFound.WithDetail("lobby " + lobbyID)
	}
	if !containsStr(l.MemberIDs, userID) {
		l.MemberIDs = append(l.MemberIDs, userID)
	}
	l.UpdateTime = time.Now()
	return nil
}

func (s *memStore) RemoveMember(ctx context.Context, lobbyID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[lobbyID]
	if !ok {
		return nil
	}
	l.MemberIDs = removeStr(l.MemberIDs, userID)
	l.ReadyIDs = removeStr(l.ReadyIDs, userID)
	l.UpdateTime = time.Now()
	return nil
}

func (s *memStore) SetReady(ctx context.Context, lobbyID, userID string, ready bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[lobbyID]
	if !ok {
		return nil
	}
	if ready {
		if !containsStr(l.ReadyIDs, userID) {
			l.ReadyIDs = append(l.ReadyIDs, userID)
		}
	} else {
		l.ReadyIDs = removeStr(l.ReadyIDs, userID)
	}
	l.UpdateTime = time.Now()
	return nil
}

func (s *memStore) UpdateStatus(ctx context.Context, lobbyID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[lobbyID]
	if !ok {
		return nil
	}
	l.Status = status
	l.UpdateTime = time.Now()
	return nil
}

func (s *memStore) GetMember(ctx context.Context, lobbyID, userID string) (*lobbymodel.LobbyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberKey(lobbyID, userID)]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("member " + userID)
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) InsertMember(ctx context.Context, m *lobbymodel.LobbyMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	cp := *m
	s.members[memberKey(m.LobbyID, m.UserID)] = &cp
	return nil
}

func (s *memStore) ListMembers(ctx context.Context, lobbyID string) ([]lobbymodel.LobbyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []lobbymodel.LobbyMember
	for _, m := range s.members {
		if m.LobbyID == lobbyID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *memStore) DeleteMember(ctx context.Context, lobbyID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, memberKey(lobbyID, userID))
	return nil
}

func (s *memStore) SetMemberReady(ctx context.Context, lobbyID, userID string, ready bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[memberKey(lobbyID, userID)]; ok {
		m.IsReady = ready
	}
	return nil
}

func (s *memStore) InsertMessage(ctx context.Context, m *lobbymodel.LobbyMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, *m)
	return nil
}

// Messages 测试辅助：取某大厅的消息快照
func (s *memStore) Messages(lobbyID string) []lobbymodel.LobbyMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []lobbymodel.LobbyMessage
	for _, m := range s.messages {
		if m.LobbyID == lobbyID {
			out = append(out, m)
		}
	}
	return out
}
