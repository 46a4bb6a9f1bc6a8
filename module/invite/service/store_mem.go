package service

import (
	"context"
	"sync"
	"time"

	invitemodel "BetHub/module/invite/model"
	"BetHub/tools/errs"
)

type memStore struct {
	mu      sync.RWMutex
	invites map[string]*invitemodel.Invite
}

func NewMemStore() *memStore {
	return &memStore{invites: make(map[string]*invitemodel.Invite)}
}

func (s *memStore) Insert(ctx context.Context, inv *invitemodel.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.CreateTime.IsZero() {
		inv.CreateTime = time.Now()
	}
	cp := *inv
	s.invites[inv.InviteID] = &cp
	return nil
}

func (s *memStore) Get(ctx context.Context, inviteID string) (*invitemodel.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invites[inviteID]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("invite " + inviteID)
	}
	cp := *inv
	return &cp, nil
}

func (s *memStore) Resolve(ctx context.Context, inviteID string, from, to invitemodel.Status) error {
	if !invitemodel.CanTransition(from, to) {
		return errs.ErrConflict.WithDetail("illegal transition " + from.String() + "→" + to.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[inviteID]
	if !ok {
		return errs.ErrRecordNotFound.WithDetail("invite " + inviteID)
	}
	if inv.Status != from {
		return errs.ErrConflict.WithDetail("invite not " + from.String())
	}
	inv.Status = to
	inv.HandleTime = time.Now()
	return nil
}

func (s *memStore) ListPendingByInvitee(ctx context.Context, inviteeID string) ([]invitemodel.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []invitemodel.Invite
	for _, inv := range s.invites {
		if inv.InviteeID == inviteeID && inv.Status == invitemodel.StatusPending {
			out = append(out, *inv)
		}
	}
	return out, nil
}
