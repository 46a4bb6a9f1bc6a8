package service

import (
	"context"
	"sort"
	"sync"
	"time"

	notifymodel "BetHub/module/notify/model"
	"BetHub/tools/decode"
)

type memStore struct {
	mu      sync.RWMutex
	notices map[string]*notifymodel.Notification
}

func NewMemStore() *memStore {
	return &memStore{notices: make(map[string]*notifymodel.Notification)}
}

func (s *memStore) Insert(ctx context.Context, n *notifymodel.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	s.notices[n.NotifyID] = &cp
	return nil
}

func (s *memStore) MarkRead(ctx context.Context, notifyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.notices[notifyID]; ok && !n.IsRead {
		n.IsRead = true
	}
	return nil
}

func (s *memStore) MarkReadByInvite(ctx context.Context, inviteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notices {
		if n.IsRead {
			continue
		}
		if id, err := decode.ReadString(n.Payload, "invite_id"); err == nil && id == inviteID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *memStore) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]notifymodel.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []notifymodel.Notification
	for _, n := range s.notices {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) ClearForRecipient(ctx context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notices {
		if n.RecipientID == recipientID {
			delete(s.notices, id)
		}
	}
	return nil
}
