package service

import (
	"context"
	"sync"

	usermodel "BetHub/module/user/model"
	"BetHub/tools/errs"
)

type memDirectory struct {
	mu    sync.RWMutex
	users map[string]*usermodel.User
}

func NewMemDirectory() *memDirectory {
	return &memDirectory{users: make(map[string]*usermodel.User)}
}

func (d *memDirectory) GetUser(ctx context.Context, userID string) (*usermodel.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + userID)
	}
	cp := *u
	return &cp, nil
}

func (d *memDirectory) UpsertUser(ctx context.Context, u *usermodel.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := *u
	d.users[u.UserID] = &cp
	return nil
}
