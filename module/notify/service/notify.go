package service

import (
	"context"
	"encoding/json"
	"time"

	"BetHub/logger"
	notifymodel "BetHub/module/notify/model"
	"BetHub/service/natsx"
	ids "BetHub/tools/ids"
	"BetHub/tools/safe"
)

// Service 通知镜像：落库为准，NATS 扇出给在线网关属于尽力而为
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

func (s *Service) Store() Store { return s.store }

type CreateParams struct {
	RecipientID string
	Type        string
	Title       string
	Message     string
	Payload     map[string]any
}

// Create 落库并扇出。落库失败原样上抛（调用方自行决定吞与不吞），
// 扇出失败只记日志。
func (s *Service) Create(ctx context.Context, in CreateParams) (*notifymodel.Notification, error) {
	n := &notifymodel.Notification{
		NotifyID:    ids.GenerateString(),
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		Payload:     in.Payload,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, err
	}
	s.fanout(n)
	return n, nil
}

func (s *Service) fanout(n *notifymodel.Notification) {
	b, err := json.Marshal(n)
	if err != nil {
		logger.Warnf("marshal notification failed: %v", err)
		return
	}
	recipient, typ, notifyID := n.RecipientID, n.Type, n.NotifyID
	safe.SafeGo(func() {
		if err := natsx.Publish(context.Background(), natsx.BizNotify, b, map[string]string{
			"recipient": recipient,
			"type":      typ,
		}); err != nil {
			logger.Warnf("notify fanout failed, notify=%s: %v", notifyID, err)
		}
	})
}

func (s *Service) MarkRead(ctx context.Context, notifyID string) error {
	return s.store.MarkRead(ctx, notifyID)
}

func (s *Service) MarkReadByInvite(ctx context.Context, inviteID string) error {
	return s.store.MarkReadByInvite(ctx, inviteID)
}

func (s *Service) List(ctx context.Context, recipientID string, unreadOnly bool) ([]notifymodel.Notification, error) {
	return s.store.ListByRecipient(ctx, recipientID, unreadOnly)
}

func (s *Service) Clear(ctx context.Context, recipientID string) error {
	return s.store.ClearForRecipient(ctx, recipientID)
}
