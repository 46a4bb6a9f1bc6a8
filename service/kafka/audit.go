package kafka

import (
	"encoding/json"
	"time"
)

// AuditTopic 邀请生命周期审计流
var AuditTopic = "lobby_invite_audit"

// InviteEvent 邀请生命周期审计事件（created/accepted/rejected/expired）
type InviteEvent struct {
	InviteID  string `json:"invite_id"`
	LobbyID   string `json:"lobby_id"`
	InviterID string `json:"inviter_id"`
	InviteeID string `json:"invitee_id"`
	Status    string `json:"status"`
	TsMS      int64  `json:"ts_ms"`
}

// Available 生产者是否可用（审计属于尽力而为）
func Available() bool { return SyncProd != nil }

// PublishInviteEvent 同步发送审计事件；以 InviteID 为 Key 保证同一邀请分区内有序
func PublishInviteEvent(ev InviteEvent) error {
	if ev.TsMS == 0 {
		ev.TsMS = time.Now().UnixMilli()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return SendSyncKeyed(AuditTopic, ev.InviteID, string(b))
}
