package model

import (
	"time"

	"BetHub/data/database"
	mgo "BetHub/service/mgo"

	"go.mongodb.org/mongo-driver/mongo"
)

// 通知类型
const (
	TypeLobbyInvite = "lobby_invite"
	TypeSystem      = "system"
)

// Notification 用户可见的镜像通知。read 标记单调 false→true，核心流程从不删除，
// 批量清理只留作管理入口。
type Notification struct {
	NotifyID    string         `bson:"notify_id" json:"NotifyID"`
	RecipientID string         `bson:"recipient_id" json:"RecipientID"`
	Type        string         `bson:"type" json:"Type"`
	Title       string         `bson:"title" json:"Title"`
	Message     string         `bson:"message" json:"Message"`
	IsRead      bool           `bson:"is_read" json:"IsRead"`
	Payload     map[string]any `bson:"payload,omitempty" json:"Payload"` // 触发邀请的 id/大厅/状态

	CreatedAt time.Time `bson:"created_at" json:"CreatedAt"`
}

func (n *Notification) GetTableName() string {
	return database.CollNotifications
}

func (n *Notification) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(n.GetTableName())
}
