package model

import (
	"time"

	"BetHub/data/database"
	mgo "BetHub/service/mgo"

	"go.mongodb.org/mongo-driver/mongo"
)

// Status 邀请状态：单向单次迁移，pending 之外都是终态
type Status int32

const (
	StatusPending  Status = 0
	StatusAccepted Status = 1
	StatusRejected Status = 2
	StatusExpired  Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

func (s Status) Terminal() bool { return s != StatusPending }

// transitions 静态迁移表：pending 出边唯一可走，终态无出边
var transitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusRejected, StatusExpired},
	StatusAccepted: nil,
	StatusRejected: nil,
	StatusExpired:  nil,
}

func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Invite 邀请记录。同一 (邀请人, 受邀人, 大厅) 的并发 pending 允许共存，
// 发送端不去重；记录只做一次终态迁移，从不物理删除。
type Invite struct {
	InviteID  string `bson:"invite_id" json:"InviteID"`
	InviterID string `bson:"inviter_id" json:"InviterID"`
	InviteeID string `bson:"invitee_id" json:"InviteeID"`
	LobbyID   string `bson:"lobby_id" json:"LobbyID"`
	GameMode  string `bson:"game_mode,omitempty" json:"GameMode"`
	Status    Status `bson:"status" json:"Status"`

	CreateTime time.Time `bson:"create_time" json:"CreateTime"`
	HandleTime time.Time `bson:"handle_time,omitempty" json:"HandleTime"`
}

func (i *Invite) GetTableName() string {
	return database.CollLobbyInvites
}

func (i *Invite) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(i.GetTableName())
}
