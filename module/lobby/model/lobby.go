package model

import (
	"time"

	"BetHub/data/database"
	mgo "BetHub/service/mgo"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind 大厅类型；reconstructed/emergency 仅客户端侧降级视图使用，不落库
const (
	KindSolo  = "solo"
	KindDuo   = "duo"
	KindSquad = "squad"

	KindReconstructed = "reconstructed"
	KindEmergency     = "emergency"
)

// Status
const (
	StatusWaiting   = "waiting"
	StatusActive    = "active"
	StatusStarted   = "started"
	StatusDisbanded = "disbanded"
)

// CapacityForKind 按类型给默认容量
func CapacityForKind(kind string) int32 {
	switch kind {
	case KindSolo:
		return 1
	case KindSquad:
		return 4
	default:
		return 2
	}
}

// Lobby 大厅主档。不变量：len(MemberIDs) <= Capacity；OwnerID ∈ MemberIDs；
// ReadyIDs ⊆ MemberIDs。成员写入走 $addToSet，并发 accept 不互相覆盖。
type Lobby struct {
	LobbyID  string `bson:"lobby_id" json:"LobbyID"`
	Name     string `bson:"name,omitempty" json:"Name"`
	OwnerID  string `bson:"owner_id" json:"OwnerID"`
	Kind     string `bson:"kind" json:"Kind"`
	Status   string `bson:"status" json:"Status"`
	Capacity int32  `bson:"capacity" json:"Capacity"`

	MemberIDs []string `bson:"member_ids" json:"MemberIDs"`
	ReadyIDs  []string `bson:"ready_ids" json:"ReadyIDs"` // 非房主成员的就绪标记

	CreateTime time.Time `bson:"create_time" json:"CreateTime"`
	UpdateTime time.Time `bson:"update_time" json:"UpdateTime"`
}

func (l *Lobby) HasMember(userID string) bool {
	for _, id := range l.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (l *Lobby) IsReady(userID string) bool {
	for _, id := range l.ReadyIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (l *Lobby) IsFull() bool {
	return l.Capacity > 0 && int32(len(l.MemberIDs)) >= l.Capacity
}

func (l *Lobby) GetTableName() string {
	return database.CollLobbies
}

func (l *Lobby) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(l.GetTableName())
}

// LobbyMember 成员明细：用户加入时的展示快照，与 Lobby.MemberIDs 独立留存。
// 唯一性由插入前查重保证（非索引约束）。
type LobbyMember struct {
	LobbyID  string `bson:"lobby_id" json:"LobbyID"`
	UserID   string `bson:"user_id" json:"UserID"`
	Username string `bson:"username" json:"Username"`
	FaceURL  string `bson:"face_url,omitempty" json:"FaceURL"`
	Level    int32  `bson:"level,omitempty" json:"Level"`
	IsLeader bool   `bson:"is_leader" json:"IsLeader"`
	IsReady  bool   `bson:"is_ready" json:"IsReady"`

	JoinedAt time.Time `bson:"joined_at" json:"JoinedAt"`
}

func (m *LobbyMember) GetTableName() string {
	return database.CollLobbyMembers
}

func (m *LobbyMember) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(m.GetTableName())
}

// 消息类型
const (
	MessageSystem = "system"
	MessageChat   = "chat"
)

// LobbyMessage 大厅内消息；系统消息用于入退场播报
type LobbyMessage struct {
	MessageID string    `bson:"message_id" json:"MessageID"`
	LobbyID   string    `bson:"lobby_id" json:"LobbyID"`
	Kind      string    `bson:"kind" json:"Kind"`
	SenderID  string    `bson:"sender_id,omitempty" json:"SenderID"`
	Text      string    `bson:"text" json:"Text"`
	CreatedAt time.Time `bson:"created_at" json:"CreatedAt"`
}

func (m *LobbyMessage) GetTableName() string {
	return database.CollLobbyMessages
}

func (m *LobbyMessage) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(m.GetTableName())
}
