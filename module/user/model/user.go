package model

import (
	"time"

	"BetHub/data/database"
	mgo "BetHub/service/mgo"

	"go.mongodb.org/mongo-driver/mongo"
)

// Status
const (
	UserNormal   int32 = 0
	UserBanned   int32 = 1
	UserClosed   int32 = 2
	UserReadOnly int32 = 3
)

// User 用户主档。仅放平台侧关键信息，偏好/安全建议拆表。
type User struct {
	UserID   string `bson:"user_id" json:"UserID"` // 全局唯一、不可变（主键）
	Username string `bson:"username" json:"Username"`
	FaceURL  string `bson:"face_url,omitempty" json:"FaceURL"` // 头像URL
	Level    int32  `bson:"level,omitempty" json:"Level"`      // 等级（加入大厅时快照）
	Balance  int64  `bson:"balance,omitempty" json:"Balance"`  // 余额（最小货币单位）
	Status   int32  `bson:"status,omitempty" json:"Status"`

	CreateTime time.Time `bson:"create_time" json:"CreateTime"`
	UpdateTime time.Time `bson:"update_time" json:"UpdateTime"`
}

// DisplaySnapshot 展示快照：加入大厅那一刻的用户侧信息
type DisplaySnapshot struct {
	UserID   string `bson:"user_id" json:"UserID"`
	Username string `bson:"username" json:"Username"`
	FaceURL  string `bson:"face_url" json:"FaceURL"`
	Level    int32  `bson:"level" json:"Level"`
}

func (u *User) GetTableName() string {
	return database.CollUsers
}

func (u *User) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(u.GetTableName())
}
