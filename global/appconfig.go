package global

import (
	mgoutil "BetHub/data/database/mgo/mongoutil"
	redis "BetHub/service/storage/redis"
)

const NodeTypeApiNode = "apiNode"

// AppConfig 节点配置；默认值内置，可被 JSON 配置文件覆盖（见 config.go）
type AppConfig struct {
	NodeType string `json:"node_type"`
	NodeID   int64  `json:"node_id"` // 雪花ID节点
	Port     int    `json:"port"`    // http 启动端口

	JwtSecret string `json:"jwt_secret"`

	Mongo mgoutil.Config `json:"mongo"`
	Redis redis.Config   `json:"redis"`

	NatsServers  []string `json:"nats_servers"`
	KafkaBrokers []string `json:"kafka_brokers"`
	AuditTopic   string   `json:"audit_topic"`

	PresenceTTLSec int `json:"presence_ttl_sec"` // 在线状态 TTL
}

var Global = AppConfig{
	NodeType: NodeTypeApiNode,
	NodeID:   100,
	Port:     8080,

	JwtSecret: "mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o=",

	Mongo: mgoutil.Config{
		Uri:         "mongodb://localhost:27017",
		Database:    "bethub",
		Username:    "root",
		Password:    "example",
		MaxPoolSize: 20,
	},
	Redis: redis.Config{
		Addr: "127.0.0.1:6379", Password: "", DB: 0,
	},

	NatsServers:  []string{"nats://127.0.0.1:4222"},
	KafkaBrokers: []string{"localhost:9092"},
	AuditTopic:   "lobby_invite_audit",

	PresenceTTLSec: 60,
}
