package global

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"BetHub/logger"
	kafka "BetHub/service/kafka"
	mgoSrv "BetHub/service/mgo"
	"BetHub/service/natsx"
	"BetHub/service/storage"
	redis "BetHub/service/storage/redis"
	"BetHub/tools/decode"
	ids "BetHub/tools/ids"
	jwtlib "BetHub/tools/security"
)

// LoadFile 用 JSON 配置文件覆盖默认配置（字段宽松解码，缺省保持默认值）
func LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	cfg, err := decode.DecodeMap[AppConfig](m)
	if err != nil {
		return err
	}
	Global = mergeConfig(Global, *cfg)
	return nil
}

// mergeConfig 非零字段覆盖
func mergeConfig(base, over AppConfig) AppConfig {
	if over.NodeType != "" {
		base.NodeType = over.NodeType
	}
	if over.NodeID != 0 {
		base.NodeID = over.NodeID
	}
	if over.Port != 0 {
		base.Port = over.Port
	}
	if over.JwtSecret != "" {
		base.JwtSecret = over.JwtSecret
	}
	if over.Mongo.Uri != "" || len(over.Mongo.Address) > 0 {
		base.Mongo = over.Mongo
	}
	if over.Redis.Addr != "" {
		base.Redis = over.Redis
	}
	if len(over.NatsServers) > 0 {
		base.NatsServers = over.NatsServers
	}
	if len(over.KafkaBrokers) > 0 {
		base.KafkaBrokers = over.KafkaBrokers
	}
	if over.AuditTopic != "" {
		base.AuditTopic = over.AuditTopic
	}
	if over.PresenceTTLSec != 0 {
		base.PresenceTTLSec = over.PresenceTTLSec
	}
	return base
}

func GetJwtSecret() []byte {
	return []byte(Global.JwtSecret)
}

func GetJwtOptions() jwtlib.Options {
	return jwtlib.DefaultOptions(GetJwtSecret())
}

func PresenceTTL() time.Duration {
	return time.Duration(Global.PresenceTTLSec) * time.Second
}

// ConfigAll 启动期基础设施初始化；Redis/NATS/Kafka 失败只降级不致命
func ConfigAll(ctx context.Context) {
	ConfigIds()
	ConfigRedis()
	ConfigMgo(ctx)
	ConfigNats()
	ConfigKafka()
}

func ConfigIds() {
	ids.SetNodeID(Global.NodeID)
}

func ConfigRedis() {
	if err := redis.InitRedis(Global.Redis); err != nil {
		logger.Warnf("redis init failed, presence disabled: %v", err)
		return
	}
	storage.UseClient(redis.GetRedis())
}

func ConfigMgo(ctx context.Context) {
	mgoSrv.StartAsync(ctx, &Global.Mongo)
}

func ConfigNats() {
	_ = natsx.RegisterRoute(natsx.NatsxRoute{
		Biz:     natsx.BizNotify,
		Subject: "bethub.notify",
		Mode:    natsx.Core,
	})
	natsx.StartNats(natsx.NatsxConfig{
		Servers: Global.NatsServers,
		Name:    "bethub-api",
	})
}

func ConfigKafka() {
	kafka.AuditTopic = Global.AuditTopic
	if err := kafka.InitKafkaClient(Global.KafkaBrokers); err != nil {
		logger.Warnf("kafka init failed, invite audit disabled: %v", err)
		return
	}
	if err := kafka.InitSyncProducerFromClient(); err != nil {
		logger.Warnf("kafka producer init failed, invite audit disabled: %v", err)
	}
}
