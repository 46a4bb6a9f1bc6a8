package natsx

import (
	"context"
	"errors"
	"sync"

	"BetHub/logger"
)

// 通知相关的 Biz 路由名
const (
	BizNotify = "notify"
)

var (
	mu            sync.Mutex
	globalClient  *NatsxClient
	globalProd    *NatsxProducer
	pendingRoutes = make(map[string]NatsxRoute) // 启动前缓存的路由
)

// RegisterRoute 全局注册路由；启动前调用会缓存，StartNats 时统一应用
func RegisterRoute(r NatsxRoute) error {
	mu.Lock()
	defer mu.Unlock()
	if globalClient == nil {
		pendingRoutes[r.Biz] = r
		return nil
	}
	return globalClient.RegisterRoute(r)
}

// StartNats 启动全局 NATS 客户端并应用缓存路由。
// 连接失败只记日志：通知扇出属于尽力而为，不阻塞主流程启动。
func StartNats(cfg NatsxConfig) {
	mu.Lock()
	defer mu.Unlock()
	if globalClient != nil {
		return
	}
	cli, err := NewNatsxClient(cfg)
	if err != nil {
		logger.Warnf("nats connect failed, fan-out disabled: %v", err)
		return
	}
	for biz, r := range pendingRoutes {
		if err := cli.RegisterRoute(r); err != nil {
			logger.Warnf("register route failed (biz=%s): %v", biz, err)
		}
	}
	pendingRoutes = make(map[string]NatsxRoute)
	globalClient = cli
	globalProd = NewNatsxProducer(cli)
	logger.Info("nats client started")
}

// StopNats 优雅关闭
func StopNats() error {
	mu.Lock()
	defer mu.Unlock()
	if globalClient == nil {
		return nil
	}
	err := globalClient.Close()
	globalClient = nil
	globalProd = nil
	return err
}

// Publish 对外发布消息（需要已启动）
func Publish(ctx context.Context, biz string, data []byte, hdr map[string]string) error {
	mu.Lock()
	p := globalProd
	mu.Unlock()
	if p == nil {
		return errors.New("nats client not started")
	}
	return p.Publish(ctx, biz, data, hdr)
}

// Subscribe 对外订阅（需要已启动）
func Subscribe(biz string, h NatsxHandler, mws ...NatsxMiddleware) error {
	mu.Lock()
	c := globalClient
	mu.Unlock()
	if c == nil {
		return errors.New("nats client not started")
	}
	return c.Subscribe(biz, h, mws...)
}
