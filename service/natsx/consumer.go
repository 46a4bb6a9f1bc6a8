package natsx

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Subscribe 按 Biz 路由订阅；同 Biz 重复订阅会替换旧订阅
func (c *NatsxClient) Subscribe(biz string, h NatsxHandler, mws ...NatsxMiddleware) error {
	r, ok := c.route(biz)
	if !ok {
		return fmt.Errorf("route not found: %s", biz)
	}
	handler := NatsxChain(h, mws...)

	cb := func(m *nats.Msg) {
		hdr := make(map[string]string, len(m.Header))
		for k := range m.Header {
			hdr[k] = m.Header.Get(k)
		}
		_ = handler(context.Background(), NatsxMessage{
			Subject: m.Subject,
			Data:    m.Data,
			Header:  hdr,
		})
	}

	var (
		sub *nats.Subscription
		err error
	)
	switch r.Mode {
	case Core:
		if r.Queue != "" {
			sub, err = c.nc.QueueSubscribe(r.Subject, r.Queue, cb)
		} else {
			sub, err = c.nc.Subscribe(r.Subject, cb)
		}
	case JetStreamPush:
		opts := []nats.SubOpt{
			nats.AckWait(r.AckWait),
			nats.MaxAckPending(r.MaxAckPending),
		}
		if r.Durable != "" {
			opts = append(opts, nats.Durable(r.Durable))
		}
		sub, err = c.js.Subscribe(r.Subject, func(m *nats.Msg) {
			cb(m)
			_ = m.Ack()
		}, opts...)
	default:
		return fmt.Errorf("unsupported subscribe mode for biz %s", biz)
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	if old, ok := c.subs[biz]; ok {
		_ = old.Drain()
	}
	c.subs[biz] = sub
	c.mu.Unlock()
	return nil
}
