package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var (
	rdb *redis.Client
	ctx = context.Background()
)

// UseClient 复用已初始化的 client（main 里统一走 redis.InitRedis 后注入）
func UseClient(c *redis.Client) { rdb = c }

// presence key: bet:presence:<user>
// Value: session id, TTL controls the online validity period
func presenceKey(user string) string { return "bet:presence:" + user }

// PresenceOnline sets the user as online and renews the TTL
func PresenceOnline(user, sessionID string, ttl time.Duration) error {
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Set(ctx, presenceKey(user), sessionID, ttl).Err()
}

// PresenceOffline actively sets the user offline (deletes the key)
func PresenceOffline(user string) error {
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup checks whether the user is online
func PresenceLookup(user string) (sessionID string, online bool, err error) {
	if rdb == nil {
		return "", false, fmt.Errorf("redis not initialized")
	}
	val, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// PresenceLookupMany 批量查询（装饰大厅成员快照用）
func PresenceLookupMany(users []string) (map[string]bool, error) {
	out := make(map[string]bool, len(users))
	if rdb == nil || len(users) == 0 {
		return out, nil
	}
	keys := make([]string, 0, len(users))
	for _, u := range users {
		keys = append(keys, presenceKey(u))
	}
	vals, err := rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return out, err
	}
	for i, v := range vals {
		out[users[i]] = v != nil
	}
	return out, nil
}
