package match

import (
	"context"
	"sync"
	"time"

	"BetHub/data/database"
	mgo "BetHub/service/mgo"
	"BetHub/tools/errs"
	ids "BetHub/tools/ids"
)

// Match 对局记录：大厅满员就绪后由房主发起创建
type Match struct {
	MatchID   string    `bson:"match_id" json:"MatchID"`
	LobbyID   string    `bson:"lobby_id" json:"LobbyID"`
	GameMode  string    `bson:"game_mode,omitempty" json:"GameMode"`
	PlayerIDs []string  `bson:"player_ids" json:"PlayerIDs"`
	CreatedAt time.Time `bson:"created_at" json:"CreatedAt"`
}

// Creator 对局创建协作方；大厅 Start 仅依赖该接口
type Creator interface {
	CreateMatch(ctx context.Context, lobbyID, gameMode string, playerIDs []string) (matchID string, err error)
}

type mongoCreator struct{}

func NewMongoCreator() Creator { return &mongoCreator{} }

func (c *mongoCreator) CreateMatch(ctx context.Context, lobbyID, gameMode string, playerIDs []string) (string, error) {
	db, ok := mgo.TryGetDB()
	if !ok {
		return "", errs.ErrStoreUnavailable.WithDetail("mongo not ready")
	}
	m := Match{
		MatchID:   ids.GenerateString(),
		LobbyID:   lobbyID,
		GameMode:  gameMode,
		PlayerIDs: append([]string(nil), playerIDs...),
		CreatedAt: time.Now(),
	}
	if _, err := db.Collection(database.CollMatches).InsertOne(ctx, m); err != nil {
		return "", errs.WrapMsg(err, "insert match", "lobbyID", lobbyID)
	}
	return m.MatchID, nil
}

// MemCreator 内存实现，测试用
type MemCreator struct {
	mu      sync.Mutex
	Matches []Match
}

func NewMemCreator() *MemCreator { return &MemCreator{} }

func (c *MemCreator) CreateMatch(ctx context.Context, lobbyID, gameMode string, playerIDs []string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := Match{
		MatchID:   ids.GenerateString(),
		LobbyID:   lobbyID,
		GameMode:  gameMode,
		PlayerIDs: append([]string(nil), playerIDs...),
		CreatedAt: time.Now(),
	}
	c.Matches = append(c.Matches, m)
	return m.MatchID, nil
}
