package service

import (
	"context"
	"time"

	lobbymodel "BetHub/module/lobby/model"
	mgo "BetHub/service/mgo"
	"BetHub/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgerr "github.com/pkg/errors"
)

// Store 大厅持久化抽象：生产实现 Mongo，测试用内存实现（store_mem.go）。
// 成员集合写入必须是集合并集语义（$addToSet / $pull），并发加入互不覆盖。
type Store interface {
	Get(ctx context.Context, lobbyID string) (*lobbymodel.Lobby, error)
	Insert(ctx context.Context, l *lobbymodel.Lobby) error
	Replace(ctx context.Context, l *lobbymodel.Lobby) error
	Delete(ctx context.Context, lobbyID string) error

	AddMember(ctx context.Context, lobbyID, userID string) error
	RemoveMember(ctx context.Context, lobbyID, userID string) error
	SetReady(ctx context.Context, lobbyID, userID string, ready bool) error
	UpdateStatus(ctx context.Context, lobbyID, status string) error

	GetMember(ctx context.Context, lobbyID, userID string) (*lobbymodel.LobbyMember, error)
	InsertMember(ctx context.Context, m *lobbymodel.LobbyMember) error
	ListMembers(ctx context.Context, lobbyID string) ([]lobbymodel.LobbyMember, error)
	DeleteMember(ctx context.Context, lobbyID, userID string) error
	SetMemberReady(ctx context.Context, lobbyID, userID string, ready bool) error

	InsertMessage(ctx context.Context, m *lobbymodel.LobbyMessage) error
}

type mongoStore struct{}

func NewMongoStore() Store { return &mongoStore{} }

func (s *mongoStore) coll(name string) (*mongo.Collection, error) {
	db, ok := mgo.TryGetDB()
	if !ok {
		return nil, errs.ErrStoreUnavailable.WithDetail("mongo not ready")
	}
	return db.Collection(name), nil
}

func (s *mongoStore) Get(ctx context.Context, lobbyID string) (*lobbymodel.Lobby, error) {
	coll, err := s.coll((&lobbymodel.Lobby{}).GetTableName())
	if err != nil {
		return nil, err
	}
	var l lobbymodel.Lobby
	err = coll.FindOne(ctx, bson.M{"lobby_id": lobbyID}).Decode(&l)
	if err != nil {
		if pkgerr.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrRecordNotFound.WithDetail("lobby " + lobbyID)
		}
		return nil, errs.WrapMsg(err, "find lobby", "lobbyID", lobbyID)
	}
	return &l, nil
}

func (s *mongoStore) Insert(ctx context.Context, l *lobbymodel.Lobby) error {
	coll, err := s.coll(l.GetTableName())
	if err != nil {
		return err
	}
	now := time.Now()
	if l.CreateTime.IsZero() {
		l.CreateTime = now
	}
	l.UpdateTime = now
	if _, err := coll.InsertOne(ctx, l); err != nil {
		return errs.WrapMsg(err, "insert lobby", "lobbyID", l.LobbyID)
	}
	return nil
}

func (s *mongoStore) Replace(ctx context.Context, l *lobbymodel.Lobby) error {
	coll, err := s.coll(l.GetTableName())
	if err != nil {
		return err
	}
	l.UpdateTime = time.Now()
	_, err = coll.ReplaceOne(ctx, bson.M{"lobby_id": l.LobbyID}, l,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errs.WrapMsg(err, "replace lobby", "lobbyID", l.LobbyID)
	}
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, lobbyID string) error {
	coll, err := s.coll((&lobbymodel.Lobby{}).GetTableName())
	if err != nil {
		return err
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"lobby_id": lobbyID}); err != nil {
		return errs.WrapMsg(err, "delete lobby", "lobbyID", lobbyID)
	}
	return nil
}

func (s *mongoStore) AddMember(ctx context.Context, lobbyID, userID string) error {
	coll, err := s.coll((&lobbymodel.Lobby{}).GetTableName())
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"lobby_id": lobbyID}, bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$set":      bson.M{"update_time": time.Now()},
	})
	if err != nil {
		return errs.WrapMsg(err, "add member", "lobbyID", lobbyID, "userID", userID)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WithDetail("lobby " + lobbyID)
	}
	return nil
}

func (s *mongoStore) RemoveMember(ctx context.Context, lobbyID, userID string) error {
	coll, err := s.coll((&lobbymodel.Lobby{}).GetTableName())
	if err != nil {
		return err
	}
	_, err = coll.UpdateOne(ctx, bson.M{"lobby_id": lobbyID}, bson.M{
		"$pull": bson.M{"member_ids": userID, "ready_ids": userID},
		"$set":  bson.M{"update_time": time.Now()},
	})
	if err != nil {
		return errs.WrapMsg(err, "remove member", "lobbyID", lobbyID, "userID", userID)
	}
	return nil
}

func (s *mongoStore) SetReady(ctx context.Context, lobbyID, userID string, ready bool) error {
	coll, err := s.coll((&lobbymodel.Lobby{}).GetTableName())
	if err != nil {
		return err
	}
	var update bson.M
	if ready {
		update = bson.M{
			"$addToSet": bson.M{"ready_ids": userID},
			"$set":      bson.M{"update_time": time.Now()},
		}
	} else {
		update = bson.M{
			"$pull": bson.M{"ready_ids": userID},
			"$set":  bson.M{"update_time": time.Now()},
		}
	}
	_, err = coll.UpdateOne(ctx, bson.M{"lobby_id": lobbyID}, update)
	if err != nil {
		return errs.WrapMsg(err, "set ready", "lobbyID", lobbyID, "userID", userID)
	}
	return nil
}

func (s *mongoStore) UpdateStatus(ctx context.Context, lobbyID, status string) error {
	coll, err := s.coll((&lobbymodel.Lobby{}).GetTableName())
	if err != nil {
		return err
	}
	_, err = coll.UpdateOne(ctx, bson.M{"lobby_id": lobbyID}, bson.M{
		"$set": bson.M{"status": status, "update_time": time.Now()},
	})
	if err != nil {
		return errs.WrapMsg(err, "update status", "lobbyID", lobbyID, "status", status)
	}
	return nil
}

func (s *mongoStore) GetMember(ctx context.Context, lobbyID, userID string) (*lobbymodel.LobbyMember, error) {
	coll, err := s.coll((&lobbymodel.LobbyMember{}).GetTableName())
	if err != nil {
		return nil, err
	}
	var m lobbymodel.LobbyMember
	err = coll.FindOne(ctx, bson.M{"lobby_id": lobbyID, "user_id": userID}).Decode(&m)
	if err != nil {
		if pkgerr.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrRecordNotFound.WithDetail("member " + userID)
		}
		return nil, errs.WrapMsg(err, "find member", "lobbyID", lobbyID, "userID", userID)
	}
	return &m, nil
}

func (s *mongoStore) InsertMember(ctx context.Context, m *lobbymodel.LobbyMember) error {
	coll, err := s.coll(m.GetTableName())
	if err != nil {
		return err
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	if _, err := coll.InsertOne(ctx, m); err != nil {
		return errs.WrapMsg(err, "insert member", "lobbyID", m.LobbyID, "userID", m.UserID)
	}
	return nil
}

func (s *mongoStore) ListMembers(ctx context.Context, lobbyID string) ([]lobbymodel.LobbyMember, error) {
	coll, err := s.coll((&lobbymodel.LobbyMember{}).GetTableName())
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.M{"lobby_id": lobbyID})
	if err != nil {
		return nil, errs.WrapMsg(err, "list members", "lobbyID", lobbyID)
	}
	defer cur.Close(ctx)
	var out []lobbymodel.LobbyMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode members", "lobbyID", lobbyID)
	}
	return out, nil
}

func (s *mongoStore) DeleteMember(ctx context.Context, lobbyID, userID string) error {
	coll, err := s.coll((&lobbymodel.LobbyMember{}).GetTableName())
	if err != nil {
		return err
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"lobby_id": lobbyID, "user_id": userID}); err != nil {
		return errs.WrapMsg(err, "delete member", "lobbyID", lobbyID, "userID", userID)
	}
	return nil
}

func (s *mongoStore) SetMemberReady(ctx context.Context, lobbyID, userID string, ready bool) error {
	coll, err := s.coll((&lobbymodel.LobbyMember{}).GetTableName())
	if err != nil {
		return err
	}
	_, err = coll.UpdateOne(ctx, bson.M{"lobby_id": lobbyID, "user_id": userID}, bson.M{
		"$set": bson.M{"is_ready": ready},
	})
	if err != nil {
		return errs.WrapMsg(err, "set member ready", "lobbyID", lobbyID, "userID", userID)
	}
	return nil
}

func (s *mongoStore) InsertMessage(ctx context.Context, m *lobbymodel.LobbyMessage) error {
	coll, err := s.coll(m.GetTableName())
	if err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if _, err := coll.InsertOne(ctx, m); err != nil {
		return errs.WrapMsg(err, "insert message", "lobbyID", m.LobbyID)
	}
	return nil
}
