package service

import (
	"context"
	"time"

	invitemodel "BetHub/module/invite/model"
	mgo "BetHub/service/mgo"
	"BetHub/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	pkgerr "github.com/pkg/errors"
)

// Store 邀请持久化抽象。Resolve 是带状态前置条件的比较交换：
// 只有仍处于 from 状态的记录会被迁移，丢前置条件报 Conflict。
type Store interface {
	Insert(ctx context.Context, inv *invitemodel.Invite) error
	Get(ctx context.Context, inviteID string) (*invitemodel.Invite, error)
	Resolve(ctx context.Context, inviteID string, from, to invitemodel.Status) error
	ListPendingByInvitee(ctx context.Context, inviteeID string) ([]invitemodel.Invite, error)
}

type mongoStore struct{}

func NewMongoStore() Store { return &mongoStore{} }

func (s *mongoStore) coll() (*mongo.Collection, error) {
	db, ok := mgo.TryGetDB()
	if !ok {
		return nil, errs.ErrStoreUnavailable.WithDetail("mongo not ready")
	}
	return db.Collection((&invitemodel.Invite{}).GetTableName()), nil
}

func (s *mongoStore) Insert(ctx context.Context, inv *invitemodel.Invite) error {
	coll, err := s.coll()
	if err != nil {
		return err
	}
	if inv.CreateTime.IsZero() {
		inv.CreateTime = time.Now()
	}
	if _, err := coll.InsertOne(ctx, inv); err != nil {
		return errs.WrapMsg(err, "insert invite", "inviteID", inv.InviteID)
	}
	return nil
}

func (s *mongoStore) Get(ctx context.Context, inviteID string) (*invitemodel.Invite, error) {
	coll, err := s.coll()
	if err != nil {
		return nil, err
	}
	var inv invitemodel.Invite
	err = coll.FindOne(ctx, bson.M{"invite_id": inviteID}).Decode(&inv)
	if err != nil {
		if pkgerr.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrRecordNotFound.WithDetail("invite " + inviteID)
		}
		return nil, errs.WrapMsg(err, "find invite", "inviteID", inviteID)
	}
	return &inv, nil
}

func (s *mongoStore) Resolve(ctx context.Context, inviteID string, from, to invitemodel.Status) error {
	if !invitemodel.CanTransition(from, to) {
		return errs.ErrConflict.WithDetail("illegal transition " + from.String() + "→" + to.String())
	}
	coll, err := s.coll()
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"invite_id": inviteID, "status": from},
		bson.M{"$set": bson.M{"status": to, "handle_time": time.Now()}},
	)
	if err != nil {
		return errs.WrapMsg(err, "resolve invite", "inviteID", inviteID)
	}
	if res.MatchedCount == 0 {
		// 记录不存在或状态已被并发迁移
		if _, gerr := s.Get(ctx, inviteID); gerr != nil {
			return gerr
		}
		return errs.ErrConflict.WithDetail("invite not " + from.String())
	}
	return nil
}

func (s *mongoStore) ListPendingByInvitee(ctx context.Context, inviteeID string) ([]invitemodel.Invite, error) {
	coll, err := s.coll()
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.M{
		"invitee_id": inviteeID,
		"status":     invitemodel.StatusPending,
	})
	if err != nil {
		return nil, errs.WrapMsg(err, "list pending invites", "inviteeID", inviteeID)
	}
	defer cur.Close(ctx)
	var out []invitemodel.Invite
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode invites", "inviteeID", inviteeID)
	}
	return out, nil
}
