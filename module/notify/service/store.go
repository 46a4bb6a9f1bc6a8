package service

import (
	"context"
	"time"

	notifymodel "BetHub/module/notify/model"
	mgo "BetHub/service/mgo"
	"BetHub/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store 通知持久化抽象。MarkRead 只允许 false→true。
type Store interface {
	Insert(ctx context.Context, n *notifymodel.Notification) error
	MarkRead(ctx context.Context, notifyID string) error
	MarkReadByInvite(ctx context.Context, inviteID string) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]notifymodel.Notification, error)
	ClearForRecipient(ctx context.Context, recipientID string) error
}

type mongoStore struct{}

func NewMongoStore() Store { return &mongoStore{} }

func (s *mongoStore) coll() (*mongo.Collection, error) {
	db, ok := mgo.TryGetDB()
	if !ok {
		return nil, errs.ErrStoreUnavailable.WithDetail("mongo not ready")
	}
	return db.Collection((&notifymodel.Notification{}).GetTableName()), nil
}

func (s *mongoStore) Insert(ctx context.Context, n *notifymodel.Notification) error {
	coll, err := s.coll()
	if err != nil {
		return err
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if _, err := coll.InsertOne(ctx, n); err != nil {
		return errs.WrapMsg(err, "insert notification", "notifyID", n.NotifyID)
	}
	return nil
}

func (s *mongoStore) MarkRead(ctx context.Context, notifyID string) error {
	coll, err := s.coll()
	if err != nil {
		return err
	}
	// 过滤 is_read:false，读标记只会单向翻转
	_, err = coll.UpdateOne(ctx,
		bson.M{"notify_id": notifyID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return errs.WrapMsg(err, "mark read", "notifyID", notifyID)
	}
	return nil
}

func (s *mongoStore) MarkReadByInvite(ctx context.Context, inviteID string) error {
	coll, err := s.coll()
	if err != nil {
		return err
	}
	_, err = coll.UpdateMany(ctx,
		bson.M{"payload.invite_id": inviteID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return errs.WrapMsg(err, "mark read by invite", "inviteID", inviteID)
	}
	return nil
}

func (s *mongoStore) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]notifymodel.Notification, error) {
	coll, err := s.coll()
	if err != nil {
		return nil, err
	}
	filter := bson.M{"recipient_id": recipientID}
	if unreadOnly {
		filter["is_read"] = false
	}
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, errs.WrapMsg(err, "list notifications", "recipientID", recipientID)
	}
	defer cur.Close(ctx)
	var out []notifymodel.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode notifications", "recipientID", recipientID)
	}
	return out, nil
}

func (s *mongoStore) ClearForRecipient(ctx context.Context, recipientID string) error {
	coll, err := s.coll()
	if err != nil {
		return err
	}
	if _, err := coll.DeleteMany(ctx, bson.M{"recipient_id": recipientID}); err != nil {
		return errs.WrapMsg(err, "clear notifications", "recipientID", recipientID)
	}
	return nil
}
