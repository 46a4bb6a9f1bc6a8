package service

import (
	"context"
	"time"

	usermodel "BetHub/module/user/model"
	mgo "BetHub/service/mgo"
	"BetHub/tools/errs"
	jwtlib "BetHub/tools/security"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgerr "github.com/pkg/errors"
)

// Directory 用户目录抽象：生产实现 Mongo，测试用内存实现（directory_mem.go）
type Directory interface {
	GetUser(ctx context.Context, userID string) (*usermodel.User, error)
	UpsertUser(ctx context.Context, u *usermodel.User) error
}

type mongoDirectory struct{}

func NewMongoDirectory() Directory { return &mongoDirectory{} }

func (d *mongoDirectory) GetUser(ctx context.Context, userID string) (*usermodel.User, error) {
	db, ok := mgo.TryGetDB()
	if !ok {
		return nil, errs.ErrStoreUnavailable.WithDetail("mongo not ready")
	}
	var u usermodel.User
	err := db.Collection((&usermodel.User{}).GetTableName()).
		FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if err != nil {
		if pkgerr.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrRecordNotFound.WithDetail("user " + userID)
		}
		return nil, errs.WrapMsg(err, "find user", "userID", userID)
	}
	return &u, nil
}

func (d *mongoDirectory) UpsertUser(ctx context.Context, u *usermodel.User) error {
	db, ok := mgo.TryGetDB()
	if !ok {
		return errs.ErrStoreUnavailable.WithDetail("mongo not ready")
	}
	u.UpdateTime = time.Now()
	if u.CreateTime.IsZero() {
		u.CreateTime = u.UpdateTime
	}
	_, err := db.Collection(u.GetTableName()).ReplaceOne(ctx,
		bson.M{"user_id": u.UserID}, u, options.Replace().SetUpsert(true))
	if err != nil {
		return errs.WrapMsg(err, "upsert user", "userID", u.UserID)
	}
	return nil
}

// Snapshot 取展示快照；目录查询失败不阻断主流程，缺省字段用零值兜底
func Snapshot(ctx context.Context, dir Directory, userID string) usermodel.DisplaySnapshot {
	snap := usermodel.DisplaySnapshot{UserID: userID, Username: userID}
	u, err := dir.GetUser(ctx, userID)
	if err != nil || u == nil {
		return snap
	}
	if u.Username != "" {
		snap.Username = u.Username
	}
	snap.FaceURL = u.FaceURL
	snap.Level = u.Level
	return snap
}

// LoginParams 登录入参
type LoginParams struct {
	UserID string
	Scopes []string
	Now    time.Time // 业务注入“当前时间”，零值时用 time.Now()
}

type LoginResult struct {
	UserID      string    `json:"UserID"`
	AccessToken string    `json:"AccessToken"`
	ExpireAt    time.Time `json:"ExpireAt"`
}

func Login(opts jwtlib.Options, in LoginParams) (LoginResult, error) {
	if in.UserID == "" {
		return LoginResult{}, errs.ErrArgs.WithDetail("userId required")
	}
	token, _, exp, err := jwtlib.Generate(opts, in.UserID, in.Scopes)
	if err != nil {
		return LoginResult{}, errs.WrapMsg(err, "generate token", "userID", in.UserID)
	}
	return LoginResult{UserID: in.UserID, AccessToken: token, ExpireAt: exp}, nil
}
