package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unclebandit/mailmerge-backend/internal/db"
	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: database.Collection(db.UsersCollection)}
}

func (r *MongoUserRepository) UpsertGoogleUser(ctx context.Context, u *model.User) (*model.User, error) {
	now := time.Now().UTC()
	set := bson.M{
		"name":                u.Name,
		"profile_pic":         u.ProfilePic,
		"google_id":           u.GoogleID,
		"google_access_token": u.GoogleAccessToken,
		"updated_at":          now,
	}
	if u.GoogleRefreshToken != "" {
		set["google_refresh_token"] = u.GoogleRefreshToken
	}
	if u.TokenExpiry != nil {
		set["token_expiry"] = *u.TokenExpiry
	}

	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": id, "email": u.Email, "created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out model.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"email": u.Email}, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id)
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, key string) (*model.User, error) {
	var u model.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appErrors.NewNotFound("user", key)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

var _ UserRepositoryInterface = (*MongoUserRepository)(nil)
