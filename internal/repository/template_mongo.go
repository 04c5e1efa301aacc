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

type MongoTemplateRepository struct {
	coll *mongo.Collection
}

func NewMongoTemplateRepository(database *mongo.Database) *MongoTemplateRepository {
	return &MongoTemplateRepository{coll: database.Collection(db.TemplatesCollection)}
}

func (r *MongoTemplateRepository) Create(ctx context.Context, t *model.EmailTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := r.coll.InsertOne(ctx, t)
	if mongo.IsDuplicateKeyError(err) {
		return appErrors.NewConflict(msgTemplateExists)
	}
	return err
}

func (r *MongoTemplateRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.EmailTemplate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	templates := []*model.EmailTemplate{}
	if err := cur.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *MongoTemplateRepository) GetByID(ctx context.Context, ownerID, id string) (*model.EmailTemplate, error) {
	var t model.EmailTemplate
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appErrors.NewNotFound("template", id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *MongoTemplateRepository) Update(ctx context.Context, t *model.EmailTemplate) error {
	t.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":       t.Name,
		"subject":    t.Subject,
		"body":       t.Body,
		"variables":  t.Variables,
		"updated_at": t.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": t.ID, "owner_id": t.OwnerID}, update)
	if mongo.IsDuplicateKeyError(err) {
		return appErrors.NewConflict(msgTemplateRenameExists)
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return appErrors.NewNotFound("template", t.ID)
	}
	return nil
}

func (r *MongoTemplateRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return appErrors.NewNotFound("template", id)
	}
	return nil
}

var _ TemplateRepositoryInterface = (*MongoTemplateRepository)(nil)
