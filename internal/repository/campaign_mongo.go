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

// MongoCampaignRepository stores each campaign as a single document with its
// recipients embedded.
type MongoCampaignRepository struct {
	coll *mongo.Collection
}

func NewMongoCampaignRepository(database *mongo.Database) *MongoCampaignRepository {
	return &MongoCampaignRepository{coll: database.Collection(db.CampaignsCollection)}
}

func (r *MongoCampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, c)
	return err
}

func (r *MongoCampaignRepository) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.Campaign, int, error) {
	filter := bson.M{"owner_id": ownerID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	campaigns := []*model.Campaign{}
	if err := cur.All(ctx, &campaigns); err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return campaigns, int(total), nil
}

func (r *MongoCampaignRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appErrors.NewNotFound("campaign", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MongoCampaignRepository) GetStats(ctx context.Context, id string) (model.CampaignStats, error) {
	var c model.Campaign
	opts := options.FindOne().SetProjection(bson.M{"recipients.mail_successful": 1})
	err := r.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.CampaignStats{}, appErrors.NewNotFound("campaign", id)
	}
	if err != nil {
		return model.CampaignStats{}, err
	}
	return model.StatsOf(&c), nil
}

var _ CampaignRepositoryInterface = (*MongoCampaignRepository)(nil)
