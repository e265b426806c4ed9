package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

type PaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection("payments")}
}

func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return translate(err, "PaymentRepository.Create")
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Payment, error) {
	var p model.Payment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err, "PaymentRepository.GetByID")
	}
	return &p, nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *model.Payment) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return translate(err, "PaymentRepository.Update")
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// GetByUser returns one page of the user's payments, newest first.
func (r *PaymentRepository) GetByUser(ctx context.Context, user primitive.ObjectID, page model.Page) ([]model.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if page.Limit > 0 {
		opts.SetSkip(int64(page.Skip())).SetLimit(int64(page.Limit))
	}
	cur, err := r.coll.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, translate(err, "PaymentRepository.GetByUser")
	}
	var list []model.Payment
	if err := cur.All(ctx, &list); err != nil {
		return nil, translate(err, "PaymentRepository.GetByUser decode")
	}
	return list, nil
}

func (r *PaymentRepository) CountByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"user": user})
	if err != nil {
		return 0, translate(err, "PaymentRepository.CountByUser")
	}
	return n, nil
}

// SetStatusByIntent updates the payment created for a Stripe payment intent.
// paidAt is only written when non-nil.
func (r *PaymentRepository) SetStatusByIntent(ctx context.Context, intentID string, status model.PaymentStatus, paidAt *time.Time) error {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if paidAt != nil {
		set["paidAt"] = *paidAt
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"stripePaymentIntentId": intentID}, bson.M{"$set": set})
	if err != nil {
		return translate(err, "PaymentRepository.SetStatusByIntent")
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}
