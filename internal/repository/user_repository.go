package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection("users")}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return translate(err, "UserRepository.Create")
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "UserRepository.GetByID")
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "UserRepository.GetByEmail")
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, op string) (*model.User, error) {
	var u model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err, op)
	}
	return &u, nil
}

// GetByIDs loads the given users keyed by ID. Unknown IDs are skipped.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	out := make(map[primitive.ObjectID]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate(err, "UserRepository.GetByIDs")
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, translate(err, "UserRepository.GetByIDs decode")
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *UserRepository) List(ctx context.Context, f model.UserFilter) ([]model.User, error) {
	filter := bson.M{}
	if f.HostsOnly {
		filter["isHost"] = true
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, translate(err, "UserRepository.List")
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, translate(err, "UserRepository.List decode")
	}
	return users, nil
}

// Update writes the profile fields. Email, password and the host flag are
// not touched.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	res, err := r.coll.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"fullName":     u.FullName,
		"phone":        u.Phone,
		"age":          u.Age,
		"bloodGroup":   u.BloodGroup,
		"address":      u.Address,
		"aadhaarImage": u.AadhaarImage,
		"gender":       u.Gender,
		"face":         u.Face,
		"updatedAt":    u.UpdatedAt,
	}})
	if err != nil {
		return translate(err, "UserRepository.Update")
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetHost(ctx context.Context, id primitive.ObjectID, isHost bool) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"isHost": isHost}})
	if err != nil {
		return translate(err, "UserRepository.SetHost")
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}
