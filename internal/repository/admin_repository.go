package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

type AdminRepository struct {
	coll *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{coll: db.Collection("admins")}
}

func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	res, err := r.coll.InsertOne(ctx, a)
	if err != nil {
		return translate(err, "AdminRepository.Create")
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var a model.Admin
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&a); err != nil {
		return nil, translate(err, "AdminRepository.GetByEmail")
	}
	return &a, nil
}

func (r *AdminRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}})
	if err != nil {
		return false, translate(err, "AdminRepository.ExistsByEmailOrUsername")
	}
	return n > 0, nil
}
