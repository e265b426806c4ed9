package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

type PropertyRepository struct {
	coll *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{coll: db.Collection("properties")}
}

// Create inserts p and sets its generated ID.
func (r *PropertyRepository) Create(ctx context.Context, p *model.Property) error {
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return translate(err, "PropertyRepository.Create")
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Property, error) {
	var p model.Property
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err, "PropertyRepository.GetByID")
	}
	return &p, nil
}

// GetFiltered returns the properties matching f in the requested order.
// A zero page limit returns every match.
func (r *PropertyRepository) GetFiltered(ctx context.Context, f model.PropertyFilter, sort model.PropertySort, page model.Page) ([]model.Property, error) {
	opts := options.Find().SetSort(sortSpec(sort))
	if page.Limit > 0 {
		opts.SetSkip(int64(page.Skip())).SetLimit(int64(page.Limit))
	}

	cur, err := r.coll.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, translate(err, "PropertyRepository.GetFiltered")
	}
	var list []model.Property
	if err := cur.All(ctx, &list); err != nil {
		return nil, translate(err, "PropertyRepository.GetFiltered decode")
	}
	return list, nil
}

func (r *PropertyRepository) Count(ctx context.Context, f model.PropertyFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, filterDoc(f))
	if err != nil {
		return 0, translate(err, "PropertyRepository.Count")
	}
	return n, nil
}

// Patch $sets the fields carried by patch, leaving every other field as
// stored.
func (r *PropertyRepository) Patch(ctx context.Context, id primitive.ObjectID, patch model.PropertyPatch) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": patchDoc(patch)})
	if err != nil {
		return translate(err, "PropertyRepository.Patch")
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes the property document.
func (r *PropertyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "PropertyRepository.Delete")
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func patchDoc(pp model.PropertyPatch) bson.M {
	set := bson.M{}
	if pp.Title != nil {
		set["title"] = *pp.Title
	}
	if pp.Landmark != nil {
		set["landmark"] = *pp.Landmark
	}
	if pp.Pincode != nil {
		set["pincode"] = *pp.Pincode
	}
	if pp.FullAddress != nil {
		set["fullAddress"] = *pp.FullAddress
	}
	if pp.PricePerNight != nil {
		set["pricePerNight"] = float64(*pp.PricePerNight)
	}
	if pp.Description != nil {
		set["description"] = *pp.Description
	}
	if pp.Capacity != nil {
		set["capacity"] = int(*pp.Capacity)
	}
	if pp.Images != nil {
		set["images"] = *pp.Images
	}
	if pp.PropertyImage != nil {
		set["propertyImage"] = *pp.PropertyImage
	}
	if pp.Status != nil {
		set["status"] = *pp.Status
	}
	if pp.AdminReview != nil {
		set["adminReview"] = *pp.AdminReview
	}
	if pp.IsBooked != nil {
		set["isBooked"] = *pp.IsBooked
	}
	if !pp.UpdatedAt.IsZero() {
		set["updatedAt"] = pp.UpdatedAt
	}
	return set
}

func filterDoc(f model.PropertyFilter) bson.M {
	doc := bson.M{}
	if f.Status != "" {
		doc["status"] = f.Status
	}
	if f.AvailableOnly {
		doc["isBooked"] = false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		doc["pricePerNight"] = price
	}
	if f.MinCapacity != nil {
		doc["capacity"] = bson.M{"$gte": *f.MinCapacity}
	}
	if f.CreatedBy != nil {
		doc["createdBy"] = *f.CreatedBy
	}
	if f.RatedOnly {
		doc["adminReview.rating"] = bson.M{"$exists": true, "$ne": nil}
	}
	return doc
}

func sortSpec(s model.PropertySort) bson.D {
	switch s {
	case model.SortPriceDesc:
		return bson.D{{Key: "pricePerNight", Value: -1}}
	case model.SortNewest:
		return bson.D{{Key: "createdAt", Value: -1}}
	case model.SortTopRated:
		return bson.D{{Key: "adminReview.rating", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "pricePerNight", Value: 1}}
	}
}
