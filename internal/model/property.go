package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyStatus string

const (
	StatusPending  PropertyStatus = "pending"
	StatusApproved PropertyStatus = "approved"
	StatusRejected PropertyStatus = "rejected"
)

// Valid reports whether s is one of the moderation statuses.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

const (
	MaxPricePerNight  = 5000
	MaxDescriptionLen = 500
	MaxReviewComment  = 500
	MinRating         = 1
	MaxRating         = 5
)

// PropertyImages are the four wall photos every listing must carry.
type PropertyImages struct {
	FrontWall string `bson:"frontWall" json:"frontWall"`
	BackWall  string `bson:"backWall" json:"backWall"`
	LeftWall  string `bson:"leftWall" json:"leftWall"`
	RightWall string `bson:"rightWall" json:"rightWall"`
}

func (im PropertyImages) Complete() bool {
	return im.FrontWall != "" && im.BackWall != "" && im.LeftWall != "" && im.RightWall != ""
}

// AdminReview is the rating an admin attaches to a property while vetting it.
type AdminReview struct {
	Rating     int                `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment" json:"comment"`
	ReviewedAt time.Time          `bson:"reviewedAt" json:"reviewedAt"`
	ReviewedBy primitive.ObjectID `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
}

type Property struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title           string             `bson:"title" json:"title"`
	Landmark        string             `bson:"landmark" json:"landmark"`
	Pincode         string             `bson:"pincode" json:"pincode"`
	FullAddress     string             `bson:"fullAddress" json:"fullAddress"`
	PricePerNight   float64            `bson:"pricePerNight" json:"pricePerNight"`
	Description     string             `bson:"description" json:"description"`
	Capacity        int                `bson:"capacity" json:"capacity"`
	CreatedBy       primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	PropertyImage   string             `bson:"propertyImage,omitempty" json:"propertyImage,omitempty"`
	Images          PropertyImages     `bson:"images" json:"images"`
	Status          PropertyStatus     `bson:"status" json:"status"`
	HealthReportPDF string             `bson:"healthReportPDF,omitempty" json:"healthReportPDF,omitempty"`
	AdminReview     *AdminReview       `bson:"adminReview,omitempty" json:"adminReview,omitempty"`
	IsBooked        bool               `bson:"isBooked" json:"isBooked"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PropertyWithOwner is a property whose createdBy reference has been
// resolved to the owner's summary. CreatedBy falls back to the raw ObjectID
// when the owner is unknown.
type PropertyWithOwner struct {
	Property
	CreatedBy any `json:"createdBy"`
}

func NewPropertyWithOwner(p Property, owner *User) PropertyWithOwner {
	v := PropertyWithOwner{Property: p, CreatedBy: p.CreatedBy}
	if owner != nil {
		v.CreatedBy = owner.Summary()
	}
	return v
}

// PropertyUpdate carries the owner-editable fields. Nil fields are kept.
type PropertyUpdate struct {
	Title         *string         `json:"title"`
	Landmark      *string         `json:"landmark"`
	Pincode       *string         `json:"pincode"`
	FullAddress   *string         `json:"fullAddress"`
	PricePerNight *Number         `json:"pricePerNight"`
	Description   *string         `json:"description"`
	Capacity      *Int            `json:"capacity"`
	Images        *PropertyImages `json:"images"`
	PropertyImage *string         `json:"propertyImage"`
}

func (pu PropertyUpdate) Apply(p *Property) {
	if pu.Title != nil {
		p.Title = *pu.Title
	}
	if pu.Landmark != nil {
		p.Landmark = *pu.Landmark
	}
	if pu.Pincode != nil {
		p.Pincode = *pu.Pincode
	}
	if pu.FullAddress != nil {
		p.FullAddress = *pu.FullAddress
	}
	if pu.PricePerNight != nil {
		p.PricePerNight = float64(*pu.PricePerNight)
	}
	if pu.Description != nil {
		p.Description = *pu.Description
	}
	if pu.Capacity != nil {
		p.Capacity = int(*pu.Capacity)
	}
	if pu.Images != nil {
		p.Images = *pu.Images
	}
	if pu.PropertyImage != nil {
		p.PropertyImage = *pu.PropertyImage
	}
}

// PropertyPatch is a partial write of a stored property. Nil fields keep
// their stored value.
type PropertyPatch struct {
	PropertyUpdate
	Status      *PropertyStatus
	AdminReview *AdminReview
	IsBooked    *bool
	UpdatedAt   time.Time
}

func (pp PropertyPatch) Apply(p *Property) {
	pp.PropertyUpdate.Apply(p)
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	if pp.AdminReview != nil {
		review := *pp.AdminReview
		p.AdminReview = &review
	}
	if pp.IsBooked != nil {
		p.IsBooked = *pp.IsBooked
	}
	if !pp.UpdatedAt.IsZero() {
		p.UpdatedAt = pp.UpdatedAt
	}
}

type PropertySort int

const (
	SortPriceAsc PropertySort = iota
	SortPriceDesc
	SortNewest
	SortTopRated
)

// PropertyFilter selects properties. Zero values mean "no constraint".
type PropertyFilter struct {
	Status        PropertyStatus
	AvailableOnly bool
	MinPrice      *float64
	MaxPrice      *float64
	MinCapacity   *int
	CreatedBy     *primitive.ObjectID
	RatedOnly     bool
}

// Matches evaluates the filter against a single property.
func (f PropertyFilter) Matches(p *Property) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.AvailableOnly && p.IsBooked {
		return false
	}
	if f.MinPrice != nil && p.PricePerNight < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.PricePerNight > *f.MaxPrice {
		return false
	}
	if f.MinCapacity != nil && p.Capacity < *f.MinCapacity {
		return false
	}
	if f.CreatedBy != nil && p.CreatedBy != *f.CreatedBy {
		return false
	}
	if f.RatedOnly && (p.AdminReview == nil || p.AdminReview.Rating == 0) {
		return false
	}
	return true
}

// Page is a 1-based page request. A zero Limit means everything.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Skip() int {
	if p.Number < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// TotalPages returns ceil(total/limit).
func (p Page) TotalPages(total int64) int64 {
	if p.Limit <= 0 {
		return 1
	}
	return (total + int64(p.Limit) - 1) / int64(p.Limit)
}

// ReportFilename is the stored name of a property's health report.
func ReportFilename(propertyID string) string {
	return "report_" + propertyID + ".pdf"
}
