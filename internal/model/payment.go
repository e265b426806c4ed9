package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Payment records a Stripe payment intent created for a booking.
type Payment struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User                  primitive.ObjectID `bson:"user" json:"user"`
	Property              primitive.ObjectID `bson:"property" json:"property"`
	Amount                float64            `bson:"amount" json:"amount"`
	Status                PaymentStatus      `bson:"status" json:"status"`
	StripeSessionID       string             `bson:"stripeSessionId" json:"stripeSessionId"`
	StripePaymentIntentID string             `bson:"stripePaymentIntentId,omitempty" json:"stripePaymentIntentId,omitempty"`
	PaymentMethod         string             `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	PaidAt                *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PropertySummary is the property projection shown next to a payment.
type PropertySummary struct {
	ID            primitive.ObjectID `json:"_id"`
	Title         string             `json:"title"`
	PropertyImage string             `json:"propertyImage,omitempty"`
}

// PaymentDetails is a payment with its user and property references
// resolved. Unresolved references keep their ObjectID.
type PaymentDetails struct {
	Payment
	User     any `json:"user"`
	Property any `json:"property"`
}

func NewPaymentDetails(p Payment) PaymentDetails {
	return PaymentDetails{Payment: p, User: p.User, Property: p.Property}
}
