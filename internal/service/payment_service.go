package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

type CreatedIntent struct {
	ClientSecret string
	PaymentID    primitive.ObjectID
}

type PaymentHistory struct {
	Payments    []model.PaymentDetails `json:"payments"`
	TotalPages  int64                  `json:"totalPages"`
	CurrentPage int                    `json:"currentPage"`
}

type PaymentService struct {
	payments   PaymentStore
	properties PropertyStore
	users      UserStore
	gateway    PaymentGateway // nil when Stripe is not configured
	lggr       *zap.SugaredLogger
	now        func() time.Time
}

func NewPaymentService(payments PaymentStore, properties PropertyStore, users UserStore, gateway PaymentGateway, lggr *zap.SugaredLogger) *PaymentService {
	return &PaymentService{
		payments:   payments,
		properties: properties,
		users:      users,
		gateway:    gateway,
		lggr:       lggr.Named("payment"),
		now:        time.Now,
	}
}

// CreateIntent opens a Stripe payment intent for the property and records it
// as a pending payment. Amount is in major currency units.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, propertyID string, amount float64) (*CreatedIntent, error) {
	if s.gateway == nil {
		return nil, unavailable("Stripe is not configured. Please check your environment variables.")
	}
	if propertyID == "" || amount == 0 {
		return nil, invalid("Property ID and amount are required")
	}
	if amount < 1 {
		return nil, invalid("Amount must be at least 1")
	}
	user, err := parseID(userID, "Invalid user ID")
	if err != nil {
		return nil, err
	}
	propID, err := primitive.ObjectIDFromHex(propertyID)
	if err != nil {
		return nil, notFound("Property not found")
	}
	if _, err := s.properties.GetByID(ctx, propID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFound("Property not found")
		}
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, int64(math.Round(amount*100)), map[string]string{
		"propertyId": propertyID,
		"userId":     userID,
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	pmt := &model.Payment{
		User:                  user,
		Property:              propID,
		Amount:                amount,
		Status:                model.PaymentPending,
		StripeSessionID:       intent.ID,
		StripePaymentIntentID: intent.ID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.payments.Create(ctx, pmt); err != nil {
		return nil, err
	}
	return &CreatedIntent{ClientSecret: intent.ClientSecret, PaymentID: pmt.ID}, nil
}

// Confirm marks the caller's payment as paid and books the property.
func (s *PaymentService) Confirm(ctx context.Context, userID, paymentID, method string) (*model.Payment, error) {
	if paymentID == "" {
		return nil, invalid("Payment ID is required")
	}
	pmt, err := s.owned(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	pmt.Status = model.PaymentPaid
	pmt.PaymentMethod = method
	pmt.PaidAt = &now
	pmt.UpdatedAt = now
	if err := s.payments.Update(ctx, pmt); err != nil {
		return nil, err
	}

	booked := true
	err = s.properties.Patch(ctx, pmt.Property, model.PropertyPatch{IsBooked: &booked, UpdatedAt: now})
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.lggr.Warnw("paid property no longer exists", "payment", pmt.ID.Hex(), "property", pmt.Property.Hex())
	case err != nil:
		return nil, err
	}
	return pmt, nil
}

func (s *PaymentService) Status(ctx context.Context, userID, paymentID string) (*model.PaymentDetails, error) {
	pmt, err := s.owned(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, []model.Payment{*pmt}, true)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *PaymentService) History(ctx context.Context, userID string, page, limit int) (*PaymentHistory, error) {
	user, err := parseID(userID, "Invalid user ID")
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	pg := model.Page{Number: page, Limit: limit}

	pmts, err := s.payments.GetByUser(ctx, user, pg)
	if err != nil {
		return nil, err
	}
	total, err := s.payments.CountByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, pmts, false)
	if err != nil {
		return nil, err
	}
	return &PaymentHistory{Payments: details, TotalPages: pg.TotalPages(total), CurrentPage: page}, nil
}

// HandleWebhook applies a verified Stripe event to the matching payment.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return unavailable("Stripe is not configured. Please check your environment variables.")
	}
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.lggr.Warnw("webhook signature verification failed", "error", err)
		return invalid("Webhook Error: " + err.Error())
	}

	switch evt.Type {
	case EventPaymentSucceeded:
		s.lggr.Infow("payment intent succeeded", "intent", evt.IntentID)
		now := s.now().UTC()
		err = s.payments.SetStatusByIntent(ctx, evt.IntentID, model.PaymentPaid, &now)
	case EventPaymentFailed:
		s.lggr.Infow("payment intent failed", "intent", evt.IntentID)
		err = s.payments.SetStatusByIntent(ctx, evt.IntentID, model.PaymentFailed, nil)
	default:
		s.lggr.Debugw("unhandled webhook event", "type", evt.Type)
		return nil
	}
	if errors.Is(err, model.ErrNotFound) {
		s.lggr.Warnw("webhook for unknown payment intent", "intent", evt.IntentID)
		return nil
	}
	return err
}

func (s *PaymentService) owned(ctx context.Context, userID, paymentID string) (*model.Payment, error) {
	id, err := primitive.ObjectIDFromHex(paymentID)
	if err != nil {
		return nil, notFound("Payment not found")
	}
	pmt, err := s.payments.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, notFound("Payment not found")
	}
	if err != nil {
		return nil, err
	}
	if pmt.User.Hex() != userID {
		return nil, forbidden("Unauthorized access to payment")
	}
	return pmt, nil
}

// details resolves the property of each payment and, when withUser is set,
// the paying user.
func (s *PaymentService) details(ctx context.Context, pmts []model.Payment, withUser bool) ([]model.PaymentDetails, error) {
	out := make([]model.PaymentDetails, 0, len(pmts))
	for _, pmt := range pmts {
		d := model.NewPaymentDetails(pmt)

		prop, err := s.properties.GetByID(ctx, pmt.Property)
		switch {
		case err == nil:
			d.Property = &model.PropertySummary{ID: prop.ID, Title: prop.Title, PropertyImage: prop.PropertyImage}
		case !errors.Is(err, model.ErrNotFound):
			return nil, err
		}

		if withUser {
			usr, err := s.users.GetByID(ctx, pmt.User)
			switch {
			case err == nil:
				d.User = &model.UserSummary{ID: usr.ID, FullName: usr.FullName, Email: usr.Email}
			case !errors.Is(err, model.ErrNotFound):
				return nil, err
			}
		}
		out = append(out, d)
	}
	return out, nil
}
