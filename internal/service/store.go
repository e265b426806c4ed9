package service

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

// Stores return model.ErrNotFound for missing documents and
// model.ErrDuplicate for unique-index violations.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	SetHost(ctx context.Context, id primitive.ObjectID, isHost bool) error
}

type AdminStore interface {
	Create(ctx context.Context, a *model.Admin) error
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}

type PropertyStore interface {
	Create(ctx context.Context, p *model.Property) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Property, error)
	GetFiltered(ctx context.Context, filter model.PropertyFilter, sort model.PropertySort, page model.Page) ([]model.Property, error)
	Count(ctx context.Context, filter model.PropertyFilter) (int64, error)
	// Patch writes only the fields set in patch.
	Patch(ctx context.Context, id primitive.ObjectID, patch model.PropertyPatch) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Payment, error)
	Update(ctx context.Context, p *model.Payment) error
	GetByUser(ctx context.Context, user primitive.ObjectID, page model.Page) ([]model.Payment, error)
	CountByUser(ctx context.Context, user primitive.ObjectID) (int64, error)
	SetStatusByIntent(ctx context.Context, intentID string, status model.PaymentStatus, paidAt *time.Time) error
}

// ReportStore keeps one health report PDF per property.
type ReportStore interface {
	Upload(ctx context.Context, propertyID string, r io.Reader) (string, error)
	Open(ctx context.Context, propertyID string) (io.ReadCloser, error)
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

type PaymentEvent struct {
	Type     string
	IntentID string
}

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// PaymentGateway creates payment intents and authenticates their webhooks.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, metadata map[string]string) (*PaymentIntent, error)
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

// MediaUploader stores a file remotely and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, r io.Reader, filename, folder string) (string, error)
}

// FaceEncoder computes the face descriptor of the single face in an image.
type FaceEncoder interface {
	Descriptor(ctx context.Context, image []byte, filename string) ([]float64, error)
}

// DocumentFetcher downloads a remote document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}
