package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/aniket-manhas-git/aasra-sewa/internal/auth"
	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

// StatusChange is an admin moderation decision. Rating and Comment are
// mandatory when approving.
type StatusChange struct {
	Action  string
	Rating  *int
	Comment string
}

type AdminService struct {
	admins     AdminStore
	users      UserStore
	properties PropertyStore
	tokens     *auth.Manager
	fetcher    DocumentFetcher
	now        func() time.Time
}

func NewAdminService(admins AdminStore, users UserStore, properties PropertyStore, tokens *auth.Manager, fetcher DocumentFetcher) *AdminService {
	return &AdminService{
		admins:     admins,
		users:      users,
		properties: properties,
		tokens:     tokens,
		fetcher:    fetcher,
		now:        time.Now,
	}
}

func (s *AdminService) Register(ctx context.Context, username, email, password string) error {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return invalid("All fields are required")
	}
	exists, err := s.admins.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return err
	}
	if exists {
		return conflict("Admin already exists")
	}

	now := s.now().UTC()
	adm := &model.Admin{Username: username, Email: email, CreatedAt: now, UpdatedAt: now}
	if err := adm.SetPassword(password); err != nil {
		return err
	}
	if err := s.admins.Create(ctx, adm); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return conflict("Admin already exists")
		}
		return err
	}
	return nil
}

func (s *AdminService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", invalid("Email and password are required")
	}
	adm, err := s.admins.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrNotFound) {
		return "", notFound("Admin not found")
	}
	if err != nil {
		return "", err
	}
	if !adm.CheckPassword(password) {
		return "", unauthorized("Invalid credentials")
	}
	return s.tokens.IssueAdminToken(adm.ID.Hex())
}

func (s *AdminService) Users(ctx context.Context) ([]model.User, error) {
	return s.listUsers(ctx, model.UserFilter{})
}

func (s *AdminService) Hosts(ctx context.Context) ([]model.User, error) {
	return s.listUsers(ctx, model.UserFilter{HostsOnly: true})
}

func (s *AdminService) listUsers(ctx context.Context, f model.UserFilter) ([]model.User, error) {
	users, err := s.users.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// Properties lists every listing newest first. Unknown status values are
// ignored rather than rejected.
func (s *AdminService) Properties(ctx context.Context, status string) ([]model.PropertyWithOwner, error) {
	var filter model.PropertyFilter
	if st := model.PropertyStatus(status); st.Valid() {
		filter.Status = st
	}
	props, err := s.properties.GetFiltered(ctx, filter, model.SortNewest, model.Page{})
	if err != nil {
		return nil, err
	}
	return populateOwners(ctx, s.users, props)
}

func (s *AdminService) Property(ctx context.Context, id string) (*model.PropertyWithOwner, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := populateOwners(ctx, s.users, []model.Property{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateStatus writes the moderation decision and then re-derives the
// owner's host flag from their approved listings.
func (s *AdminService) UpdateStatus(ctx context.Context, adminID, propertyID string, ch StatusChange) (*model.Property, error) {
	p, err := s.find(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	status := model.PropertyStatus(ch.Action)
	if !status.Valid() {
		return nil, invalid("Invalid action")
	}
	patch := model.PropertyPatch{Status: &status, UpdatedAt: s.now().UTC()}
	if status == model.StatusApproved {
		if ch.Rating == nil || *ch.Rating == 0 || strings.TrimSpace(ch.Comment) == "" {
			return nil, invalid("Rating and comment are required when approving a property")
		}
		review, err := s.review(adminID, *ch.Rating, ch.Comment)
		if err != nil {
			return nil, err
		}
		patch.AdminReview = review
	}

	if err := s.properties.Patch(ctx, p.ID, patch); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFound("Property not found")
		}
		return nil, err
	}
	patch.Apply(p)
	if err := syncHostFlag(ctx, s.properties, s.users, p.CreatedBy); err != nil {
		return nil, err
	}
	return p, nil
}

// Review attaches or replaces the admin review without touching the status.
func (s *AdminService) Review(ctx context.Context, adminID, propertyID string, rating int, comment string) (*model.AdminReview, error) {
	if _, err := parseID(propertyID, "Invalid property ID"); err != nil {
		return nil, err
	}
	review, err := s.review(adminID, rating, comment)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	patch := model.PropertyPatch{AdminReview: review, UpdatedAt: s.now().UTC()}
	if err := s.properties.Patch(ctx, p.ID, patch); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFound("Property not found")
		}
		return nil, err
	}
	return review, nil
}

func (s *AdminService) review(adminID string, rating int, comment string) (*model.AdminReview, error) {
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, invalid("Rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len([]rune(comment)) > model.MaxReviewComment {
		return nil, invalid("Comment cannot exceed 500 characters")
	}
	review := &model.AdminReview{Rating: rating, Comment: comment, ReviewedAt: s.now().UTC()}
	if id, err := parseID(adminID, ""); err == nil {
		review.ReviewedBy = id
	}
	return review, nil
}

func (s *AdminService) DeleteProperty(ctx context.Context, propertyID string) error {
	p, err := s.find(ctx, propertyID)
	if err != nil {
		return err
	}
	if err := s.properties.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return notFound("Property not found")
		}
		return err
	}
	return syncHostFlag(ctx, s.properties, s.users, p.CreatedBy)
}

func (s *AdminService) TopRated(ctx context.Context) ([]model.PropertyWithOwner, error) {
	filter := model.PropertyFilter{Status: model.StatusApproved, RatedOnly: true}
	props, err := s.properties.GetFiltered(ctx, filter, model.SortTopRated, model.Page{Number: 1, Limit: topRatedLimit})
	if err != nil {
		return nil, err
	}
	return populateOwners(ctx, s.users, props)
}

// HealthReport opens the PDF linked from the property's healthReportPDF field.
func (s *AdminService) HealthReport(ctx context.Context, propertyID string) (io.ReadCloser, error) {
	id, err := parseID(propertyID, "Invalid property ID")
	if err != nil {
		return nil, err
	}
	p, err := s.properties.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, notFound("Health report not available")
	}
	if err != nil {
		return nil, err
	}
	if p.HealthReportPDF == "" {
		return nil, notFound("Health report not available")
	}
	return s.fetcher.Fetch(ctx, p.HealthReportPDF)
}

func (s *AdminService) find(ctx context.Context, hex string) (*model.Property, error) {
	id, err := parseID(hex, "Invalid property ID")
	if err != nil {
		return nil, err
	}
	p, err := s.properties.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, notFound("Property not found")
	}
	return p, err
}
