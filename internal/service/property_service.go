package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

const (
	defaultPageLimit = 10
	topRatedLimit    = 3
)

// ListQuery mirrors the query string accepted by the property listings.
type ListQuery struct {
	Page     int
	Limit    int
	MinCost  *float64
	MaxCost  *float64
	Members  *int
	Sort     string // "asc" or "desc" by price per night
	Status   string
	Approved bool // restrict to approved listings regardless of the other fields
}

type ListResult struct {
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	TotalPages int64                     `json:"totalPages"`
	Properties []model.PropertyWithOwner `json:"properties"`
}

type PropertyService struct {
	properties PropertyStore
	users      UserStore
	now        func() time.Time
}

func NewPropertyService(properties PropertyStore, users UserStore) *PropertyService {
	return &PropertyService{properties: properties, users: users, now: time.Now}
}

func (s *PropertyService) Register(ctx context.Context, ownerID string, p model.Property) (*model.Property, error) {
	owner, err := parseID(ownerID, "Invalid user ID")
	if err != nil {
		return nil, err
	}
	trimProperty(&p)
	if err := validateProperty(&p); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p.ID = primitive.NilObjectID
	p.CreatedBy = owner
	p.Status = model.StatusPending
	p.AdminReview = nil
	p.IsBooked = false
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.properties.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List serves both the general and the approved-only listing endpoints.
func (s *PropertyService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	var filter model.PropertyFilter
	if q.Approved {
		filter.Status = model.StatusApproved
	} else if q.MinCost != nil || q.MaxCost != nil || q.Members != nil {
		// searching by cost or size only makes sense over bookable shelters
		filter.Status = model.StatusApproved
		filter.AvailableOnly = true
	}
	if q.MinCost != nil || q.MaxCost != nil || q.Members != nil {
		filter.MinPrice = q.MinCost
		filter.MaxPrice = q.MaxCost
		filter.MinCapacity = q.Members
	}
	if !q.Approved && q.Status != "" {
		filter.Status = model.PropertyStatus(q.Status)
	}

	sort := model.SortPriceAsc
	if q.Sort == "desc" {
		sort = model.SortPriceDesc
	}
	page := model.Page{Number: q.Page, Limit: q.Limit}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Limit < 1 {
		page.Limit = defaultPageLimit
	}

	total, err := s.properties.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	props, err := s.properties.GetFiltered(ctx, filter, sort, page)
	if err != nil {
		return nil, err
	}

	var views []model.PropertyWithOwner
	if q.Approved {
		views = withoutOwners(props)
	} else {
		views, err = s.withOwners(ctx, props)
		if err != nil {
			return nil, err
		}
	}
	return &ListResult{
		Total:      total,
		Page:       page.Number,
		TotalPages: page.TotalPages(total),
		Properties: views,
	}, nil
}

// Mine returns the caller's own listings, newest first.
func (s *PropertyService) Mine(ctx context.Context, ownerID string) ([]model.Property, error) {
	owner, err := parseID(ownerID, "Unauthorized: User info missing")
	if err != nil {
		return nil, err
	}
	props, err := s.properties.GetFiltered(ctx, model.PropertyFilter{CreatedBy: &owner}, model.SortNewest, model.Page{})
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = []model.Property{}
	}
	return props, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (*model.PropertyWithOwner, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withOwners(ctx, []model.Property{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update applies the owner's edits. An approved listing is sent back to
// moderation, which may also revoke the owner's host flag. Only the edited
// fields are written.
func (s *PropertyService) Update(ctx context.Context, callerID, id string, pu model.PropertyUpdate) (*model.Property, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CreatedBy.Hex() != callerID {
		return nil, forbidden("You are not authorized to update this property.")
	}

	trimUpdate(&pu)
	pu.Apply(p)
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	patch := model.PropertyPatch{PropertyUpdate: pu, UpdatedAt: s.now().UTC()}
	wasApproved := p.Status == model.StatusApproved
	if wasApproved {
		pending := model.StatusPending
		patch.Status = &pending
	}
	if err := s.properties.Patch(ctx, p.ID, patch); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFound("Property not found.")
		}
		return nil, err
	}
	patch.Apply(p)
	if wasApproved {
		if err := syncHostFlag(ctx, s.properties, s.users, p.CreatedBy); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// TopRated returns the best reviewed approved listings.
func (s *PropertyService) TopRated(ctx context.Context) ([]model.PropertyWithOwner, error) {
	filter := model.PropertyFilter{Status: model.StatusApproved, RatedOnly: true}
	props, err := s.properties.GetFiltered(ctx, filter, model.SortTopRated, model.Page{Number: 1, Limit: topRatedLimit})
	if err != nil {
		return nil, err
	}
	return s.withOwners(ctx, props)
}

func (s *PropertyService) find(ctx context.Context, hex string) (*model.Property, error) {
	id, err := parseID(hex, "Invalid property ID.")
	if err != nil {
		return nil, err
	}
	p, err := s.properties.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, notFound("Property not found.")
	}
	return p, err
}

func (s *PropertyService) withOwners(ctx context.Context, props []model.Property) ([]model.PropertyWithOwner, error) {
	return populateOwners(ctx, s.users, props)
}

func populateOwners(ctx context.Context, users UserStore, props []model.Property) ([]model.PropertyWithOwner, error) {
	ids := make([]primitive.ObjectID, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.CreatedBy)
	}
	owners, err := users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]model.PropertyWithOwner, 0, len(props))
	for _, p := range props {
		views = append(views, model.NewPropertyWithOwner(p, owners[p.CreatedBy]))
	}
	return views, nil
}

func withoutOwners(props []model.Property) []model.PropertyWithOwner {
	views := make([]model.PropertyWithOwner, 0, len(props))
	for _, p := range props {
		views = append(views, model.NewPropertyWithOwner(p, nil))
	}
	return views
}

// syncHostFlag sets the owner's host flag from their approved listing count.
func syncHostFlag(ctx context.Context, properties PropertyStore, users UserStore, owner primitive.ObjectID) error {
	approved, err := properties.Count(ctx, model.PropertyFilter{Status: model.StatusApproved, CreatedBy: &owner})
	if err != nil {
		return err
	}
	err = users.SetHost(ctx, owner, approved > 0)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}

func trimProperty(p *model.Property) {
	p.Title = strings.TrimSpace(p.Title)
	p.Landmark = strings.TrimSpace(p.Landmark)
	p.Pincode = strings.TrimSpace(p.Pincode)
	p.FullAddress = strings.TrimSpace(p.FullAddress)
	p.Description = strings.TrimSpace(p.Description)
	p.Images.FrontWall = strings.TrimSpace(p.Images.FrontWall)
	p.Images.BackWall = strings.TrimSpace(p.Images.BackWall)
	p.Images.LeftWall = strings.TrimSpace(p.Images.LeftWall)
	p.Images.RightWall = strings.TrimSpace(p.Images.RightWall)
}

func trimUpdate(pu *model.PropertyUpdate) {
	for _, f := range []**string{&pu.Title, &pu.Landmark, &pu.Pincode, &pu.FullAddress, &pu.Description, &pu.PropertyImage} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
	if pu.Images != nil {
		im := *pu.Images
		im.FrontWall = strings.TrimSpace(im.FrontWall)
		im.BackWall = strings.TrimSpace(im.BackWall)
		im.LeftWall = strings.TrimSpace(im.LeftWall)
		im.RightWall = strings.TrimSpace(im.RightWall)
		pu.Images = &im
	}
}

func validateProperty(p *model.Property) error {
	if p.Title == "" || p.Landmark == "" || p.Pincode == "" || p.FullAddress == "" ||
		p.PricePerNight == 0 || p.Description == "" || p.Capacity == 0 || !p.Images.Complete() {
		return invalid("All required fields must be filled.")
	}
	if p.PricePerNight > model.MaxPricePerNight {
		return invalid("Price per night cannot exceed ₹5000.")
	}
	if p.PricePerNight < 0 {
		return invalid("Price per night cannot be negative.")
	}
	if len([]rune(p.Description)) > model.MaxDescriptionLen {
		return invalid("Description cannot exceed 500 characters.")
	}
	if p.Capacity < 1 {
		return invalid("Capacity must be at least 1.")
	}
	return nil
}
