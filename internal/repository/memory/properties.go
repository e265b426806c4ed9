package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

func cloneProperty(p *model.Property) *model.Property {
	cp := *p
	if p.AdminReview != nil {
		r := *p.AdminReview
		cp.AdminReview = &r
	}
	return &cp
}

func (s *PropertyStore) Create(_ context.Context, p *model.Property) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.t[p.ID] = cloneProperty(p)
	return nil
}

func (s *PropertyStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Property, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p, ok := s.t[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneProperty(p), nil
}

func (s *PropertyStore) GetFiltered(_ context.Context, f model.PropertyFilter, order model.PropertySort, page model.Page) ([]model.Property, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := s.match(f)
	sort.SliceStable(list, less(list, order))
	return paginate(list, page), nil
}

func (s *PropertyStore) Count(_ context.Context, f model.PropertyFilter) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return int64(len(s.match(f))), nil
}

func (s *PropertyStore) Patch(_ context.Context, id primitive.ObjectID, patch model.PropertyPatch) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.t[id]
	if !ok {
		return model.ErrNotFound
	}
	patch.Apply(p)
	return nil
}

func (s *PropertyStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.t[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.t, id)
	return nil
}

// match must be called with the read lock held.
func (s *PropertyStore) match(f model.PropertyFilter) []model.Property {
	list := make([]model.Property, 0, len(s.t))
	for _, p := range s.t {
		if f.Matches(p) {
			list = append(list, *cloneProperty(p))
		}
	}
	// ObjectIDs grow with creation time, which keeps ties stable
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID.Hex() < list[j].ID.Hex() })
	return list
}

func less(list []model.Property, order model.PropertySort) func(i, j int) bool {
	switch order {
	case model.SortPriceDesc:
		return func(i, j int) bool { return list[i].PricePerNight > list[j].PricePerNight }
	case model.SortNewest:
		return func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) }
	case model.SortTopRated:
		return func(i, j int) bool {
			ri, rj := rating(&list[i]), rating(&list[j])
			if ri != rj {
				return ri > rj
			}
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
	default:
		return func(i, j int) bool { return list[i].PricePerNight < list[j].PricePerNight }
	}
}

func rating(p *model.Property) int {
	if p.AdminReview == nil {
		return 0
	}
	return p.AdminReview.Rating
}

func (s *PaymentStore) Create(_ context.Context, p *model.Payment) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	s.t[p.ID] = &cp
	return nil
}

func (s *PaymentStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Payment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p, ok := s.t[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *PaymentStore) Update(_ context.Context, p *model.Payment) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.t[p.ID]; !ok {
		return model.ErrNotFound
	}
	cp := *p
	s.t[p.ID] = &cp
	return nil
}

func (s *PaymentStore) GetByUser(_ context.Context, user primitive.ObjectID, page model.Page) ([]model.Payment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := s.byUser(user)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, page), nil
}

func (s *PaymentStore) CountByUser(_ context.Context, user primitive.ObjectID) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return int64(len(s.byUser(user))), nil
}

func (s *PaymentStore) byUser(user primitive.ObjectID) []model.Payment {
	list := make([]model.Payment, 0)
	for _, p := range s.t {
		if p.User == user {
			list = append(list, *p)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID.Hex() < list[j].ID.Hex() })
	return list
}

func (s *PaymentStore) SetStatusByIntent(_ context.Context, intentID string, status model.PaymentStatus, paidAt *time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, p := range s.t {
		if p.StripePaymentIntentID != intentID {
			continue
		}
		p.Status = status
		p.UpdatedAt = time.Now().UTC()
		if paidAt != nil {
			at := *paidAt
			p.PaidAt = &at
		}
		return nil
	}
	return model.ErrNotFound
}

type report struct {
	id   primitive.ObjectID
	data []byte
}

// Upload replaces the property's report.
func (s *ReportStore) Upload(_ context.Context, propertyID string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	rep := &report{id: primitive.NewObjectID(), data: data}

	s.mutex.Lock()
	s.t[model.ReportFilename(propertyID)] = rep
	s.mutex.Unlock()
	return rep.id.Hex(), nil
}

func (s *ReportStore) Open(_ context.Context, propertyID string) (io.ReadCloser, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rep, ok := s.t[model.ReportFilename(propertyID)]
	if !ok {
		return nil, model.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(rep.data)), nil
}
