package memory

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

func (s *UserStore) Create(_ context.Context, u *model.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, usr := range s.t {
		if usr.Email == u.Email {
			return model.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	s.t[u.ID] = &cp
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	usr, ok := s.t[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *usr
	return &cp, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, usr := range s.t {
		if usr.Email == email {
			cp := *usr
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *UserStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(map[primitive.ObjectID]*model.User, len(ids))
	for _, id := range ids {
		if usr, ok := s.t[id]; ok {
			cp := *usr
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *UserStore) List(_ context.Context, f model.UserFilter) ([]model.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := make([]model.User, 0, len(s.t))
	for _, usr := range s.t {
		if f.HostsOnly && !usr.IsHost {
			continue
		}
		list = append(list, *usr)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// Update stores the profile fields of u, keeping email, password and host flag.
func (s *UserStore) Update(_ context.Context, u *model.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	usr, ok := s.t[u.ID]
	if !ok {
		return model.ErrNotFound
	}
	cp := *u
	cp.Email = usr.Email
	cp.PasswordHash = usr.PasswordHash
	cp.IsHost = usr.IsHost
	cp.CreatedAt = usr.CreatedAt
	s.t[u.ID] = &cp
	return nil
}

func (s *UserStore) SetHost(_ context.Context, id primitive.ObjectID, isHost bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	usr, ok := s.t[id]
	if !ok {
		return model.ErrNotFound
	}
	usr.IsHost = isHost
	return nil
}

func (s *AdminStore) Create(_ context.Context, a *model.Admin) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, adm := range s.t {
		if adm.Email == a.Email || adm.Username == a.Username {
			return model.ErrDuplicate
		}
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	cp := *a
	s.t[a.ID] = &cp
	return nil
}

func (s *AdminStore) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, adm := range s.t {
		if adm.Email == email {
			cp := *adm
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *AdminStore) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, adm := range s.t {
		if adm.Email == email || adm.Username == username {
			return true, nil
		}
	}
	return false, nil
}
