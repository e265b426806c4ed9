// Package memory is a process-local implementation of every store. It backs
// the memory storage driver and the HTTP tests.
package memory

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

type (
	DB struct {
		Users      *UserStore
		Admins     *AdminStore
		Properties *PropertyStore
		Payments   *PaymentStore
		Reports    *ReportStore
	}

	UserStore struct {
		t     map[primitive.ObjectID]*model.User
		mutex sync.RWMutex
	}

	AdminStore struct {
		t     map[primitive.ObjectID]*model.Admin
		mutex sync.RWMutex
	}

	PropertyStore struct {
		t     map[primitive.ObjectID]*model.Property
		mutex sync.RWMutex
	}

	PaymentStore struct {
		t     map[primitive.ObjectID]*model.Payment
		mutex sync.RWMutex
	}

	ReportStore struct {
		t     map[string]*report
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		Users:      &UserStore{t: make(map[primitive.ObjectID]*model.User)},
		Admins:     &AdminStore{t: make(map[primitive.ObjectID]*model.Admin)},
		Properties: &PropertyStore{t: make(map[primitive.ObjectID]*model.Property)},
		Payments:   &PaymentStore{t: make(map[primitive.ObjectID]*model.Payment)},
		Reports:    &ReportStore{t: make(map[string]*report)},
	}
}

func paginate[T any](list []T, page model.Page) []T {
	if page.Limit <= 0 {
		return list
	}
	start := page.Skip()
	if start >= len(list) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
