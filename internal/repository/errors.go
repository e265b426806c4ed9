package repository

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

// translate maps driver errors onto the model sentinels and wraps the rest.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return model.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return model.ErrDuplicate
	}
	return errors.Wrap(err, op)
}
