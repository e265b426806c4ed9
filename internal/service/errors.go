package service

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind classifies a service error so transports can map it to a status code.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

// Error is returned for every failure the caller can act on. Its message is
// safe to show to clients. Any other error is an internal failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) error { return &Error{Kind: kind, Message: msg} }

func invalid(msg string) error      { return newError(KindInvalid, msg) }
func unauthorized(msg string) error { return newError(KindUnauthorized, msg) }
func forbidden(msg string) error    { return newError(KindForbidden, msg) }
func notFound(msg string) error     { return newError(KindNotFound, msg) }
func conflict(msg string) error     { return newError(KindConflict, msg) }
func unavailable(msg string) error  { return newError(KindUnavailable, msg) }

// KindOf returns the Kind of err, or 0 for internal errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

var (
	// ErrNoFace is returned by a FaceEncoder when the image holds no detectable face.
	ErrNoFace = errors.New("no face detected")
	// ErrInvalidImage is returned by a FaceEncoder when the image cannot be decoded.
	ErrInvalidImage = errors.New("invalid image")
	// ErrSignature is returned by a PaymentGateway for webhooks failing verification.
	ErrSignature = errors.New("webhook signature verification failed")
)

func parseID(hex, msg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, invalid(msg)
	}
	return id, nil
}
