package service

import (
	"bytes"
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
)

const faceFolder = "faces"

type FaceMatch struct {
	Match    bool    `json:"match"`
	Distance float64 `json:"distance"`
}

// FaceService checks that uploaded images contain a face and compares two
// faces by the Euclidean distance of their descriptors.
type FaceService struct {
	encoder   FaceEncoder
	uploader  MediaUploader
	threshold float64
	lggr      *zap.SugaredLogger
}

func NewFaceService(encoder FaceEncoder, uploader MediaUploader, threshold float64, lggr *zap.SugaredLogger) *FaceService {
	return &FaceService{encoder: encoder, uploader: uploader, threshold: threshold, lggr: lggr.Named("face")}
}

// Upload stores a face photo after making sure a face can be found in it.
func (s *FaceService) Upload(ctx context.Context, image []byte, filename string) (string, error) {
	if s.encoder == nil || s.uploader == nil {
		return "", unavailable("Face verification is not configured.")
	}
	if _, err := s.encoder.Descriptor(ctx, image, filename); err != nil {
		switch {
		case errors.Is(err, ErrInvalidImage):
			return "", invalid("Invalid image format.")
		case errors.Is(err, ErrNoFace):
			return "", invalid("No face detected in the image. Please upload a clear face photo.")
		}
		return "", err
	}
	s.lggr.Debugw("face detected", "file", filename, "size", len(image))

	url, err := s.uploader.Upload(ctx, bytes.NewReader(image), filename, faceFolder)
	if err != nil {
		return "", err
	}
	return url, nil
}

// Verify compares the faces in two images. ErrNoFace is returned (wrapped in
// an invalid-kind error) when either image has no detectable face.
func (s *FaceService) Verify(ctx context.Context, image1, image2 []byte) (*FaceMatch, error) {
	if s.encoder == nil {
		return nil, unavailable("Face verification is not configured.")
	}
	d1, err := s.encoder.Descriptor(ctx, image1, "image1")
	if err != nil {
		return nil, s.verifyErr(err)
	}
	d2, err := s.encoder.Descriptor(ctx, image2, "image2")
	if err != nil {
		return nil, s.verifyErr(err)
	}

	dist, err := EuclideanDistance(d1, d2)
	if err != nil {
		return nil, err
	}
	return &FaceMatch{
		Match:    dist < s.threshold,
		Distance: math.Round(dist*10000) / 10000,
	}, nil
}

func (s *FaceService) verifyErr(err error) error {
	switch {
	case errors.Is(err, ErrInvalidImage):
		return invalid("Invalid image format.")
	case errors.Is(err, ErrNoFace):
		return &NoFaceError{}
	}
	return err
}

// NoFaceError reports a verification attempt where a face was missing.
type NoFaceError struct{}

func (*NoFaceError) Error() string { return "Face not detected in one or both images." }

func (*NoFaceError) Is(target error) bool { return target == ErrNoFace }

// EuclideanDistance of two descriptors of equal length.
func EuclideanDistance(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, errors.New("descriptor length mismatch")
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
