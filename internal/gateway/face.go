package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

const descriptorPath = "/descriptor"

// FaceClient asks the face descriptor service for the descriptor of the single
// face found in an image.
//
// The service accepts a multipart POST with an "image" part and answers
// 200 {"descriptor":[...]}, 422 when no face is found and 400 when the image
// cannot be decoded.
type FaceClient struct {
	baseURL string
	http    *http.Client
	lggr    *zap.SugaredLogger
}

func NewFaceClient(baseURL string, lggr *zap.SugaredLogger) *FaceClient {
	return &FaceClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: httpTimeout},
		lggr:    lggr.Named("face-client"),
	}
}

type descriptorResponse struct {
	Descriptor []float64 `json:"descriptor"`
}

func (c *FaceClient) Descriptor(ctx context.Context, image []byte, filename string) ([]float64, error) {
	body, contentType, err := multipartImage(image, filename)
	if err != nil {
		return nil, err
	}

	return retry.DoWithData(func() ([]float64, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+descriptorPath, bytes.NewReader(body))
		if err != nil {
			return nil, retry.Unrecoverable(err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
		case http.StatusUnprocessableEntity:
			return nil, retry.Unrecoverable(service.ErrNoFace)
		case http.StatusBadRequest, http.StatusUnsupportedMediaType:
			return nil, retry.Unrecoverable(service.ErrInvalidImage)
		default:
			return nil, &StatusError{Service: "face service", Code: resp.StatusCode}
		}

		var out descriptorResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, retry.Unrecoverable(errors.Wrap(err, "face service: decoding response"))
		}
		if len(out.Descriptor) == 0 {
			return nil, retry.Unrecoverable(service.ErrNoFace)
		}
		return out.Descriptor, nil
	}, retryOpts(ctx, c.lggr, "descriptor", defaultAttempts, defaultDelay)...)
}

func multipartImage(image []byte, filename string) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, "", errors.Wrap(err, "face service: building request")
	}
	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return nil, "", errors.Wrap(err, "face service: building request")
	}
	if err := mw.Close(); err != nil {
		return nil, "", errors.Wrap(err, "face service: building request")
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
