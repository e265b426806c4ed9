package gateway

import (
	"bytes"
	"context"
	"io"

	"github.com/avast/retry-go/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Cloudinary uploads media to a Cloudinary account.
type Cloudinary struct {
	cld  *cloudinary.Cloudinary
	lggr *zap.SugaredLogger
}

func NewCloudinary(cloudName, apiKey, apiSecret string, lggr *zap.SugaredLogger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "cloudinary: init")
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, lggr: lggr.Named("cloudinary")}, nil
}

// Upload stores r under folder and returns the secure URL of the asset.
// Cloudinary assigns the public ID; filename is only used for logging.
func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, filename, folder string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "cloudinary: reading upload")
	}
	params := uploadParams(folder)

	c.lggr.Debugw("uploading asset", "file", filename, "folder", folder, "size", len(data))
	return retry.DoWithData(func() (string, error) {
		resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), params)
		if err != nil {
			return "", err
		}
		if resp.Error.Message != "" {
			return "", retry.Unrecoverable(errors.Errorf("cloudinary: %s", resp.Error.Message))
		}
		return resp.SecureURL, nil
	}, retryOpts(ctx, c.lggr, "upload", defaultAttempts, defaultDelay)...)
}

// uploadParams restricts uploads to image assets.
func uploadParams(folder string) uploader.UploadParams {
	return uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	}
}
