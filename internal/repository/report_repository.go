package repository

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

const reportBucket = "reports"

// ReportRepository keeps health report PDFs in a GridFS bucket, one file
// per property named report_<propertyID>.pdf.
type ReportRepository struct {
	bucket *gridfs.Bucket
}

func NewReportRepository(db *mongo.Database) (*ReportRepository, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(reportBucket))
	if err != nil {
		return nil, errors.Wrap(err, "ReportRepository: gridfs bucket")
	}
	return &ReportRepository{bucket: bucket}, nil
}

// Upload stores the report and returns the new file ID. Older revisions of
// the same report are removed once the new one is written.
func (r *ReportRepository) Upload(ctx context.Context, propertyID string, src io.Reader) (string, error) {
	name := model.ReportFilename(propertyID)
	previous, err := r.fileIDs(ctx, name)
	if err != nil {
		return "", err
	}

	stream, err := r.bucket.OpenUploadStream(name)
	if err != nil {
		return "", errors.Wrap(err, "ReportRepository.Upload open")
	}
	if _, err := io.Copy(stream, src); err != nil {
		_ = stream.Abort()
		return "", errors.Wrap(err, "ReportRepository.Upload copy")
	}
	if err := stream.Close(); err != nil {
		return "", errors.Wrap(err, "ReportRepository.Upload close")
	}

	for _, id := range previous {
		if err := r.bucket.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return "", errors.Wrap(err, "ReportRepository.Upload prune")
		}
	}
	return stream.FileID.(primitive.ObjectID).Hex(), nil
}

// Open returns the latest revision of the property's report.
func (r *ReportRepository) Open(ctx context.Context, propertyID string) (io.ReadCloser, error) {
	stream, err := r.bucket.OpenDownloadStreamByName(model.ReportFilename(propertyID))
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "ReportRepository.Open")
	}
	return stream, nil
}

func (r *ReportRepository) fileIDs(ctx context.Context, name string) ([]interface{}, error) {
	cur, err := r.bucket.FindContext(ctx, map[string]string{"filename": name})
	if err != nil {
		return nil, errors.Wrap(err, "ReportRepository find")
	}
	var files []struct {
		ID interface{} `bson:"_id"`
	}
	if err := cur.All(ctx, &files); err != nil {
		return nil, errors.Wrap(err, "ReportRepository find decode")
	}
	ids := make([]interface{}, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids, nil
}
