package service

import (
	"context"
	"errors"
	"io"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

// ReportService stores and serves the building health report of a property.
type ReportService struct {
	reports    ReportStore
	properties PropertyStore
}

func NewReportService(reports ReportStore, properties PropertyStore) *ReportService {
	return &ReportService{reports: reports, properties: properties}
}

func (s *ReportService) Upload(ctx context.Context, callerID, propertyID string, r io.Reader) (string, error) {
	id, err := parseID(propertyID, "Invalid property ID.")
	if err != nil {
		return "", err
	}
	p, err := s.properties.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return "", notFound("Property not found.")
	}
	if err != nil {
		return "", err
	}
	if p.CreatedBy.Hex() != callerID {
		return "", forbidden("You are not authorized to upload a report for this property.")
	}
	return s.reports.Upload(ctx, propertyID, r)
}

func (s *ReportService) Open(ctx context.Context, propertyID string) (io.ReadCloser, error) {
	if _, err := parseID(propertyID, "Invalid property ID."); err != nil {
		return nil, err
	}
	rc, err := s.reports.Open(ctx, propertyID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, notFound("Report not found")
	}
	return rc, err
}
