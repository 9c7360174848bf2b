package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
)

// Service handles manual record entry.
type Service struct {
	backend    Backend
	activities ActivityRepository
	versions   VersionInvalidator
	logger     *slog.Logger
}

// NewService creates a new project record service. activities and versions may be nil.
func NewService(backend Backend, activities ActivityRepository, versions VersionInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		backend:    backend,
		activities: activities,
		versions:   versions,
		logger:     logger,
	}
}

// ListRequest selects one page of records.
type ListRequest struct {
	Version  string
	All      bool
	Page     int
	PageSize int
}

// Page is one page of records.
type Page struct {
	Records []Project `json:"records"`
	Page    int       `json:"page"`
	HasMore bool      `json:"has_more"`
}

// Create validates and stores a manually entered record.
func (s *Service) Create(ctx context.Context, rec Project) (*Project, error) {
	if err := Validate(&rec); err != nil {
		return nil, err
	}
	rec.ID = ""

	created, err := s.backend.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	s.afterWrite(ctx, activity.TypeRecordCreated, created.Version, fmt.Sprintf("created record %s", created.ID))
	return &created, nil
}

// Update replaces every field of the record with the given id.
func (s *Service) Update(ctx context.Context, id string, rec Project) (*Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	if err := Validate(&rec); err != nil {
		return nil, err
	}

	updated, err := s.backend.Update(ctx, id, rec)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating record: %w", err)
	}

	s.afterWrite(ctx, activity.TypeRecordUpdated, updated.Version, fmt.Sprintf("updated record %s", updated.ID))
	return &updated, nil
}

// Delete removes a record. Deleting an absent id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	s.afterWrite(ctx, activity.TypeRecordDeleted, "", fmt.Sprintf("deleted record %s", id))
	return nil
}

// List returns one page of records, optionally restricted to a version.
func (s *Service) List(ctx context.Context, req ListRequest) (*Page, error) {
	if req.Page < 0 || req.PageSize <= 0 {
		return nil, ErrInvalidInput
	}

	var filter *string
	if !req.All {
		version := EffectiveVersion(req.Version)
		filter = &version
	}

	records, hasMore, err := s.backend.ListPage(ctx, filter, req.Page, req.PageSize)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return &Page{Records: records, Page: req.Page, HasMore: hasMore}, nil
}

func (s *Service) afterWrite(ctx context.Context, typ activity.ActivityType, version, summary string) {
	if s.versions != nil {
		if err := s.versions.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate version cache", "error", err)
		}
	}
	if s.activities != nil {
		_ = s.activities.Log(ctx, &activity.ActivityEntry{
			ActivityType: typ,
			Version:      version,
			Summary:      summary,
		})
	}
}
