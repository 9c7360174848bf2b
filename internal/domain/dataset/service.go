package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/normalize"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
)

// Mode selects how imported rows meet stored records.
type Mode string

const (
	// ModeSmartUpdate reconciles rows against the version by natural key.
	ModeSmartUpdate Mode = "smart_update"
	// ModeReplaceAppend inserts every row. Rerunning it duplicates data.
	ModeReplaceAppend Mode = "replace_append"
)

// ParseMode accepts a mode name; blank means ModeSmartUpdate.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSmartUpdate:
		return ModeSmartUpdate, nil
	case ModeReplaceAppend:
		return ModeReplaceAppend, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// RequiresConfirmation reports whether an import in mode against a backend
// of kind must be confirmed by the user first.
func RequiresConfirmation(mode Mode, kind repository.Kind) bool {
	return mode == ModeReplaceAppend || kind == repository.KindRemote
}

// ImportRequest describes one spreadsheet import.
type ImportRequest struct {
	Version   string
	Mode      Mode
	Rows      []normalize.RawRow
	Confirmed bool
	// Source names the imported file in the activity log.
	Source string
}

// Summary is the outcome of one import.
type Summary struct {
	Version   string   `json:"version"`
	Mode      Mode     `json:"mode"`
	Backend   string   `json:"backend"`
	Processed int      `json:"processed"`
	Inserted  int      `json:"inserted"`
	Updated   int      `json:"updated"`
	Missing   []string `json:"missing,omitempty"`
	Orphaned  []string `json:"orphaned,omitempty"`
}

// Message renders the summary as one line for the user.
func (s Summary) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processed %d rows into version %q: %d inserted, %d updated", s.Processed, s.Version, s.Inserted, s.Updated)
	if len(s.Missing) > 0 {
		fmt.Fprintf(&b, ", %d no longer found", len(s.Missing))
	}
	if len(s.Orphaned) > 0 {
		fmt.Fprintf(&b, ", %d duplicate stored records left untouched", len(s.Orphaned))
	}
	return b.String()
}

// Options tunes paging and batching. Zero values select the defaults.
type Options struct {
	PageSize  int
	BatchSize int
}

// Service runs imports, clears and exports against one backend.
type Service struct {
	store      Store
	collector  *Collector
	writer     *Writer
	versions   *VersionRegistry
	activities ActivityLogger
	logger     *slog.Logger
}

// NewService creates a dataset service. versions and activities may be nil.
func NewService(store Store, versions *VersionRegistry, activities ActivityLogger, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if versions == nil {
		versions = NewVersionRegistry(store, nil, logger)
	}
	return &Service{
		store:      store,
		collector:  NewCollector(store, opts.PageSize),
		writer:     NewWriter(store, opts.BatchSize, logger),
		versions:   versions,
		activities: activities,
		logger:     logger,
	}
}

// Import normalizes req.Rows into req.Version and writes them. On failure
// the returned summary holds the counts written before the error.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*Summary, error) {
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	kind := s.store.Kind()
	if RequiresConfirmation(mode, kind) && !req.Confirmed {
		return nil, fmt.Errorf("%s import on %s backend: %w", mode, kind, ErrConfirmationRequired)
	}

	version := project.EffectiveVersion(req.Version)
	summary := &Summary{
		Version:   version,
		Mode:      mode,
		Backend:   string(kind),
		Processed: len(req.Rows),
	}
	candidates := normalize.NormalizeAll(req.Rows, version)

	var plan Plan
	switch mode {
	case ModeReplaceAppend:
		plan = AppendAll(candidates)
	default:
		existing, err := s.collector.Collect(ctx, &version)
		if err != nil {
			return summary, fmt.Errorf("importing into %q: %w", version, err)
		}
		plan = Reconcile(existing, candidates)
		if len(plan.Orphaned) > 0 {
			s.logger.Warn("stored records share a natural key; older duplicates left untouched",
				"version", version, "orphaned", len(plan.Orphaned))
		}
	}
	summary.Orphaned = plan.Orphaned

	s.logger.Debug("import plan ready", "version", version, "mode", mode,
		"inserts", plan.Inserts, "updates", plan.Updates)

	res, err := s.writer.Apply(ctx, plan.Writes)
	summary.Inserted = res.Inserted
	summary.Updated = res.Updated
	summary.Missing = res.Missing
	s.invalidateVersions(ctx)
	if err != nil {
		s.logger.Error("import aborted", "version", version, "inserted", res.Inserted, "updated", res.Updated, "error", err)
		return summary, fmt.Errorf("importing into %q: %w", version, err)
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeImport,
		Version:      version,
		Summary:      summary.Message(),
		Inserted:     summary.Inserted,
		Updated:      summary.Updated,
		Details:      importDetails(req.Source, mode),
	})
	s.logger.Info("import finished", "version", version, "mode", mode,
		"processed", summary.Processed, "inserted", summary.Inserted, "updated", summary.Updated)
	return summary, nil
}

// ClearVersion removes every record of version. Remote backends refuse.
func (s *Service) ClearVersion(ctx context.Context, version string, confirmed bool) (int, error) {
	if !confirmed {
		return 0, fmt.Errorf("clearing version: %w", ErrConfirmationRequired)
	}
	version = project.EffectiveVersion(version)
	removed, err := s.store.ClearVersion(ctx, version)
	if err != nil {
		return 0, fmt.Errorf("clearing version %q: %w", version, err)
	}
	s.invalidateVersions(ctx)
	s.logActivity(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeVersionCleared,
		Version:      version,
		Summary:      fmt.Sprintf("Removed %d records from version %q", removed, version),
	})
	return removed, nil
}

// ClearAll removes every record. Remote backends refuse.
func (s *Service) ClearAll(ctx context.Context, confirmed bool) (int, error) {
	if !confirmed {
		return 0, fmt.Errorf("clearing store: %w", ErrConfirmationRequired)
	}
	removed, err := s.store.ClearAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clearing store: %w", err)
	}
	s.invalidateVersions(ctx)
	s.logActivity(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeStoreCleared,
		Summary:      fmt.Sprintf("Removed %d records", removed),
	})
	return removed, nil
}

// Export collects the records of version, or of every version when all is set.
func (s *Service) Export(ctx context.Context, version string, all bool) ([]project.Project, error) {
	var filter *string
	if !all {
		v := project.EffectiveVersion(version)
		filter = &v
	}
	return s.collector.Collect(ctx, filter)
}

// Versions lists the scenario versions present in the store.
func (s *Service) Versions(ctx context.Context) ([]string, error) {
	return s.versions.List(ctx)
}

// Kind reports the backend kind the service writes to.
func (s *Service) Kind() repository.Kind {
	return s.store.Kind()
}

func (s *Service) invalidateVersions(ctx context.Context) {
	if err := s.versions.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate version cache", "error", err)
	}
}

func (s *Service) logActivity(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activities == nil {
		return
	}
	entry.Backend = string(s.store.Kind())
	_ = s.activities.Log(ctx, entry)
}

func importDetails(source string, mode Mode) string {
	details := map[string]string{"mode": string(mode)}
	if source != "" {
		details["source"] = source
	}
	data, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return string(data)
}
