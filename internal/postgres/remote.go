// Package postgres implements the remote storage backend on PostgreSQL.
//
// The backend expects an existing table:
//
//	project_records (
//	    id TEXT PRIMARY KEY, version TEXT,
//	    province, regency, sub_district, village TEXT,
//	    village_code, sub_district_code, work, sub_activity TEXT,
//	    allocation BIGINT, latitude, longitude, area DOUBLE PRECISION NULL,
//	    population, poverty, stunting BIGINT, tier SMALLINT NULL, notes TEXT,
//	    created_at, updated_at TIMESTAMPTZ DEFAULT now()
//	)
//
// Schema management is left to the service that owns the database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/paging"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	DefaultMaxPageSize      = 1000
	DefaultBatchSize        = 50
	DefaultVersionScanPages = 20
)

// Options tunes the remote backend. Zero values select the defaults.
type Options struct {
	// MaxPageSize is the server-side cap on rows per page.
	MaxPageSize int
	// BatchSize bounds the rows per BatchWrite statement.
	BatchSize int
	// VersionScanPages caps the pages scanned by ListVersions.
	VersionScanPages int
}

// RemoteBackend stores project records in the project_records table.
type RemoteBackend struct {
	db               *sql.DB
	maxPageSize      int
	batchSize        int
	versionScanPages int
}

// Open connects to PostgreSQL through the pgx stdlib driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open remote database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping remote database: %w: %w", repository.ErrTransient, err)
	}
	return db, nil
}

// NewRemoteBackend creates a RemoteBackend on db.
func NewRemoteBackend(db *sql.DB, opts Options) *RemoteBackend {
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = DefaultMaxPageSize
	}
	if opts.BatchSize <= 0 || opts.BatchSize > DefaultBatchSize {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.VersionScanPages <= 0 {
		opts.VersionScanPages = DefaultVersionScanPages
	}
	return &RemoteBackend{
		db:               db,
		maxPageSize:      opts.MaxPageSize,
		batchSize:        opts.BatchSize,
		versionScanPages: opts.VersionScanPages,
	}
}

// Kind reports the remote backend kind.
func (b *RemoteBackend) Kind() repository.Kind {
	return repository.KindRemote
}

// ListPage returns one page in creation order. pageSize is clamped to the
// server cap and hasMore is true when the page came back full.
func (b *RemoteBackend) ListPage(ctx context.Context, version *string, pageIndex, pageSize int) ([]project.Project, bool, error) {
	if pageIndex < 0 || pageSize <= 0 {
		return nil, false, repository.ErrInvalidInput
	}
	size := min(pageSize, b.maxPageSize)

	query := "SELECT " + selectColumns + " FROM project_records"
	args := []any{}
	if version != nil {
		v := project.EffectiveVersion(*version)
		if v == project.DefaultVersion {
			// Rows stored without a version read back as Default.
			query += " WHERE COALESCE(NULLIF(TRIM(version), ''), 'Default') = $1"
		} else {
			query += " WHERE version = $1"
		}
		args = append(args, v)
	}
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, int64(size), int64(pageIndex)*int64(size))

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list page %d: %w: %w", pageIndex, repository.ErrTransient, err)
	}
	defer rows.Close()

	recs := []project.Project{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, false, fmt.Errorf("list page %d: %w", pageIndex, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("list page %d: %w: %w", pageIndex, repository.ErrTransient, err)
	}
	return recs, len(recs) == size, nil
}

// ListVersions scans at most VersionScanPages pages of version tags and
// returns the distinct non-blank ones, sorted. Tags that only occur beyond
// the cap are not reported.
func (b *RemoteBackend) ListVersions(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for page, err := range paging.Pages(ctx, b.versionPage, b.maxPageSize, b.versionScanPages) {
		if err != nil {
			return nil, err
		}
		for _, v := range page {
			if strings.TrimSpace(v) != "" {
				seen[v] = struct{}{}
			}
		}
	}
	versions := make([]string, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions, nil
}

func (b *RemoteBackend) versionPage(ctx context.Context, pageIndex, pageSize int) ([]string, bool, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT version FROM project_records ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		int64(pageSize), int64(pageIndex)*int64(pageSize))
	if err != nil {
		return nil, false, fmt.Errorf("scan versions page %d: %w: %w", pageIndex, repository.ErrTransient, err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, false, fmt.Errorf("scan versions page %d: %w", pageIndex, err)
		}
		versions = append(versions, v.String)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("scan versions page %d: %w: %w", pageIndex, repository.ErrTransient, err)
	}
	return versions, len(versions) == pageSize, nil
}

// Create inserts rec under a new id.
func (b *RemoteBackend) Create(ctx context.Context, rec project.Project) (project.Project, error) {
	rec.ID = uuid.New().String()
	rec.Version = project.EffectiveVersion(rec.Version)

	query := "INSERT INTO project_records (" + insertColumns + ") VALUES (" + placeholders(1, len(writableColumns)) + ") RETURNING " + selectColumns
	created, err := scanRecord(b.db.QueryRowContext(ctx, query, writeArgs(rec)...))
	if err != nil {
		return project.Project{}, fmt.Errorf("create record: %w: %w", repository.ErrTransient, err)
	}
	return created, nil
}

// Update replaces every field of record id except its creation time.
func (b *RemoteBackend) Update(ctx context.Context, id string, rec project.Project) (project.Project, error) {
	rec.ID = id
	rec.Version = project.EffectiveVersion(rec.Version)

	sets := make([]string, 0, len(writableColumns))
	for i, col := range writableColumns[1:] {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}
	sets = append(sets, "updated_at = now()")
	query := "UPDATE project_records SET " + strings.Join(sets, ", ") + " WHERE id = $1 RETURNING " + selectColumns

	updated, err := scanRecord(b.db.QueryRowContext(ctx, query, writeArgs(rec)...))
	if errors.Is(err, sql.ErrNoRows) {
		return project.Project{}, fmt.Errorf("update %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return project.Project{}, fmt.Errorf("update %s: %w: %w", id, repository.ErrTransient, err)
	}
	return updated, nil
}

// Delete removes record id. Deleting an absent id succeeds.
func (b *RemoteBackend) Delete(ctx context.Context, id string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM project_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete %s: %w: %w", id, repository.ErrTransient, err)
	}
	return nil
}

// BatchWrite upserts recs in statements of at most BatchSize rows. Records
// without an id get a new one. Results are returned in input order. A failed
// chunk aborts the rest; earlier chunks stay written.
func (b *RemoteBackend) BatchWrite(ctx context.Context, recs []project.Project) ([]project.Project, error) {
	stored := make([]project.Project, 0, len(recs))
	for start := 0; start < len(recs); start += b.batchSize {
		end := min(start+b.batchSize, len(recs))
		chunk, err := b.upsertChunk(ctx, recs[start:end])
		if err != nil {
			return stored, fmt.Errorf("batch write rows %d-%d: %w", start, end-1, err)
		}
		stored = append(stored, chunk...)
	}
	return stored, nil
}

func (b *RemoteBackend) upsertChunk(ctx context.Context, recs []project.Project) ([]project.Project, error) {
	ids := make([]string, len(recs))
	values := make([]string, len(recs))
	args := make([]any, 0, len(recs)*len(writableColumns))
	for i, rec := range recs {
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		rec.Version = project.EffectiveVersion(rec.Version)
		ids[i] = rec.ID
		values[i] = "(" + placeholders(len(args)+1, len(writableColumns)) + ")"
		args = append(args, writeArgs(rec)...)
	}

	updates := make([]string, 0, len(writableColumns))
	for _, col := range writableColumns[1:] {
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	updates = append(updates, "updated_at = now()")

	query := "INSERT INTO project_records (" + insertColumns + ") VALUES " + strings.Join(values, ", ") +
		" ON CONFLICT (id) DO UPDATE SET " + strings.Join(updates, ", ") +
		" RETURNING " + selectColumns

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrTransient, err)
	}
	defer rows.Close()

	byID := make(map[string]project.Project, len(recs))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrTransient, err)
	}

	out := make([]project.Project, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ClearVersion is not allowed against the shared remote store.
func (b *RemoteBackend) ClearVersion(_ context.Context, version string) (int, error) {
	return 0, fmt.Errorf("clear version %q on remote backend: %w", version, repository.ErrPermissionDenied)
}

// ClearAll is not allowed against the shared remote store.
func (b *RemoteBackend) ClearAll(context.Context) (int, error) {
	return 0, fmt.Errorf("clear all on remote backend: %w", repository.ErrPermissionDenied)
}
