package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/google/uuid"
)

const (
	// DefaultCollectionKey is the kv_store key holding the project collection.
	DefaultCollectionKey = "sigades:projects"

	defaultBatchSize = 50
)

// LocalOptions configures a LocalBackend.
type LocalOptions struct {
	// Key is the kv_store key of the collection blob.
	Key string
	// Latency is slept before every call to mimic a remote round trip.
	Latency time.Duration
	// BatchSize bounds the records applied per BatchWrite round trip.
	BatchSize int
}

// LocalBackend keeps the whole project collection as one JSON blob in the
// kv_store table. Records are ordered by insertion.
//
// It assumes a single session; concurrent processes sharing the file race.
type LocalBackend struct {
	kv        *KVStore
	key       string
	latency   time.Duration
	batchSize int
	now       func() time.Time
}

// NewLocalBackend creates a LocalBackend on db.
func NewLocalBackend(db *DB, opts LocalOptions) *LocalBackend {
	if opts.Key == "" {
		opts.Key = DefaultCollectionKey
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &LocalBackend{
		kv:        NewKVStore(db),
		key:       opts.Key,
		latency:   opts.Latency,
		batchSize: opts.BatchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Kind reports the local backend kind.
func (b *LocalBackend) Kind() repository.Kind {
	return repository.KindLocal
}

// ListPage returns the records in [pageIndex*pageSize, pageIndex*pageSize+pageSize).
func (b *LocalBackend) ListPage(ctx context.Context, version *string, pageIndex, pageSize int) ([]project.Project, bool, error) {
	if pageIndex < 0 || pageSize <= 0 {
		return nil, false, repository.ErrInvalidInput
	}
	all, err := b.load(ctx)
	if err != nil {
		return nil, false, err
	}

	if version != nil {
		all = slices.DeleteFunc(all, func(p project.Project) bool { return p.Version != *version })
	}

	start := pageIndex * pageSize
	if start >= len(all) {
		return []project.Project{}, false, nil
	}
	end := min(start+pageSize, len(all))
	page := all[start:end]
	return page, len(page) == pageSize, nil
}

// ListVersions returns the sorted distinct non-blank version tags. It reads
// the whole blob, so no version scan cap applies.
func (b *LocalBackend) ListVersions(ctx context.Context) ([]string, error) {
	all, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	versions := []string{}
	for _, p := range all {
		if p.Version == "" {
			continue
		}
		if _, ok := seen[p.Version]; ok {
			continue
		}
		seen[p.Version] = struct{}{}
		versions = append(versions, p.Version)
	}
	slices.Sort(versions)
	return versions, nil
}

// Create stores rec under a new id.
func (b *LocalBackend) Create(ctx context.Context, rec project.Project) (project.Project, error) {
	all, err := b.load(ctx)
	if err != nil {
		return project.Project{}, err
	}
	created := b.stamp(rec, "")
	all = append(all, created)
	if err := b.save(ctx, all); err != nil {
		return project.Project{}, err
	}
	return created, nil
}

// Update replaces every field of record id except its creation time.
func (b *LocalBackend) Update(ctx context.Context, id string, rec project.Project) (project.Project, error) {
	all, err := b.load(ctx)
	if err != nil {
		return project.Project{}, err
	}
	idx := slices.IndexFunc(all, func(p project.Project) bool { return p.ID == id })
	if idx < 0 {
		return project.Project{}, fmt.Errorf("update %s: %w", id, repository.ErrNotFound)
	}
	all[idx] = b.replace(all[idx], rec)
	if err := b.save(ctx, all); err != nil {
		return project.Project{}, err
	}
	return all[idx], nil
}

// Delete removes record id if present.
func (b *LocalBackend) Delete(ctx context.Context, id string) error {
	all, err := b.load(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(all, func(p project.Project) bool { return p.ID == id })
	if len(kept) == len(all) {
		return nil
	}
	return b.save(ctx, kept)
}

// BatchWrite inserts records without an id and replaces records with one.
// A record whose id is unknown is inserted under that id.
func (b *LocalBackend) BatchWrite(ctx context.Context, recs []project.Project) ([]project.Project, error) {
	stored := make([]project.Project, 0, len(recs))
	for start := 0; start < len(recs); start += b.batchSize {
		end := min(start+b.batchSize, len(recs))

		all, err := b.load(ctx)
		if err != nil {
			return stored, err
		}
		index := make(map[string]int, len(all))
		for i, p := range all {
			index[p.ID] = i
		}

		chunk := make([]project.Project, 0, end-start)
		for _, rec := range recs[start:end] {
			if i, ok := index[rec.ID]; ok && rec.ID != "" {
				all[i] = b.replace(all[i], rec)
				chunk = append(chunk, all[i])
				continue
			}
			created := b.stamp(rec, rec.ID)
			index[created.ID] = len(all)
			all = append(all, created)
			chunk = append(chunk, created)
		}

		if err := b.save(ctx, all); err != nil {
			return stored, err
		}
		stored = append(stored, chunk...)
	}
	return stored, nil
}

// ClearVersion removes every record of version and returns how many were removed.
func (b *LocalBackend) ClearVersion(ctx context.Context, version string) (int, error) {
	all, err := b.load(ctx)
	if err != nil {
		return 0, err
	}
	before := len(all)
	kept := slices.DeleteFunc(all, func(p project.Project) bool { return p.Version == version })
	removed := before - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := b.save(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// ClearAll removes the whole collection and returns how many records it held.
func (b *LocalBackend) ClearAll(ctx context.Context) (int, error) {
	all, err := b.load(ctx)
	if err != nil {
		return 0, err
	}
	if err := b.kv.Delete(ctx, b.key); err != nil {
		return 0, err
	}
	return len(all), nil
}

func (b *LocalBackend) stamp(rec project.Project, id string) project.Project {
	if id == "" {
		id = uuid.New().String()
	}
	now := b.now()
	rec.ID = id
	rec.Version = project.EffectiveVersion(rec.Version)
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return rec
}

func (b *LocalBackend) replace(existing, rec project.Project) project.Project {
	existing.ReplaceFrom(rec)
	existing.Version = project.EffectiveVersion(existing.Version)
	existing.UpdatedAt = b.now()
	return existing
}

func (b *LocalBackend) load(ctx context.Context) ([]project.Project, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	raw, ok, err := b.kv.Get(ctx, b.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []project.Project{}, nil
	}
	var all []project.Project
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("failed to decode collection %q: %w", b.key, err)
	}
	return all, nil
}

func (b *LocalBackend) save(ctx context.Context, all []project.Project) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode collection %q: %w", b.key, err)
	}
	return b.kv.Put(ctx, b.key, raw)
}

func (b *LocalBackend) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(b.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
