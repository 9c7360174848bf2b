package dataset

import (
	"context"
	"fmt"
	"iter"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/paging"
)

// DefaultPageSize matches the remote server's page cap.
const DefaultPageSize = 1000

// Collector materializes whole collections from a page-limited backend.
// It offers no snapshot isolation against concurrent writers.
type Collector struct {
	lister   PageLister
	pageSize int
}

// NewCollector creates a Collector. A non-positive pageSize uses DefaultPageSize.
func NewCollector(lister PageLister, pageSize int) *Collector {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Collector{lister: lister, pageSize: pageSize}
}

// Pages lazily yields the pages of version, or of every version when version is nil.
func (c *Collector) Pages(ctx context.Context, version *string) iter.Seq2[[]project.Project, error] {
	fetch := func(ctx context.Context, pageIndex, pageSize int) ([]project.Project, bool, error) {
		return c.lister.ListPage(ctx, version, pageIndex, pageSize)
	}
	return paging.Pages(ctx, fetch, c.pageSize, 0)
}

// Collect returns every record of version, or of every version when version
// is nil. The first failed fetch fails the whole collection.
func (c *Collector) Collect(ctx context.Context, version *string) ([]project.Project, error) {
	all := []project.Project{}
	for page, err := range c.Pages(ctx, version) {
		if err != nil {
			return nil, fmt.Errorf("collecting records: %w", err)
		}
		all = append(all, page...)
	}
	return all, nil
}
