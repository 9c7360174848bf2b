// Package paging walks page-limited listings.
package paging

import (
	"context"
	"iter"
)

// PageFunc fetches page pageIndex of pageSize items. hasMore reports whether
// the backend believes another page may follow.
type PageFunc[T any] func(ctx context.Context, pageIndex, pageSize int) (items []T, hasMore bool, err error)

// Pages yields pages from fetch in order, starting at index 0.
//
// It stops after an empty page, after a page reported without hasMore, or
// after maxPages pages when maxPages > 0. A short page with hasMore set does
// not end the sequence, since the backend may cap pageSize.
// A fetch error is yielded once and ends the sequence.
func Pages[T any](ctx context.Context, fetch PageFunc[T], pageSize, maxPages int) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for pageIndex := 0; maxPages <= 0 || pageIndex < maxPages; pageIndex++ {
			items, hasMore, err := fetch(ctx, pageIndex, pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(items) > 0 && !yield(items, nil) {
				return
			}
			if len(items) == 0 || !hasMore {
				return
			}
		}
	}
}

// Collect concatenates every page. On the first error it returns no items.
func Collect[T any](ctx context.Context, fetch PageFunc[T], pageSize, maxPages int) ([]T, error) {
	var all []T
	for page, err := range Pages(ctx, fetch, pageSize, maxPages) {
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
	}
	return all, nil
}
