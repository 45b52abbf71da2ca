package feed

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Preload fetches up to pages pages in both directions concurrently. It stops
// early in a direction once that end is reached and returns the first error.
func (s *Source) Preload(ctx context.Context, pages int) error {
	if pages <= 0 {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for range pages {
			if !s.PageInfo().HasPrevPage {
				return nil
			}
			if err := s.FetchPrev(gCtx); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for range pages {
			if !s.PageInfo().HasNextPage {
				return nil
			}
			if err := s.FetchNext(gCtx); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}
