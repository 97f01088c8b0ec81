package store

import (
	"context"
	"errors"
	"sync"
)

// fanOut issues one concurrent point lookup per id and collects the
// hits. Lookups have no ordering guarantee or dependency between
// them. Not-found ids are skipped (best effort); the first hard error
// is returned alongside whatever resolved.
func fanOut(ctx context.Context, ids []string,
	fetch func(ctx context.Context, id string) (interface{}, error),
	collect func(id string, v interface{})) error {

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, id := range ids {
		if id == "" {
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			v, err := fetch(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if !errors.Is(err, ErrNotFound) && firstErr == nil {
					firstErr = err
				}
				return
			}
			collect(id, v)
		}(id)
	}

	wg.Wait()
	return firstErr
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
