package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const defaultFetchConcurrency = 4

// Fetcher downloads batches of snapshot files with bounded concurrency so a
// large bucket prefix does not open unlimited connections.
type Fetcher struct {
	store       ObjectStorage
	sem         *semaphore.Weighted
	concurrency int64
}

// NewFetcher builds a Fetcher. Concurrency below 1 falls back to the
// default.
func NewFetcher(store ObjectStorage, concurrency int64) *Fetcher {
	if concurrency < 1 {
		concurrency = defaultFetchConcurrency
	}
	return &Fetcher{
		store:       store,
		sem:         semaphore.NewWeighted(concurrency),
		concurrency: concurrency,
	}
}

// FetchAll downloads every object under prefix into destDir, preserving the
// object key as the relative path. It returns the local paths of the files
// it downloaded. The first download error cancels the rest of the batch.
func (f *Fetcher) FetchAll(ctx context.Context, prefix, destDir string) ([]string, error) {
	objects, err := f.store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		paths    []string
		firstErr error
	)

	for _, obj := range objects {
		if err := f.sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(obj ObjectInfo) {
			defer wg.Done()
			defer f.sem.Release(1)

			dest := filepath.Join(destDir, filepath.FromSlash(obj.Key))
			if err := f.store.DownloadObject(ctx, obj.Key, dest); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("fetch %s: %w", obj.Key, err)
					cancel()
				}
				mu.Unlock()
				return
			}

			log.Debug().Str("key", obj.Key).Int64("size", obj.Size).Msg("object downloaded")
			mu.Lock()
			paths = append(paths, dest)
			mu.Unlock()
		}(obj)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return paths, nil
}
