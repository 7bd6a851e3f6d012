/*
Copyright © 2025 Nissar Chababy

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/getlantern/mtime"
	"golang.org/x/sync/errgroup"
)

// Parallel mirrors Sequential but distributes the per-line Ruler lookup
// across workers workers: a single producer goroutine scans src and
// feeds a job channel, `workers` goroutines drain it and report
// survivors on a results channel, and a collector goroutine writes each
// survivor to sinks as it arrives. Output order follows whichever
// worker finishes a line first, not the order lines were read — callers
// that need deterministic ordering must use Sequential instead.
// golang.org/x/sync/errgroup supplies the group-with-context
// coordination, propagating the first error and cancelling the rest.
func Parallel(ctx context.Context, src io.Reader, ruler whitelistRuler, normalizeFn Normalizer, sinks Sinks, workers int, logger *slog.Logger) (Stats, error) {
	logger = logOrDefault(logger)
	start := mtime.Now()

	if workers < 1 {
		workers = 1
	}

	group, gctx := errgroup.WithContext(ctx)

	jobs := make(chan string, workers*4)
	results := make(chan string, workers*4)

	var stats Stats

	group.Go(func() error {
		defer close(jobs)

		scanner := newScanner(src)
		read := 0

		for scanner.Scan() {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- scanner.Text():
				read++
			}
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrSourceNotReadable, err)
		}

		stats.Read = read

		return nil
	})

	var workersDone sync.WaitGroup
	workersDone.Add(workers)

	for w := 0; w < workers; w++ {
		group.Go(func() error {
			defer workersDone.Done()

			for line := range jobs {
				normalized := line
				if normalizeFn != nil {
					normalized = normalizeFn(line)
				}

				if ruler.IsSubjectWhitelisted(normalized) {
					continue
				}

				select {
				case <-gctx.Done():
					return gctx.Err()
				case results <- line:
				}
			}

			return nil
		})
	}

	go func() {
		workersDone.Wait()
		close(results)
	}()

	survived := 0

	group.Go(func() error {
		for line := range results {
			if err := sinks.write(line); err != nil {
				return err
			}

			survived++
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return stats, err
	}

	stats.Survived = survived
	stats.Whitelist = stats.Read - stats.Survived

	logger.Debug("parallel pipeline finished",
		slog.Int("workers", workers),
		slog.Int("read", stats.Read),
		slog.Int("survived", stats.Survived),
		slog.Int("whitelisted", stats.Whitelist),
		slog.Duration("elapsed", mtime.Now().Sub(start)),
	)

	return stats, nil
}
