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

	"github.com/getlantern/mtime"
)

// Stats reports how many lines a pipeline run processed and how many
// survived (were not whitelisted).
type Stats struct {
	Read      int
	Survived  int
	Whitelist int
}

// Sequential reads src line by line, normalizes each with normalizeFn,
// checks it against ruler, and writes survivors to sinks — all on the
// calling goroutine.
func Sequential(ctx context.Context, src io.Reader, ruler whitelistRuler, normalizeFn Normalizer, sinks Sinks, logger *slog.Logger) (Stats, error) {
	logger = logOrDefault(logger)
	start := mtime.Now()
	scanner := newScanner(src)

	var stats Stats

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		line := scanner.Text()
		stats.Read++

		normalized := line
		if normalizeFn != nil {
			normalized = normalizeFn(line)
		}

		if ruler.IsSubjectWhitelisted(normalized) {
			stats.Whitelist++
			continue
		}

		if err := sinks.write(line); err != nil {
			return stats, err
		}

		stats.Survived++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrSourceNotReadable, err)
	}

	logger.Debug("sequential pipeline finished",
		slog.Int("read", stats.Read),
		slog.Int("survived", stats.Survived),
		slog.Int("whitelisted", stats.Whitelist),
		slog.Duration("elapsed", mtime.Now().Sub(start)),
	)

	return stats, nil
}
