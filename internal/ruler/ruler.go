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

// Package ruler implements the compiled, mutable, multi-strategy
// whitelist matching index (the "Ruler") and its rule-line parser.
package ruler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/hostsieve/hostsieve/internal/normalize"
	"github.com/hostsieve/hostsieve/internal/tld"
)

// ErrRegexCompileFailed is returned when a REG rule's pattern cannot be
// compiled once joined into the existing regex disjunction.
var ErrRegexCompileFailed = errors.New("regex compile failed")

// Ruler is the compiled whitelist matching index. It is safe to mutate
// (AddRule/RemoveRule) only from a single goroutine at a time; once
// ingestion is done, IsWhitelisted (and the other read-only methods)
// may be called concurrently from any number of goroutines, because
// every mutation swaps in a brand-new immutable snapshot rather than
// mutating shared state in place.
type Ruler struct {
	indices atomic.Pointer[rulerIndices]

	complement  bool
	tldProvider tld.Provider
	logger      *slog.Logger
}

// New creates an empty Ruler. complement fixes the complement policy for
// the lifetime of the Ruler. provider supplies the TLD extensions list
// consumed by Expand ("RZD") rules; it is preloaded here rather than
// lazily fetched from inside the first Expand mutator, so a provider
// fetch failure surfaces at construction instead of mid-ingestion. A
// nil logger defaults to slog.Default().
func New(complement bool, provider tld.Provider, logger *slog.Logger) *Ruler {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Ruler{
		complement:  complement,
		tldProvider: provider,
		logger:      logger,
	}

	idx := emptyIndices()
	if provider != nil {
		idx.extensions = provider.Extensions()
	}

	r.indices.Store(idx)

	return r
}

func (r *Ruler) snapshot() *rulerIndices {
	return r.indices.Load()
}

// pushExact inserts h into the strict index.
func (r *Ruler) pushExact(h string) {
	cur := r.snapshot()
	key := normalize.CommonKey(h)

	next := cur.clone()
	next.strict = insertExact(cur.strict, key, h)

	r.indices.Store(next)
}

// pullExact removes h from the strict index.
func (r *Ruler) pullExact(h string) {
	cur := r.snapshot()
	key := normalize.CommonKey(h)

	next := cur.clone()
	next.strict = deleteExact(cur.strict, key, h)

	r.indices.Store(next)
}

// pushPresent inserts h into the present index (populated by Expand rules).
func (r *Ruler) pushPresent(h string) {
	cur := r.snapshot()
	key := normalize.CommonKey(h)

	next := cur.clone()
	next.present = insertExact(cur.present, key, h)

	r.indices.Store(next)
}

// pullPresent removes h from the present index.
func (r *Ruler) pullPresent(h string) {
	cur := r.snapshot()
	key := normalize.CommonKey(h)

	next := cur.clone()
	next.present = deleteExact(cur.present, key, h)

	r.indices.Store(next)
}

// pushEnds inserts a dot-anchored suffix literal into the ends index.
// suf must start with ".".
func (r *Ruler) pushEnds(suf string) {
	cur := r.snapshot()
	key := normalize.EndsKey(suf)

	next := cur.clone()
	next.ends = insertSuffix(cur.ends, key, suf)

	r.indices.Store(next)
}

// pullEnds removes a dot-anchored suffix literal from the ends index.
func (r *Ruler) pullEnds(suf string) {
	cur := r.snapshot()
	key := normalize.EndsKey(suf)

	next := cur.clone()
	next.ends = deleteSuffix(cur.ends, key, suf)

	r.indices.Store(next)
}

// pushRegex appends pattern to the regex disjunction and recompiles. On
// a compile failure the snapshot is left untouched and
// ErrRegexCompileFailed is returned.
func (r *Ruler) pushRegex(pattern string) error {
	cur := r.snapshot()

	patterns, joined, compiled, ok := addPattern(cur.patterns, pattern)
	if !ok {
		return fmt.Errorf("%w: %q", ErrRegexCompileFailed, pattern)
	}

	next := cur.clone()
	next.patterns = patterns
	next.regex = joined
	next.compiled = compiled

	r.indices.Store(next)

	return nil
}

// pullRegex removes the first occurrence of pattern from the regex
// disjunction and recompiles. Pulling a pattern never pushed is a no-op.
func (r *Ruler) pullRegex(pattern string) {
	cur := r.snapshot()

	patterns, joined, compiled := removePattern(cur.patterns, pattern)

	next := cur.clone()
	next.patterns = patterns
	next.regex = joined
	next.compiled = compiled

	r.indices.Store(next)
}

// extensions returns the cached TLD extensions list, captured at
// construction time.
func (r *Ruler) extensions() []string {
	return r.snapshot().extensions
}

// IsWhitelisted reports whether line matches any active rule. Empty
// lines and comment lines (starting with "#") never match.
func (r *Ruler) IsWhitelisted(line string) bool {
	trimmed := strings.TrimSpace(line)

	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return false
	}

	record := normalize.Netloc(trimmed)

	if record == "" {
		return false
	}

	idx := r.snapshot()

	// common/ends are bucket keys; common is derived from the reduced
	// record so a "www."-prefixed lookup lands in the same bucket as its
	// bare form; record itself stays unreduced, since rule membership is
	// a literal comparison against whatever AddRule stored.
	common, ends := normalize.Keys(record)

	if containsExact(idx.strict, common, record) {
		return true
	}

	if containsExact(idx.present, common, record) {
		return true
	}

	if matchesSuffix(idx.ends, ends, record) {
		return true
	}

	if idx.compiled != nil && idx.compiled.MatchString(record) {
		return true
	}

	return false
}
