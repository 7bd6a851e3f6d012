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
package pipeline_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostsieve/hostsieve/internal/pipeline"
)

// fakeRuler whitelists any subject present in its set, compared
// verbatim, so tests can exercise the Normalizer seam by passing a
// normalizeFn that maps the input onto a set member.
type fakeRuler struct {
	whitelisted map[string]struct{}
}

func (f fakeRuler) IsSubjectWhitelisted(subject string) bool {
	_, ok := f.whitelisted[subject]
	return ok
}

func newFakeRuler(subjects ...string) fakeRuler {
	set := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		set[s] = struct{}{}
	}

	return fakeRuler{whitelisted: set}
}

func TestSequentialFiltersWhitelistedLines(t *testing.T) {
	t.Parallel()

	src := strings.NewReader("example.org\nwhitelisted.org\nother.org\n")
	ruler := newFakeRuler("whitelisted.org")

	var sink strings.Builder

	stats, err := pipeline.Sequential(context.Background(), src, ruler, nil, pipeline.Sinks{Sink: &sink}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Read)
	assert.Equal(t, 2, stats.Survived)
	assert.Equal(t, 1, stats.Whitelist)
	assert.Equal(t, "example.org\nother.org\n", sink.String())
}

func TestSequentialAppliesNormalizer(t *testing.T) {
	t.Parallel()

	src := strings.NewReader("EXAMPLE.org\n")
	ruler := newFakeRuler("example.org")

	var sink strings.Builder

	normalizeFn := func(line string) string { return strings.ToLower(line) }

	_, err := pipeline.Sequential(context.Background(), src, ruler, normalizeFn, pipeline.Sinks{Sink: &sink}, nil)
	require.NoError(t, err)

	assert.Equal(t, "", sink.String())
}

func TestSequentialTeesToStdout(t *testing.T) {
	t.Parallel()

	src := strings.NewReader("a.org\nb.org\n")
	ruler := newFakeRuler()

	var sink, stdout strings.Builder

	_, err := pipeline.Sequential(context.Background(), src, ruler, nil, pipeline.Sinks{Sink: &sink, Stdout: &stdout}, nil)
	require.NoError(t, err)

	assert.Equal(t, sink.String(), stdout.String())
}

func TestParallelWritesEverySurvivorExactlyOnce(t *testing.T) {
	t.Parallel()

	lines := []string{}
	for i := 0; i < 200; i++ {
		lines = append(lines, strings.Repeat("x", i%5+1)+fmt.Sprintf("-%d", i))
	}

	src := strings.NewReader(strings.Join(lines, "\n") + "\n")
	ruler := newFakeRuler()

	var sink strings.Builder

	stats, err := pipeline.Parallel(context.Background(), src, ruler, nil, pipeline.Sinks{Sink: &sink}, 8, nil)
	require.NoError(t, err)

	assert.Equal(t, len(lines), stats.Read)

	written := strings.Split(strings.TrimSuffix(sink.String(), "\n"), "\n")
	assert.ElementsMatch(t, lines, written)
}

func TestParallelFiltersWhitelistedLines(t *testing.T) {
	t.Parallel()

	src := strings.NewReader("keep1.org\nskip.org\nkeep2.org\n")
	ruler := newFakeRuler("skip.org")

	var sink strings.Builder

	stats, err := pipeline.Parallel(context.Background(), src, ruler, nil, pipeline.Sinks{Sink: &sink}, 4, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Survived)

	written := strings.Split(strings.TrimSuffix(sink.String(), "\n"), "\n")
	assert.ElementsMatch(t, []string{"keep1.org", "keep2.org"}, written)
}

func TestParallelDefaultsToAtLeastOneWorker(t *testing.T) {
	t.Parallel()

	src := strings.NewReader("a.org\n")
	ruler := newFakeRuler()

	var sink strings.Builder

	_, err := pipeline.Parallel(context.Background(), src, ruler, nil, pipeline.Sinks{Sink: &sink}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "a.org\n", sink.String())
}

func TestSequentialContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := strings.NewReader("a.org\nb.org\n")
	ruler := newFakeRuler()

	var sink strings.Builder

	_, err := pipeline.Sequential(ctx, src, ruler, nil, pipeline.Sinks{Sink: &sink}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
