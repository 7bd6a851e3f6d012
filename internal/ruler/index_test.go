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
package ruler

import (
	"testing"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/stretchr/testify/assert"
)

func TestInsertExactDeleteExactContainsExact(t *testing.T) {
	t.Parallel()

	buckets := map[string]*iradix.Tree{}

	buckets = insertExact(buckets, "exam", "example.org")
	assert.True(t, containsExact(buckets, "exam", "example.org"))
	assert.False(t, containsExact(buckets, "exam", "example.net"))
	assert.False(t, containsExact(buckets, "othe", "example.org"))

	buckets = deleteExact(buckets, "exam", "example.org")
	assert.False(t, containsExact(buckets, "exam", "example.org"))
}

func TestDeleteExactMissingIsNoop(t *testing.T) {
	t.Parallel()

	buckets := map[string]*iradix.Tree{}
	result := deleteExact(buckets, "exam", "example.org")

	assert.False(t, containsExact(result, "exam", "example.org"))
}

func TestInsertSuffixMatchesSuffix(t *testing.T) {
	t.Parallel()

	buckets := map[string]*iradix.Tree{}

	buckets = insertSuffix(buckets, "org", ".example.org")

	assert.True(t, matchesSuffix(buckets, "org", "a.example.org"))
	assert.True(t, matchesSuffix(buckets, "org", "example.org"))
	assert.False(t, matchesSuffix(buckets, "org", "bexample.org"))
	assert.False(t, matchesSuffix(buckets, "org", "example.net"))
}

func TestMatchesSuffixShorterMatchesWhenLongerDoesNot(t *testing.T) {
	t.Parallel()

	buckets := map[string]*iradix.Tree{}

	buckets = insertSuffix(buckets, "org", ".example.org")
	buckets = insertSuffix(buckets, "org", ".api.example.org")

	// "other.example.org" ends with ".example.org" but not ".api.example.org":
	// the shorter bucket member must still be found.
	assert.True(t, matchesSuffix(buckets, "org", "other.example.org"))
}

func TestDeleteSuffix(t *testing.T) {
	t.Parallel()

	buckets := map[string]*iradix.Tree{}
	buckets = insertSuffix(buckets, "org", ".example.org")
	buckets = deleteSuffix(buckets, "org", ".example.org")

	assert.False(t, matchesSuffix(buckets, "org", "a.example.org"))
}

func TestAddPatternRemovePattern(t *testing.T) {
	t.Parallel()

	patterns, joined, compiled, ok := addPattern(nil, "^foo$")
	assert.True(t, ok)
	assert.Equal(t, []string{"^foo$"}, patterns)
	assert.Equal(t, "^foo$", joined)
	assert.True(t, compiled.MatchString("foo"))

	patterns, joined, compiled, ok = addPattern(patterns, "^bar$")
	assert.True(t, ok)
	assert.Equal(t, "^foo$|^bar$", joined)
	assert.True(t, compiled.MatchString("bar"))

	patterns, joined, compiled = removePattern(patterns, "^foo$")
	assert.Equal(t, []string{"^bar$"}, patterns)
	assert.Equal(t, "^bar$", joined)
	assert.True(t, compiled.MatchString("bar"))
	assert.False(t, compiled.MatchString("foo"))
}

func TestAddPatternInvalidRegexRollsBack(t *testing.T) {
	t.Parallel()

	_, _, _, ok := addPattern([]string{"^foo$"}, "(unclosed")
	assert.False(t, ok)
}

func TestRemovePatternToEmptyLeavesNilCompiled(t *testing.T) {
	t.Parallel()

	patterns, joined, compiled := removePattern([]string{"^foo$"}, "^foo$")
	assert.Empty(t, patterns)
	assert.Equal(t, "", joined)
	assert.Nil(t, compiled)
}
