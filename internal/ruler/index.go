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
	"regexp"
	"strings"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/hostsieve/hostsieve/internal/normalize"
)

func bucket(buckets map[string]*iradix.Tree, key string) *iradix.Tree {
	if t, ok := buckets[key]; ok {
		return t
	}

	return iradix.New()
}

// insertExact inserts member into the bucket map under key, returning a
// new bucket map. Re-inserting a member already present is a no-op at
// the set level.
func insertExact(buckets map[string]*iradix.Tree, key, member string) map[string]*iradix.Tree {
	tree := bucket(buckets, key)

	newTree, _, _ := tree.Insert([]byte(member), struct{}{})

	next := cloneBucketMap(buckets)
	next[key] = newTree

	return next
}

// deleteExact removes member from the bucket map under key. Removing a
// member not present is a no-op.
func deleteExact(buckets map[string]*iradix.Tree, key, member string) map[string]*iradix.Tree {
	tree, ok := buckets[key]
	if !ok {
		return buckets
	}

	newTree, _, ok := tree.Delete([]byte(member))
	if !ok {
		return buckets
	}

	next := cloneBucketMap(buckets)
	next[key] = newTree

	return next
}

func containsExact(buckets map[string]*iradix.Tree, key, member string) bool {
	tree, ok := buckets[key]
	if !ok {
		return false
	}

	_, found := tree.Get([]byte(member))

	return found
}

// insertSuffix inserts suffix (expected to start with ".") into the ends
// bucket under key, keyed internally by its reversed form.
func insertSuffix(buckets map[string]*iradix.Tree, key, suffix string) map[string]*iradix.Tree {
	tree := bucket(buckets, key)

	newTree, _, _ := tree.Insert([]byte(normalize.Reverse(suffix)), suffix)

	next := cloneBucketMap(buckets)
	next[key] = newTree

	return next
}

func deleteSuffix(buckets map[string]*iradix.Tree, key, suffix string) map[string]*iradix.Tree {
	tree, ok := buckets[key]
	if !ok {
		return buckets
	}

	newTree, _, ok := tree.Delete([]byte(normalize.Reverse(suffix)))
	if !ok {
		return buckets
	}

	next := cloneBucketMap(buckets)
	next[key] = newTree

	return next
}

// matchesSuffix reports whether any suffix literal stored in the bucket
// under key is a suffix of record. Storing suffixes reversed turns this
// into a prefix search over reverse(record): LongestPrefix finds the
// longest stored key that is an actual prefix of reverse(record), which
// is exactly the longest suffix literal that matches record — and
// reports no match at all only when none of the bucket's members,
// regardless of their length relative to each other, are a suffix of
// record.
func matchesSuffix(buckets map[string]*iradix.Tree, key, record string) bool {
	tree, ok := buckets[key]
	if !ok {
		return false
	}

	_, _, match := tree.Root().LongestPrefix([]byte(normalize.Reverse(record)))

	return match
}

// addPattern appends pattern to the ordered pattern set and recompiles
// the disjunction from scratch. On a compile failure it returns ok=false
// and leaves the caller free to discard the attempt entirely: the
// pre-mutation rulerIndices snapshot is never replaced.
func addPattern(patterns []string, pattern string) (newPatterns []string, joined string, compiled *regexp.Regexp, ok bool) {
	newPatterns = append(append([]string{}, patterns...), pattern)
	joined = strings.Join(newPatterns, "|")

	re, err := regexp.Compile(joined)
	if err != nil {
		return nil, "", nil, false
	}

	return newPatterns, joined, re, true
}

// removePattern removes the first occurrence of pattern from the ordered
// pattern set and recompiles the disjunction from scratch. Removing a
// pattern not present is a no-op (returns the inputs' equivalent,
// unchanged set).
func removePattern(patterns []string, pattern string) (newPatterns []string, joined string, compiled *regexp.Regexp) {
	newPatterns = make([]string, 0, len(patterns))

	removed := false

	for _, p := range patterns {
		if !removed && p == pattern {
			removed = true
			continue
		}

		newPatterns = append(newPatterns, p)
	}

	joined = strings.Join(newPatterns, "|")

	if joined == "" {
		return newPatterns, "", nil
	}

	// newPatterns is a subset of a set that compiled successfully before,
	// so recompiling it can never fail.
	compiled = regexp.MustCompile(joined)

	return newPatterns, joined, compiled
}
