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

	iradix "github.com/hashicorp/go-immutable-radix"
)

// rulerIndices is one immutable snapshot of the Ruler's matching state:
// the three bucketed radix-tree indices, the ordered set of active regex
// patterns plus their compiled disjunction, and the cached TLD
// extensions used by Expand rules. A Ruler swaps in a new rulerIndices on
// every mutation; readers that hold a snapshot (via Load) see a
// consistent view regardless of concurrent mutation or later reads.
type rulerIndices struct {
	strict  map[string]*iradix.Tree
	present map[string]*iradix.Tree
	ends    map[string]*iradix.Tree

	patterns []string
	regex    string
	compiled *regexp.Regexp

	extensions []string
}

func emptyIndices() *rulerIndices {
	return &rulerIndices{
		strict:  map[string]*iradix.Tree{},
		present: map[string]*iradix.Tree{},
		ends:    map[string]*iradix.Tree{},
	}
}

// clone returns a shallow copy of idx: the bucket maps are copied (so
// that callers can replace one bucket without mutating the snapshot
// other readers hold) but individual *iradix.Tree values are shared,
// since iradix.Tree is itself immutable and safe to share.
func (idx *rulerIndices) clone() *rulerIndices {
	return &rulerIndices{
		strict:     cloneBucketMap(idx.strict),
		present:    cloneBucketMap(idx.present),
		ends:       cloneBucketMap(idx.ends),
		patterns:   append([]string{}, idx.patterns...),
		regex:      idx.regex,
		compiled:   idx.compiled,
		extensions: idx.extensions,
	}
}

func cloneBucketMap(m map[string]*iradix.Tree) map[string]*iradix.Tree {
	next := make(map[string]*iradix.Tree, len(m)+1)

	for k, v := range m {
		next[k] = v
	}

	return next
}
