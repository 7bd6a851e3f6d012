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

	"github.com/stretchr/testify/assert"
)

func TestIsWhitelistedDiscardsEmptyAndComments(t *testing.T) {
	t.Parallel()

	r := New(false, nil, nil)
	r.AddRule("example.org")

	assert.False(t, r.IsWhitelisted(""))
	assert.False(t, r.IsWhitelisted("   "))
	assert.False(t, r.IsWhitelisted("# example.org"))
}

func TestIsWhitelistedURLNetloc(t *testing.T) {
	t.Parallel()

	r := New(false, nil, nil)
	r.AddRule("x.example.org")

	assert.Equal(t,
		r.IsWhitelisted("x.example.org"),
		r.IsWhitelisted("https://x.example.org/path?q=1"),
	)
}

func TestScenarioExactAndAllMixedComplementOff(t *testing.T) {
	t.Parallel()

	r := New(false, nil, nil)
	r.AddRule("api.example.org")
	r.AddRule("ALL .com")

	survivors := []string{}
	inputs := []string{"example.com", "example.org", "api.example.com", "test.example.com", "api.example.org"}

	for _, in := range inputs {
		if !r.IsWhitelisted(in) {
			survivors = append(survivors, in)
		}
	}

	assert.Equal(t, []string{"example.org"}, survivors)
}

func TestLiteralWwwRuleMatchesItselfComplementOff(t *testing.T) {
	t.Parallel()

	r := New(false, nil, nil)
	r.AddRule("www.foo.com")

	assert.True(t, r.IsWhitelisted("www.foo.com"))
	assert.False(t, r.IsWhitelisted("foo.com"))
}

func TestScenarioComplementOnWwwVariant(t *testing.T) {
	t.Parallel()

	r := New(true, nil, nil)
	r.AddRule("api.example.org")
	r.AddRule("ALL .com")

	assert.True(t, r.IsWhitelisted("www.api.example.org"))
}

func TestScenarioRegexSurvivor(t *testing.T) {
	t.Parallel()

	r := New(false, nil, nil)
	r.AddRule(`REG ^(www\.)?bad\.test$`)

	inputs := []string{"bad.test", "www.bad.test", "other.test"}
	survivors := []string{}

	for _, in := range inputs {
		if !r.IsWhitelisted(in) {
			survivors = append(survivors, in)
		}
	}

	assert.Equal(t, []string{"other.test"}, survivors)
}

func TestScenarioRzdSurvivors(t *testing.T) {
	t.Parallel()

	r := New(false, stubProvider{extensions: []string{"com", "net"}}, nil)
	r.AddRule("RZD shop")

	inputs := []string{"shop.com", "shop.net", "shop.org", "store.com"}
	survivors := []string{}

	for _, in := range inputs {
		if !r.IsWhitelisted(in) {
			survivors = append(survivors, in)
		}
	}

	assert.Equal(t, []string{"shop.org", "store.com"}, survivors)
}

func TestScenarioParseThenUnparse(t *testing.T) {
	t.Parallel()

	r := New(false, nil, nil)
	r.AddRule("ALL .example.org")
	r.RemoveRule("ALL .example.org")

	assert.False(t, r.IsWhitelisted("x.example.org"))
}

func TestSuffixStrictness(t *testing.T) {
	t.Parallel()

	// An "ALL .example.org" rule matches a.example.org and example.org
	// but not bexample.org: suffix matching anchors on the dot.
	r := New(false, nil, nil)
	r.AddRule("ALL .example.org")

	assert.True(t, r.IsWhitelisted("a.example.org"))
	assert.True(t, r.IsWhitelisted("example.org"))
	assert.False(t, r.IsWhitelisted("bexample.org"))
}

func TestRegexCompileFailureRollsBackSnapshot(t *testing.T) {
	t.Parallel()

	r := New(false, nil, nil)
	r.AddRule("example.org")

	before := r.snapshot()

	err := r.pushRegex("(unclosed")
	assert.ErrorIs(t, err, ErrRegexCompileFailed)
	assert.Same(t, before, r.snapshot())
	assert.True(t, r.IsWhitelisted("example.org"))
}

func TestConcurrentReadsDuringSnapshotSwap(t *testing.T) {
	t.Parallel()

	r := New(false, nil, nil)
	r.AddRule("example.org")

	done := make(chan struct{})

	go func() {
		defer close(done)

		for i := 0; i < 100; i++ {
			r.IsWhitelisted("example.org")
			r.IsWhitelisted("other.org")
		}
	}()

	for i := 0; i < 100; i++ {
		r.AddRule("extra-rule-for-churn.org")
		r.RemoveRule("extra-rule-for-churn.org")
	}

	<-done
}
