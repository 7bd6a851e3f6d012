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
package tld_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hostsieve/hostsieve/internal/tld"
)

func TestBundledIncludesExtraExtensions(t *testing.T) {
	t.Parallel()

	provider := tld.NewBundled("com", "net")

	extensions := provider.Extensions()

	assert.Contains(t, extensions, "com")
	assert.Contains(t, extensions, "net")
}

func TestBundledIncludesPseudoTLDs(t *testing.T) {
	t.Parallel()

	provider := tld.NewBundled()

	extensions := provider.Extensions()

	assert.NotEmpty(t, extensions)
}

func TestBundledIsDeterministic(t *testing.T) {
	t.Parallel()

	a := tld.NewBundled("example").Extensions()
	b := tld.NewBundled("example").Extensions()

	assert.True(t, slices.Equal(a, b))
}

var _ tld.Provider = (*tld.Bundled)(nil)
var _ tld.Provider = (*tld.Remote)(nil)
