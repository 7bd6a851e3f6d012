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

// Package normalize holds the host-like record normalization primitives
// shared by the Ruler and the filter pipeline: netloc extraction, IDNA
// ASCII conversion, and the "www." reduction used to key the Ruler's
// buckets.
package normalize

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// commonKeyWidth and endsKeyWidth are the fixed bucket-key widths the
// Ruler's strict/present and ends indices are sharded on. They must stay
// consistent between insertion and lookup.
const (
	commonKeyWidth = 4
	endsKeyWidth   = 3
)

// Netloc extracts the host portion of a URL-like string, without any
// port. It never fails: a string that is not a parsable URL at all is
// itself taken as the starting point for the truncations below.
//
// Rules, applied in order: if s parses with a non-empty host, use the
// host; otherwise if it parses with a non-empty path, use the path;
// otherwise use s itself. The result is then truncated at the first "//"
// (defensive for malformed input such as "://example.org/x") and at the
// first "/", and any ":port" suffix is stripped.
func Netloc(s string) string {
	var result string

	parsed, err := url.Parse(s)

	if err == nil && parsed.Host != "" {
		result = parsed.Host
	} else if err == nil && parsed.Path != "" {
		result = parsed.Path
	} else {
		result = s
	}

	if idx := strings.Index(result, "//"); idx != -1 {
		result = result[idx+2:]
	}

	if idx := strings.Index(result, "/"); idx != -1 {
		result = result[:idx]
	}

	if idx := strings.Index(result, ":"); idx != -1 {
		result = result[:idx]
	}

	return result
}

// IDNA converts the non-ASCII labels of a dot-separated host to their
// IDNA ASCII (xn--...) form, leaving ASCII labels' characters untouched.
// A label whose conversion fails is kept as it was; the other labels are
// still converted.
func IDNA(s string) string {
	labels := strings.Split(s, ".")

	for i, label := range labels {
		if isASCII(label) {
			continue
		}

		ascii, err := idna.ToASCII(label)
		if err != nil {
			continue
		}

		labels[i] = ascii
	}

	return strings.Join(labels, ".")
}

// FoldCase lowercases s. The pipeline applies this alongside IDNA
// conversion when normalizing an incoming line: hostnames are
// case-insensitive, so "EXAMPLE.org" and "example.org" must resolve to
// the same Ruler lookup even though IDNA conversion itself leaves
// already-ASCII labels' case untouched.
func FoldCase(s string) string {
	return strings.ToLower(s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}

// Reduce strips a single leading "www." label, if present.
func Reduce(s string) string {
	if strings.HasPrefix(s, "www.") {
		return strings.TrimPrefix(s, "www.")
	}

	return s
}

// CommonKey returns the first commonKeyWidth characters of the reduced
// form of h, used to shard the strict/present indices.
func CommonKey(h string) string {
	r := Reduce(h)

	if len(r) < commonKeyWidth {
		return r
	}

	return r[:commonKeyWidth]
}

// EndsKey returns the last endsKeyWidth characters of s, used to shard
// the ends index. Unlike CommonKey, it does not reduce its input: ends
// keys are computed over suffix literals (e.g. ".example.org") and, at
// lookup time, over the record as given (see Keys).
func EndsKey(s string) string {
	if len(s) < endsKeyWidth {
		return s
	}

	return s[len(s)-endsKeyWidth:]
}

// Keys returns the pair of bucket keys (CommonKey, EndsKey) for h. h is
// not reduced here: CommonKey already reduces internally to compute the
// strict/present bucket key, and EndsKey never needs reduction since a
// leading "www." label does not affect a string's last few characters.
// Callers that need the reduced record itself (e.g. to test it against
// patterns stored in a pattern match) should call Reduce separately —
// Keys exists only to derive bucket keys, never to strip "www.".
func Keys(h string) (common string, ends string) {
	return CommonKey(h), EndsKey(h)
}

// Reverse returns s with its bytes in reverse order. It is used to turn a
// "does r end with s" suffix test into a "does reverse(s) prefix
// reverse(r)" prefix test, which the radix-backed ends index answers with
// LongestPrefix.
func Reverse(s string) string {
	b := []byte(s)

	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}

	return string(b)
}
