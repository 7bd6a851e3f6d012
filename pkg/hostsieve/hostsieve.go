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

// Package hostsieve is the public facade over internal/ruler: a
// compiled, concurrency-safe whitelist matcher for hostnames, built
// around four rule families (Exact, Suffix, Expand, Regex).
package hostsieve

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hostsieve/hostsieve/internal/ruler"
	"github.com/hostsieve/hostsieve/internal/tld"
)

// Ruler is the public whitelist matcher. It wraps *internal/ruler.Ruler
// behind an interface so callers can swap in a fake for tests.
type Ruler interface {
	AddRule(rule string) bool
	AddRuleWithFlag(rule string, flag Flag) bool
	RemoveRule(rule string) bool
	RemoveRuleWithFlag(rule string, flag Flag) bool
	IsSubjectWhitelisted(subject string) bool
	IsSubjectBlacklisted(subject string) bool
	GetWhitelistedFromLine(line string) []string
	GetBlacklistedFromLine(line string) []string
	Logger() *slog.Logger
}

type hostRuler struct {
	inner  *ruler.Ruler
	logger *slog.Logger
}

// NewRuler creates a Ruler with an empty rule set. complement fixes the
// complement policy for the lifetime of the Ruler. provider
// supplies the TLD extensions list Expand rules are multiplied over; pass
// tld.NewRemote for a live PyFunceble-backed list, or tld.NewBundled for
// an offline-only one. A nil logger defaults to slog.Default().
func NewRuler(complement bool, provider tld.Provider, logger *slog.Logger) Ruler {
	if logger == nil {
		logger = slog.Default()
	}

	return &hostRuler{
		inner:  ruler.New(complement, provider, logger),
		logger: logger,
	}
}

// Logger returns the logger this Ruler was constructed with.
func (h *hostRuler) Logger() *slog.Logger {
	return h.logger
}

// AddRule classifies and indexes rule. It returns false only for empty or
// comment lines.
func (h *hostRuler) AddRule(rule string) bool {
	return h.inner.AddRule(rule)
}

// AddRuleWithFlag parses rule as if prefixed with flag.
func (h *hostRuler) AddRuleWithFlag(rule string, flag Flag) bool {
	return h.inner.AddRule(fmt.Sprintf("%s%s", flag, rule))
}

// RemoveRule mirrors AddRule with the pull variants.
func (h *hostRuler) RemoveRule(rule string) bool {
	return h.inner.RemoveRule(rule)
}

// RemoveRuleWithFlag mirrors AddRuleWithFlag.
func (h *hostRuler) RemoveRuleWithFlag(rule string, flag Flag) bool {
	return h.inner.RemoveRule(fmt.Sprintf("%s%s", flag, rule))
}

// IsSubjectWhitelisted reports whether subject matches any active rule.
func (h *hostRuler) IsSubjectWhitelisted(subject string) bool {
	return h.inner.IsWhitelisted(subject)
}

// IsSubjectBlacklisted is the complement of IsSubjectWhitelisted.
func (h *hostRuler) IsSubjectBlacklisted(subject string) bool {
	return !h.IsSubjectWhitelisted(subject)
}

// fieldsFromLine strips trailing comments and splits line on whitespace,
// dropping repeated fields (the first occurrence of each is kept, in
// order). Shared by GetWhitelistedFromLine/GetBlacklistedFromLine.
func fieldsFromLine(line string) []string {
	trimmed := strings.TrimSpace(line)

	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	if idx := strings.Index(trimmed, "#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	fields := strings.Fields(trimmed)

	seen := make(map[string]struct{}, len(fields))
	unique := fields[:0]

	for _, field := range fields {
		if _, ok := seen[field]; ok {
			continue
		}

		seen[field] = struct{}{}
		unique = append(unique, field)
	}

	return unique
}

// GetWhitelistedFromLine assumes line comes straight from a hosts-file
// or plain-text source and may contain multiple subjects separated by
// whitespace; it returns the ones that are whitelisted.
func (h *hostRuler) GetWhitelistedFromLine(line string) []string {
	var result []string

	for _, subject := range fieldsFromLine(line) {
		if h.IsSubjectWhitelisted(subject) {
			result = append(result, subject)
		}
	}

	return result
}

// GetBlacklistedFromLine mirrors GetWhitelistedFromLine for the subjects
// that are NOT whitelisted.
func (h *hostRuler) GetBlacklistedFromLine(line string) []string {
	var result []string

	for _, subject := range fieldsFromLine(line) {
		if h.IsSubjectBlacklisted(subject) {
			result = append(result, subject)
		}
	}

	return result
}
