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

// Package tld supplies the flat list of DNS suffixes (top-level
// extensions and public suffixes) that the Ruler's Expand ("RZD") rules
// are fanned out over. The Ruler only ever consumes the result of
// Provider.Extensions; where the list comes from is an implementation
// detail.
package tld

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hueristiq/hq-go-url/tlds"

	"github.com/hostsieve/hostsieve/internal/fetch"
)

// Provider supplies a deduplication-insensitive list of dotted suffixes,
// without leading dots.
type Provider interface {
	Extensions() []string
}

const (
	ianaMappingURL = "https://raw.githubusercontent.com/PyFunceble/iana/master/iana-domains-db.json"
	pslMappingURL  = "https://raw.githubusercontent.com/PyFunceble/public-suffix/master/public-suffix.json"
)

// Remote fetches the IANA extensions database and the public-suffix
// database from their upstream JSON mirrors, unioned with the bundled
// pseudo-TLD list (github.com/hueristiq/hq-go-url/tlds.Pseudo) so that
// private-network and testing suffixes (local, test, onion, ...) are
// covered even when the remote datasets omit them.
//
// Extensions() fetches and caches on first call; when a remote fetch
// fails it logs the failure and leaves that dataset out (if both fail,
// only the bundled pseudo-TLD list remains), since a stalled TLD dataset
// should not be fatal to Expand-rule ingestion.
type Remote struct {
	logger *slog.Logger

	cached []string
}

// NewRemote returns a Provider backed by the IANA and public-suffix JSON
// mirrors. A nil logger defaults to slog.Default().
func NewRemote(logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}

	return &Remote{logger: logger}
}

// Extensions implements Provider.
func (r *Remote) Extensions() []string {
	if r.cached != nil {
		return r.cached
	}

	extensions := append([]string{}, tlds.Pseudo...)

	iana, err := fetchIANAExtensions()
	if err != nil {
		r.logger.Warn("failed to fetch IANA extensions, continuing with bundled pseudo-TLDs", slog.String("error", err.Error()))
	} else {
		extensions = append(extensions, iana...)
	}

	psl, err := fetchPSLSuffixes()
	if err != nil {
		r.logger.Warn("failed to fetch public-suffix list, continuing with bundled pseudo-TLDs", slog.String("error", err.Error()))
	} else {
		extensions = append(extensions, psl...)
	}

	slices.Sort(extensions)
	extensions = slices.Compact(extensions)

	r.cached = extensions

	return r.cached
}

func fetchIANAExtensions() ([]string, error) {
	body, err := fetch.Fetch(ianaMappingURL)
	if err != nil {
		return nil, err
	}

	var mapping map[string]*string

	if err := json.Unmarshal([]byte(body), &mapping); err != nil {
		return nil, fmt.Errorf("unmarshal iana mapping: %w", err)
	}

	extensions := make([]string, 0, len(mapping))

	for extension := range mapping {
		extensions = append(extensions, extension)
	}

	return extensions, nil
}

func fetchPSLSuffixes() ([]string, error) {
	body, err := fetch.Fetch(pslMappingURL)
	if err != nil {
		return nil, err
	}

	var mapping map[string][]string

	if err := json.Unmarshal([]byte(body), &mapping); err != nil {
		return nil, fmt.Errorf("unmarshal public-suffix mapping: %w", err)
	}

	var suffixes []string

	for _, tldSuffixes := range mapping {
		suffixes = append(suffixes, tldSuffixes...)
	}

	return suffixes, nil
}

// Bundled is a Provider backed solely by the bundled pseudo-TLD snapshot,
// with no network access. It is the Provider used by tests and by
// callers that want a deterministic, offline extension list.
type Bundled struct {
	extra []string
}

// NewBundled returns a Provider over the bundled pseudo-TLD list plus any
// extra extensions supplied by the caller.
func NewBundled(extra ...string) *Bundled {
	return &Bundled{extra: extra}
}

// Extensions implements Provider.
func (b *Bundled) Extensions() []string {
	extensions := append([]string{}, tlds.Pseudo...)
	extensions = append(extensions, b.extra...)

	return extensions
}
