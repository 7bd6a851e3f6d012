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

// Package fetch resolves a rule-source reference (a local path or a URL)
// to a local file path, downloading URLs to a randomly-named temporary
// file when needed.
package fetch

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrRuleFetchFailed is returned when a URL rule source could not be
// retrieved (network error or a non-2xx response).
var ErrRuleFetchFailed = errors.New("rule fetch failed")

const tempNameLength = 30

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// IsURL reports whether ref looks like a URL, i.e. it contains "://".
func IsURL(ref string) bool {
	return containsScheme(ref)
}

func containsScheme(ref string) bool {
	return strings.Contains(ref, "://")
}

// Resolve returns a local file path for ref. If ref is not a URL, it is
// returned unchanged with a no-op cleanup. If ref is a URL, its content is
// GETed into a file with a random alphanumeric basename under the system
// temp directory; cleanup removes that file.
func Resolve(ref string) (path string, cleanup func() error, err error) {
	if !IsURL(ref) {
		return ref, func() error { return nil }, nil
	}

	tempPath := filepath.Join(os.TempDir(), randomName(tempNameLength))

	if err := fetchToFile(ref, tempPath); err != nil {
		return "", func() error { return nil }, err
	}

	return tempPath, func() error { return os.Remove(tempPath) }, nil
}

func fetchToFile(ref, destination string) error {
	resp, err := http.Get(ref) //nolint:gosec,noctx // ref is operator-supplied

	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRuleFetchFailed, ref, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s: status %d", ErrRuleFetchFailed, ref, resp.StatusCode)
	}

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrRuleFetchFailed, destination, err)
	}

	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrRuleFetchFailed, destination, err)
	}

	return nil
}

func randomName(n int) string {
	b := make([]byte, n)

	for i := range b {
		b[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}

	return string(b)
}

// Fetch performs a plain HTTP GET against url and returns the response
// body as a string. It is used by internal/tld to pull the IANA and
// public-suffix datasets.
func Fetch(rawURL string) (string, error) {
	resp, err := http.Get(rawURL) //nolint:gosec,noctx // rawURL is a fixed dataset endpoint

	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRuleFetchFailed, rawURL, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s: status %d", ErrRuleFetchFailed, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrRuleFetchFailed, rawURL, err)
	}

	return string(body), nil
}
