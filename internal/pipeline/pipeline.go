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

// Package pipeline drives an input line stream through a Ruler and writes
// the surviving (non-whitelisted) lines to a sink, in either a
// sequential or a worker-pool parallel mode.
package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrSourceNotReadable is returned when the source stream cannot be read.
var ErrSourceNotReadable = errors.New("source not readable")

// ErrSinkWriteFailed is returned when a survivor line cannot be written
// to the sink.
var ErrSinkWriteFailed = errors.New("sink write failed")

// whitelistRuler is the subset of pkg/hostsieve.Ruler the pipeline
// depends on. Declared locally so internal/pipeline does not need to
// import pkg/hostsieve's full mutation surface, only its read path.
type whitelistRuler interface {
	IsSubjectWhitelisted(subject string) bool
}

// Normalizer produces the normalized form of a raw input line that the
// Ruler is queried with. It is the pipeline's seam for plugging in
// host normalization (netloc stripping, IDNA conversion, case folding)
// ahead of the whitelist lookup.
type Normalizer func(line string) string

// Sinks bundles the destination(s) surviving lines are written to: sink
// is always written to (the temporary output file); Stdout, when
// non-nil, also receives survivors — used when no --output path was
// given.
type Sinks struct {
	Sink   io.Writer
	Stdout io.Writer
}

func (s Sinks) write(line string) error {
	if _, err := fmt.Fprintln(s.Sink, line); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWriteFailed, err)
	}

	if s.Stdout != nil {
		fmt.Fprintln(s.Stdout, line)
	}

	return nil
}

func newScanner(src io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return scanner
}

func logOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}

	return logger
}
