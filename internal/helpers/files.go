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
// Package helpers provides small file-system utilities: line-at-a-time
// file iteration, line-at-a-time file writing, and a
// cross-filesystem-safe copy. cmd/root.go uses the iteration for
// rule-file ingestion and the copy for moving the pipeline's temporary
// sink to its final output path.
package helpers

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// IterFile reads filePath line by line and applies yield to each line. It
// returns a non-nil error wrapping pipeline.ErrSourceNotReadable-equivalent
// failures (open or scan errors) so the caller can decide how to report
// them rather than the helper exiting the process itself.
func IterFile(filePath string, yield func(string)) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		yield(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", filePath, err)
	}

	return nil
}

// WriteFileFromIter creates filePath and writes each line iter yields to it,
// one per line.
func WriteFileFromIter(filePath string, iter func(func(string))) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create %s: %w", filePath, err)
	}
	defer file.Close()

	var writeErr error

	iter(func(line string) {
		if writeErr != nil {
			return
		}

		if _, err := file.WriteString(line + "\n"); err != nil {
			writeErr = fmt.Errorf("write %s: %w", filePath, err)
		}
	})

	return writeErr
}

// CopyFile copies the contents of srcFile to destFile. Used because the
// pipeline's temporary sink and the user-specified output path are not
// guaranteed to share a filesystem, so a rename is not always possible.
func CopyFile(srcFile, destFile string) error {
	src, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcFile, err)
	}
	defer src.Close()

	dest, err := os.Create(destFile)
	if err != nil {
		return fmt.Errorf("create %s: %w", destFile, err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("copy %s to %s: %w", srcFile, destFile, err)
	}

	return nil
}
