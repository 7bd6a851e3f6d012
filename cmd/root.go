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
package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hostsieve/hostsieve/internal/fetch"
	"github.com/hostsieve/hostsieve/internal/helpers"
	"github.com/hostsieve/hostsieve/internal/normalize"
	"github.com/hostsieve/hostsieve/internal/pipeline"
	"github.com/hostsieve/hostsieve/internal/tld"
	"github.com/hostsieve/hostsieve/pkg/hostsieve"
)

var ProjectVersion string

var sourceFile string
var outputFile string
var whitelistFiles []string
var whitelistAllFiles []string
var whitelistRegFiles []string
var whitelistRzdFiles []string

var bypassFiles []string
var bypassAllFiles []string
var bypassRegFiles []string
var bypassRzdFiles []string

var allowComplements bool
var logLevel string
var multithread bool
var maxThreads int
var offlineTLDs bool

var rootCmd = &cobra.Command{
	Use:   "hostsieve",
	Short: "A different whitelisting mechanism for blocklist maintainers.",
	Long: `hostsieve implements a different approach to whitelisting for maintainers
of hostname blocklists.

It filters a source list of subjects against a compiled set of whitelist
rules (exact hosts, suffix families, TLD-expanded stems, and regular
expressions), writing the subjects that survive to an output file or
standard output.`,

	Run: func(cmd *cobra.Command, args []string) {
		if sourceFile == "" {
			log.Fatal("Error: --source must be specified.")
		}

		if len(whitelistFiles) == 0 && len(whitelistAllFiles) == 0 &&
			len(whitelistRegFiles) == 0 && len(whitelistRzdFiles) == 0 {
			log.Fatal("Error: at least one --whitelist* file must be specified.")
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLogLevel(logLevel),
		}))
		slog.SetDefault(logger)

		if err := runCleanup(logger); err != nil {
			logger.Error("cleanup failed", slog.String("error", err.Error()))
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hostsieve",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hostsieve: %s\n", ProjectVersion)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "Warning: Unrecognized log-level '%s'. Defaulting to 'error'.\n", level)
		return slog.LevelError
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVarP(&sourceFile, "source", "s", "", "The source file to clean up.")

	rootCmd.Flags().StringSliceVarP(&whitelistFiles, "whitelist", "w", []string{}, "A whitelist rule file. Can be specified multiple times.")
	rootCmd.Flags().StringSliceVarP(&whitelistAllFiles, "all", "a", []string{}, "A whitelist rule file whose entries are treated as the 'ALL' (suffix) family. Can be specified multiple times.")
	rootCmd.Flags().StringSliceVarP(&whitelistRegFiles, "reg", "r", []string{}, "A whitelist rule file whose entries are treated as the 'REG' (regex) family. Can be specified multiple times.")
	rootCmd.Flags().StringSliceVarP(&whitelistRzdFiles, "rzd", "z", []string{}, "A whitelist rule file whose entries are treated as the 'RZD' (TLD-expansion) family. Can be specified multiple times.")

	rootCmd.Flags().StringSliceVarP(&bypassFiles, "bypass", "B", []string{}, "A rule file to unparse (remove) from the compiled Ruler after all whitelist files are loaded. Can be specified multiple times.")
	rootCmd.Flags().StringSliceVarP(&bypassAllFiles, "bypass-all", "A", []string{}, "Like --bypass, entries treated as the 'ALL' family.")
	rootCmd.Flags().StringSliceVarP(&bypassRegFiles, "bypass-reg", "R", []string{}, "Like --bypass, entries treated as the 'REG' family.")
	rootCmd.Flags().StringSliceVarP(&bypassRzdFiles, "bypass-rzd", "Z", []string{}, "Like --bypass, entries treated as the 'RZD' family.")

	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "The output file to write surviving subjects to. If not specified, prints to stdout.")

	rootCmd.Flags().BoolVarP(&allowComplements, "allow-complements", "c", false, `Whether to treat a subject and its "www." form as complements of each other.
A complement subject is www.example.com when the subject is example.com - and vice-versa.`)

	rootCmd.Flags().BoolVar(&multithread, "multithread", false, "Process the source file with a worker pool instead of a single goroutine.")
	rootCmd.Flags().IntVar(&maxThreads, "max-threads", 0, "Maximum worker count when --multithread is set. Defaults to max(1, NumCPU-2).")
	rootCmd.Flags().BoolVar(&offlineTLDs, "offline-tlds", false, "Use only the bundled TLD snapshot for RZD rules instead of fetching the live IANA/public-suffix lists.")

	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "error", "The log level to use. Can be one of: debug, info, warn, error.")
}

// processRuleFile resolves targetFile (a local path or a URL), iterates
// its lines, and either adds or removes (bypass) each as a rule, flagged
// with flag when one applies.
func processRuleFile(targetFile string, flag hostsieve.Flag, hasFlag bool, ruler hostsieve.Ruler, logger *slog.Logger, bypass bool) error {
	logger.Debug("resolving rule file", slog.String("file", targetFile))

	path, cleanup, err := fetch.Resolve(targetFile)
	if err != nil {
		return fmt.Errorf("resolving rule file %s: %w", targetFile, err)
	}

	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("failed to clean up fetched rule file", slog.String("file", targetFile), slog.String("error", err.Error()))
		}
	}()

	apply := func(line string) {
		switch {
		case !bypass && hasFlag:
			ruler.AddRuleWithFlag(line, flag)
		case !bypass && !hasFlag:
			ruler.AddRule(line)
		case bypass && hasFlag:
			ruler.RemoveRuleWithFlag(line, flag)
		default:
			ruler.RemoveRule(line)
		}
	}

	if err := helpers.IterFile(path, apply); err != nil {
		return fmt.Errorf("reading rule file %s: %w", targetFile, err)
	}

	return nil
}

func loadRuleFiles(ruler hostsieve.Ruler, logger *slog.Logger) error {
	type ruleFileSet struct {
		files   []string
		flag    hostsieve.Flag
		hasFlag bool
		bypass  bool
	}

	sets := []ruleFileSet{
		{whitelistFiles, "", false, false},
		{whitelistAllFiles, hostsieve.FlagAll, true, false},
		{whitelistRegFiles, hostsieve.FlagReg, true, false},
		{whitelistRzdFiles, hostsieve.FlagRzd, true, false},
		{bypassFiles, "", false, true},
		{bypassAllFiles, hostsieve.FlagAll, true, true},
		{bypassRegFiles, hostsieve.FlagReg, true, true},
		{bypassRzdFiles, hostsieve.FlagRzd, true, true},
	}

	for _, set := range sets {
		for _, file := range set.files {
			if err := processRuleFile(file, set.flag, set.hasFlag, ruler, logger, set.bypass); err != nil {
				return err
			}
		}
	}

	return nil
}

func workerCount() int {
	if maxThreads > 0 {
		return maxThreads
	}

	if n := runtime.NumCPU() - 2; n > 0 {
		return n
	}

	return 1
}

func normalizeLine(line string) string {
	return normalize.FoldCase(normalize.IDNA(normalize.Netloc(line)))
}

func runCleanup(logger *slog.Logger) error {
	var provider tld.Provider
	if offlineTLDs {
		provider = tld.NewBundled()
	} else {
		provider = tld.NewRemote(logger)
	}

	ruler := hostsieve.NewRuler(allowComplements, provider, logger)

	if err := loadRuleFiles(ruler, logger); err != nil {
		return err
	}

	dirName, err := os.MkdirTemp("", "hostsieve")
	if err != nil {
		return fmt.Errorf("creating temporary directory: %w", err)
	}

	defer func() {
		if err := os.RemoveAll(dirName); err != nil {
			logger.Error("removing temporary directory", slog.String("dir", dirName), slog.String("error", err.Error()))
		}
	}()

	sourcePath, cleanupSource, err := fetch.Resolve(sourceFile)
	if err != nil {
		return fmt.Errorf("resolving source file %s: %w", sourceFile, err)
	}
	defer func() {
		if err := cleanupSource(); err != nil {
			logger.Warn("failed to clean up fetched source file", slog.String("file", sourceFile), slog.String("error", err.Error()))
		}
	}()

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", pipeline.ErrSourceNotReadable, sourcePath, err)
	}
	defer src.Close()

	sinkPath := filepath.Join(dirName, "output.list")

	sinkFile, err := os.Create(sinkPath)
	if err != nil {
		return fmt.Errorf("creating temporary sink: %w", err)
	}
	defer sinkFile.Close()

	sinks := pipeline.Sinks{Sink: sinkFile}
	if outputFile == "" {
		sinks.Stdout = os.Stdout
	}

	ctx := context.Background()

	var stats pipeline.Stats

	if multithread {
		stats, err = pipeline.Parallel(ctx, src, ruler, normalizeLine, sinks, workerCount(), logger)
	} else {
		stats, err = pipeline.Sequential(ctx, src, ruler, normalizeLine, sinks, logger)
	}

	if err != nil {
		return fmt.Errorf("filtering %s: %w", sourceFile, err)
	}

	logger.Info("cleanup finished",
		slog.Int("read", stats.Read),
		slog.Int("survived", stats.Survived),
		slog.Int("whitelisted", stats.Whitelist),
	)

	if outputFile != "" {
		if err := sinkFile.Close(); err != nil {
			return fmt.Errorf("closing temporary sink: %w", err)
		}

		// The temporary sink and outputFile are not guaranteed to share a
		// filesystem, so a straight os.Rename is not always possible.
		if err := helpers.CopyFile(sinkPath, outputFile); err != nil {
			return fmt.Errorf("%w: copying %s to %s: %w", pipeline.ErrSinkWriteFailed, sinkPath, outputFile, err)
		}
	}

	return nil
}
