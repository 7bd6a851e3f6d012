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
	"fmt"
	"log/slog"
	"strings"
)

// Flag is the rule-family marker a caller can prefix a bare rule line
// with via AddRuleWithFlag/RemoveRuleWithFlag (e.g. when an entire file
// should be treated as all-ALL, all-REG, or all-RZD rules).
type Flag string

const (
	// FlagAll selects the ends-with ("ALL") rule family.
	FlagAll Flag = "ALL@"
	// FlagReg selects the regex ("REG") rule family.
	FlagReg Flag = "REG@"
	// FlagRzd selects the TLD-expansion ("RZD") rule family.
	FlagRzd Flag = "RZD@"
)

// Separators a flag prefix may be followed by, beyond a plain space, so
// rule files using a different field separator still classify correctly.
var separators = []string{" ", ":", "#", ",", "@"}

func flagPrefixes(name string) []string {
	prefixes := make([]string, 0, len(separators))

	for _, sep := range separators {
		prefixes = append(prefixes, name+sep)
	}

	return prefixes
}

var (
	allPrefixes = flagPrefixes("ALL")
	regPrefixes = flagPrefixes("REG")
	rzdPrefixes = append(flagPrefixes("RZD"), flagPrefixes("RZDB")...)
)

func hasAnyPrefix(s string, prefixes []string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))

	for _, p := range prefixes {
		lp := strings.ToLower(p)
		if strings.HasPrefix(lower, lp) {
			return s[len(p):], true
		}
	}

	return "", false
}

// normalizeLine trims s and discards it (returning ok=false) if it is
// empty or a comment.
func normalizeLine(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)

	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}

	return trimmed, true
}

// AddRule classifies line (ALL/REG/RZD/plain/empty) and invokes the
// matching Ruler mutator. It returns false for empty or comment lines,
// true otherwise — it never fails to classify: anything that isn't
// ALL/REG/RZD is treated as a plain Exact rule.
func (r *Ruler) AddRule(line string) bool {
	rule, ok := normalizeLine(line)
	if !ok {
		return false
	}

	if record, ok := hasAnyPrefix(rule, allPrefixes); ok {
		r.addAllRule(strings.TrimSpace(record))
		return true
	}

	if record, ok := hasAnyPrefix(rule, regPrefixes); ok {
		if err := r.pushRegex(strings.TrimSpace(record)); err != nil {
			r.logger.Warn("regex rule rejected", slog.String("rule", rule), slog.String("error", err.Error()))
		}

		return true
	}

	if record, ok := hasAnyPrefix(rule, rzdPrefixes); ok {
		r.addRzdRule(strings.TrimSpace(record))
		return true
	}

	r.addPlainRule(rule)

	return true
}

// AddRuleWithFlag parses rule as if it were prefixed with flag, useful
// when an entire file of bare subjects should be treated as one rule
// family (the CLI's --all/--reg/--rzd file families and their --bypass-*
// counterparts).
func (r *Ruler) AddRuleWithFlag(rule string, flag Flag) bool {
	return r.AddRule(fmt.Sprintf("%s%s", flag, rule))
}

// RemoveRule mirrors AddRule with the pull variants.
func (r *Ruler) RemoveRule(line string) bool {
	rule, ok := normalizeLine(line)
	if !ok {
		return false
	}

	if record, ok := hasAnyPrefix(rule, allPrefixes); ok {
		r.removeAllRule(strings.TrimSpace(record))
		return true
	}

	if record, ok := hasAnyPrefix(rule, regPrefixes); ok {
		r.pullRegex(strings.TrimSpace(record))
		return true
	}

	if record, ok := hasAnyPrefix(rule, rzdPrefixes); ok {
		r.removeRzdRule(strings.TrimSpace(record))
		return true
	}

	r.removePlainRule(rule)

	return true
}

// RemoveRuleWithFlag mirrors AddRuleWithFlag.
func (r *Ruler) RemoveRuleWithFlag(rule string, flag Flag) bool {
	return r.RemoveRule(fmt.Sprintf("%s%s", flag, rule))
}

// addAllRule implements the "ALL" suffix family. record is the trimmed
// remainder after the ALL prefix.
func (r *Ruler) addAllRule(record string) {
	if !strings.HasPrefix(record, ".") {
		r.addAllRule("." + record)
		return
	}

	if strings.Count(record, ".") > 1 {
		bare := strings.TrimPrefix(record, ".")

		if r.complement {
			r.pushExact("www." + bare)
		}

		r.pushExact(bare)
	}

	r.pushEnds(record)
}

func (r *Ruler) removeAllRule(record string) {
	if !strings.HasPrefix(record, ".") {
		r.removeAllRule("." + record)
		return
	}

	if strings.Count(record, ".") > 1 {
		bare := strings.TrimPrefix(record, ".")

		if r.complement {
			r.pullExact("www." + bare)
		}

		r.pullExact(bare)
	}

	r.pullEnds(record)
}

// addRzdRule implements the "RZD"/"RZDB" TLD-expansion family.
func (r *Ruler) addRzdRule(record string) {
	if r.complement {
		record = strings.TrimPrefix(record, "www.")
	}

	for _, ext := range r.extensions() {
		r.pushPresent(record + "." + ext)

		if r.complement {
			r.pushPresent("www." + record + "." + ext)
		}
	}
}

func (r *Ruler) removeRzdRule(record string) {
	if r.complement {
		record = strings.TrimPrefix(record, "www.")
	}

	for _, ext := range r.extensions() {
		r.pullPresent(record + "." + ext)

		if r.complement {
			r.pullPresent("www." + record + "." + ext)
		}
	}
}

// addPlainRule implements the bare Exact rule (no recognized prefix).
func (r *Ruler) addPlainRule(rule string) {
	if r.complement {
		if strings.HasPrefix(rule, "www.") {
			r.pushExact(strings.TrimPrefix(rule, "www."))
		} else {
			r.pushExact("www." + rule)
		}
	}

	r.pushExact(rule)
}

func (r *Ruler) removePlainRule(rule string) {
	if r.complement {
		if strings.HasPrefix(rule, "www.") {
			r.pullExact(strings.TrimPrefix(rule, "www."))
		} else {
			r.pullExact("www." + rule)
		}
	}

	r.pullExact(rule)
}
