// Package assistant answers compliance questions. A fixed, ordered table of
// keyword rules is consulted first; when nothing matches, the question is
// handed to a configurable Fallback (external model, static text or a plain
// apology).
//
// The package does no HTTP and keeps no conversation state: sessions and
// transcripts live in the services layer.
package assistant

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// ErrInvalidRules is wrapped by every rule table validation failure.
var ErrInvalidRules = errors.New("invalid assistant rules")

// Rule is one canned answer. Every keyword must occur in the question
// (case-insensitively); a keyword written as "a|b" is satisfied by either
// alternative.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`
}

type compiledRule struct {
	Rule
	groups [][]string // folded alternatives per keyword
}

// RuleSet is an immutable, ordered rule table. Safe for concurrent use.
type RuleSet struct {
	rules []compiledRule
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *RuleSet {
	rs, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("assistant: embedded rules: %v", err))
	}
	return rs
}

// LoadRules reads a rule table from a YAML file. An empty path yields the
// built-in table.
func LoadRules(path string) (*RuleSet, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %q: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule table.
func ParseRules(data []byte) (*RuleSet, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return NewRuleSet(f.Rules)
}

// NewRuleSet validates rules and compiles them in the given order.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrInvalidRules)
	}
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(rules))
	out := make([]compiledRule, 0, len(rules))

	for i, r := range rules {
		name := strings.TrimSpace(r.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("%w: rule #%d has no name", ErrInvalidRules, i+1)
		case len(r.Keywords) == 0:
			return nil, fmt.Errorf("%w: rule %q has no keywords", ErrInvalidRules, name)
		case strings.TrimSpace(r.Response) == "":
			return nil, fmt.Errorf("%w: rule %q has an empty response", ErrInvalidRules, name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate rule name %q", ErrInvalidRules, name)
		}
		seen[name] = struct{}{}

		groups := make([][]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			alts := lo.FilterMap(strings.Split(kw, "|"), func(a string, _ int) (string, bool) {
				a = strings.TrimSpace(a)
				return fold.String(a), a != ""
			})
			if len(alts) == 0 {
				return nil, fmt.Errorf("%w: rule %q has a blank keyword", ErrInvalidRules, name)
			}
			groups = append(groups, alts)
		}
		r.Name = name
		out = append(out, compiledRule{Rule: r, groups: groups})
	}
	return &RuleSet{rules: out}, nil
}

// Match returns the first rule whose keywords all occur in text.
func (s *RuleSet) Match(text string) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	folded := cases.Fold().String(text)
	for _, r := range s.rules {
		hit := lo.EveryBy(r.groups, func(alts []string) bool {
			return lo.SomeBy(alts, func(a string) bool { return strings.Contains(folded, a) })
		})
		if hit {
			return r.Rule, true
		}
	}
	return Rule{}, false
}

// Rules returns a copy of the table in match order.
func (s *RuleSet) Rules() []Rule {
	return lo.Map(s.rules, func(r compiledRule, _ int) Rule { return r.Rule })
}

// Len reports the number of rules.
func (s *RuleSet) Len() int { return len(s.rules) }
