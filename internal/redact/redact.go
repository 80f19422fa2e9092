package redact

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder replaces every detected secret value.
const Placeholder = "[REDACTED]"

// Rule is a single detection rule.
type Rule struct {
	// Label is written into the replacement (label="[REDACTED]").
	Label string `json:"label" yaml:"label"`

	// Keyword is a regular expression fragment for the assignment target,
	// e.g. "api[_-]key". It is matched case-insensitively.
	Keyword string `json:"keyword" yaml:"keyword"`
}

// DefaultRules is the built-in rule table, applied in this order.
var DefaultRules = []Rule{
	{Label: "password", Keyword: "password"},
	{Label: "api_key", Keyword: "api[_-]key"},
	{Label: "token", Keyword: "token"},
	{Label: "secret", Keyword: "secret"},
	{Label: "credentials", Keyword: "credentials"},
}

// Finding records one redacted assignment. The secret value itself is never
// kept.
type Finding struct {
	Label string `json:"label"`
	Line  int    `json:"line"`
}

// Result is the outcome of scanning one text.
type Result struct {
	Original string    `json:"-"`
	Redacted string    `json:"-"`
	Found    bool      `json:"found"`
	Findings []Finding `json:"findings"`
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// Scanner applies a fixed, ordered rule table. A Scanner is immutable and safe
// for concurrent use.
type Scanner struct {
	rules []compiledRule
}

// New compiles rules into a Scanner. Rule order is preserved.
func New(rules ...Rule) (*Scanner, error) {
	s := &Scanner{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		if strings.TrimSpace(r.Label) == "" {
			return nil, fmt.Errorf("redact: rule %d: label is required", i)
		}
		if strings.TrimSpace(r.Keyword) == "" {
			return nil, fmt.Errorf("redact: rule %q: keyword is required", r.Label)
		}
		re, err := compile(r.Keyword)
		if err != nil {
			return nil, fmt.Errorf("redact: rule %q: %w", r.Label, err)
		}
		s.rules = append(s.rules, compiledRule{Rule: r, re: re})
	}
	return s, nil
}

// Default returns a Scanner over DefaultRules.
func Default() *Scanner {
	s, err := New(DefaultRules...)
	if err != nil {
		panic(err)
	}
	return s
}

// WithDefaults returns a Scanner over DefaultRules followed by extra.
func WithDefaults(extra ...Rule) (*Scanner, error) {
	rules := make([]Rule, 0, len(DefaultRules)+len(extra))
	rules = append(rules, DefaultRules...)
	rules = append(rules, extra...)
	return New(rules...)
}

// compile wraps keyword into the assignment shape. Group 1 is the quoted value.
func compile(keyword string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)(?:` + keyword + `)\s*=\s*['"]([^'"]+)['"]`)
}

// Labels returns the rule labels in evaluation order.
func (s *Scanner) Labels() []string {
	labels := make([]string, len(s.rules))
	for i, r := range s.rules {
		labels[i] = r.Label
	}
	return labels
}

// Scan detects and redacts secret assignments in text. Rules run in table
// order over the progressively redacted text.
func (s *Scanner) Scan(text string) Result {
	result := Result{Original: text, Findings: []Finding{}}
	working := text

	for _, r := range s.rules {
		working = r.apply(working, &result.Findings)
	}

	result.Redacted = working
	result.Found = len(result.Findings) > 0
	return result
}

// apply rewrites every non-overlapping match of r in text.
func (r compiledRule) apply(text string, findings *[]Finding) string {
	matches := r.re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		value := text[m[2]:m[3]]
		if value == Placeholder {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(r.replacement())
		*findings = append(*findings, Finding{
			Label: r.Label,
			Line:  strings.Count(text[:start], "\n") + 1,
		})
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func (r compiledRule) replacement() string {
	return r.Label + `="` + Placeholder + `"`
}
