package interview

import (
	"regexp"
	"sort"
)

// Lexicon rewrites commonly mis-heard technical terms in recognized speech
// ("sequel" -> "SQL"). Matching is case-insensitive on whole words; longer
// phrases are applied first so "my sequel" wins over "sequel".
type Lexicon struct {
	rules []lexRule
}

type lexRule struct {
	re   *regexp.Regexp
	repl string
}

func NewLexicon(terms map[string]string) *Lexicon {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	l := &Lexicon{rules: make([]lexRule, 0, len(keys))}
	for _, k := range keys {
		l.rules = append(l.rules, lexRule{
			re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`),
			repl: terms[k],
		})
	}
	return l
}

func (l *Lexicon) Apply(s string) string {
	for _, r := range l.rules {
		s = r.re.ReplaceAllLiteralString(s, r.repl)
	}
	return s
}

// Canonical returns the corrected forms, usable as recognition phrase hints.
func (l *Lexicon) Canonical() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(l.rules))
	for _, r := range l.rules {
		if _, ok := seen[r.repl]; ok {
			continue
		}
		seen[r.repl] = struct{}{}
		out = append(out, r.repl)
	}
	return out
}

// DefaultTerms is the stock correction table for software interviews.
func DefaultTerms() map[string]string {
	return map[string]string{
		"javascript":  "JavaScript",
		"python":      "Python",
		"java":        "Java",
		"react":       "React",
		"node js":     "Node.js",
		"nodejs":      "Node.js",
		"sequel":      "SQL",
		"my sequel":   "MySQL",
		"post gress":  "PostgreSQL",
		"mongo db":    "MongoDB",
		"docker":      "Docker",
		"kubernetes":  "Kubernetes",
		"angler":      "Angular",
		"view js":     "Vue.js",
		"lambda":      "Lambda",
		"c sharp":     "C#",
		"see sharp":   "C#",
		"rest":        "REST",
		"api":         "API",
		"apis":        "APIs",
		"json":        "JSON",
		"html":        "HTML",
		"css":         "CSS",
		"aws":         "AWS",
		"azure":       "Azure",
		"linux":       "Linux",
		"unix":        "Unix",
		"github":      "GitHub",
		"git":         "Git",
		"devops":      "DevOps",
		"ci cd":       "CI/CD",
		"front end":   "frontend",
		"back end":    "backend",
		"type script": "TypeScript",
	}
}

func DefaultLexicon() *Lexicon {
	return NewLexicon(DefaultTerms())
}
