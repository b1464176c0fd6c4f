package validation

import "regexp"

// threatPattern pairs a dangerous-content regexp with the label recorded for
// audit logging when it matches.
type threatPattern struct {
	label   string
	pattern *regexp.Regexp
}

// dangerousPatterns is the ordered screen every non-empty field value passes
// through. A match produces a single generic validation error; the labels
// are kept internal and surfaced only through Result.Threats.
var dangerousPatterns = []threatPattern{
	{"script_tag", regexp.MustCompile(`(?i)<\s*/?\s*script\b`)},
	{"javascript_uri", regexp.MustCompile(`(?i)javascript\s*:`)},
	{"event_handler", regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)},
	{"embed_tag", regexp.MustCompile(`(?i)<\s*(iframe|object|embed)\b`)},
	{"sql_keywords", regexp.MustCompile(`(?i)\b(select\s+[\w*,\s]+\s+from|insert\s+into|update\s+\w+\s+set|delete\s+from|drop\s+(table|database)|union\s+(all\s+)?select)\b`)},
	{"shell_metacharacters", regexp.MustCompile("[`]|\\$\\(|&&|\\|\\||;\\s*(rm|cat|curl|wget|sh|bash|nc)\\b")},
	{"path_traversal", regexp.MustCompile(`\.\.[/\\]`)},
}

// suspiciousTerms matches words that warrant a review warning without
// failing validation.
var suspiciousTerms = regexp.MustCompile(`(?i)\b(password|admin|token|hack|secret|credential)s?\b`)

// screen tests value against the dangerous patterns in order and returns the
// label of every pattern that matched.
func (e *Engine) screen(value string) []string {
	var labels []string
	for _, tp := range e.dangerous {
		if tp.pattern.MatchString(value) {
			labels = append(labels, tp.label)
		}
	}
	return labels
}
