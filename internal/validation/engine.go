// Package validation implements the rule-based field validation engine used
// by the onboarding and profile flows. It applies declarative per-field rules,
// screens input for dangerous content, and produces sanitized values suitable
// for storage.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// maxSanitizedLength caps the default sanitizer output.
const maxSanitizedLength = 1000

// Rule describes the constraints applied to a single field.
type Rule struct {
	// Required rejects empty or whitespace-only input
	Required bool

	// MinLength and MaxLength bound the trimmed input length in characters.
	// A zero value disables the corresponding check.
	MinLength int
	MaxLength int

	// Pattern is matched against the trimmed input when set
	Pattern *regexp.Regexp

	// PatternName selects the human-readable message used when Pattern
	// does not match (username, email, name, age, github_handle, url)
	PatternName string

	// Custom runs after the built-in checks, regardless of earlier
	// failures. Returning (false, msg) records msg as the error;
	// (false, "") records a generic one.
	Custom func(value string) (bool, string)

	// Sanitize overrides the default sanitizer for this field
	Sanitize func(value string) string
}

// Schema maps field names to their rules.
type Schema map[string]Rule

// Result is the outcome of validating a single field.
type Result struct {
	IsValid        bool
	Errors         []string
	Warnings       []string
	SanitizedValue string

	// threats holds the matched dangerous-pattern labels. They feed audit
	// logging only and are never serialized to clients.
	threats []string
}

// Threats returns the dangerous-pattern labels matched during validation.
func (r Result) Threats() []string {
	out := make([]string, len(r.threats))
	copy(out, r.threats)
	return out
}

// SchemaResult aggregates per-field validation outcomes.
type SchemaResult struct {
	IsValid   bool
	Errors    map[string][]string
	Warnings  map[string][]string
	Sanitized map[string]string
}

// Engine validates field values against declarative rules. Construct one
// with NewEngine and inject it wherever validation is needed.
type Engine struct {
	dangerous  []threatPattern
	suspicious *regexp.Regexp
}

// NewEngine returns an engine configured with the standard dangerous-content
// and suspicious-term screens.
func NewEngine() *Engine {
	return &Engine{
		dangerous:  dangerousPatterns,
		suspicious: suspiciousTerms,
	}
}

// ValidateField checks value against rule. Only the empty-input cases stop
// the pipeline early; every other check appends its errors and continues so
// the caller sees all problems at once. The custom validator and the
// sanitizer run even when earlier checks failed.
func (e *Engine) ValidateField(value, fieldName string, rule Rule) Result {
	trimmed := strings.TrimSpace(value)
	result := Result{}

	// Required fields reject empty input with a single error
	if rule.Required && trimmed == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("%s is required", fieldName))
		return result
	}

	// Optional empty fields skip every remaining check
	if trimmed == "" {
		result.IsValid = true
		return result
	}

	length := len([]rune(trimmed))
	if rule.MinLength > 0 && length < rule.MinLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s must be at least %d characters", fieldName, rule.MinLength))
	}
	if rule.MaxLength > 0 && length > rule.MaxLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s must be at most %d characters", fieldName, rule.MaxLength))
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(trimmed) {
		result.Errors = append(result.Errors, patternMessage(rule.PatternName))
	}

	// Dangerous content produces one generic error; the labels stay
	// internal so responses never reveal what was detected
	if labels := e.screen(trimmed); len(labels) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("%s contains invalid characters", fieldName))
		result.threats = labels
	}

	if rule.Custom != nil {
		if ok, msg := rule.Custom(trimmed); !ok {
			if msg == "" {
				msg = fmt.Sprintf("%s is invalid", fieldName)
			}
			result.Errors = append(result.Errors, msg)
		}
	}

	if rule.Sanitize != nil {
		result.SanitizedValue = rule.Sanitize(trimmed)
	} else {
		result.SanitizedValue = DefaultSanitize(trimmed)
	}

	// Suspicious terms warn without failing validation
	if e.suspicious.MatchString(trimmed) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s contains terms that may be flagged for review", fieldName))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// ValidateSchema applies schema to data field by field. Missing fields are
// validated as empty strings. Sanitized values are collected even for fields
// that failed validation.
func (e *Engine) ValidateSchema(data map[string]string, schema Schema) SchemaResult {
	out := SchemaResult{
		IsValid:   true,
		Errors:    make(map[string][]string),
		Warnings:  make(map[string][]string),
		Sanitized: make(map[string]string),
	}

	for field, rule := range schema {
		res := e.ValidateField(data[field], field, rule)
		if !res.IsValid {
			out.IsValid = false
			out.Errors[field] = res.Errors
		}
		if len(res.Warnings) > 0 {
			out.Warnings[field] = res.Warnings
		}
		out.Sanitized[field] = res.SanitizedValue
	}

	return out
}

// whitespaceRun matches consecutive whitespace for collapsing.
var whitespaceRun = regexp.MustCompile(`\s+`)

// DefaultSanitize trims the value, collapses whitespace runs to single
// spaces, strips angle brackets, and caps the result at 1000 characters.
func DefaultSanitize(value string) string {
	s := strings.TrimSpace(value)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")

	runes := []rune(s)
	if len(runes) > maxSanitizedLength {
		s = string(runes[:maxSanitizedLength])
	}
	return s
}

// patternMessage returns the user-facing message for a named pattern failure.
func patternMessage(name string) string {
	switch name {
	case "username":
		return "Username may only contain lowercase letters, numbers, hyphens, and underscores"
	case "email":
		return "Must be a valid email address"
	case "name":
		return "Names may only contain letters, spaces, hyphens, and apostrophes"
	case "age":
		return "Must be a valid age"
	case "github_handle":
		return "Must be a valid GitHub handle"
	case "url":
		return "Must be a valid URL"
	default:
		return "Invalid format"
	}
}
