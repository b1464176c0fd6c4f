// Package errclass turns internal errors into user-safe classifications.
// Every error crossing the HTTP boundary goes through the Classifier, which
// derives a category, severity, user message, retry hint, and support code,
// and keeps a capped in-memory record of recent classifications. Technical
// error text never reaches the client.
package errclass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/auth"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// Category groups errors by their origin.
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryValidation     Category = "validation"
	CategoryNetwork        Category = "network"
	CategoryDatabase       Category = "database"
	CategoryFileUpload     Category = "file_upload"
	CategorySystem         Category = "system"
	CategoryUnknown        Category = "unknown"
)

// Severity grades how urgently a classified error needs attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Classification is the user-facing result of handling an error.
type Classification struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	UserMessage string   `json:"user_message"`
	ShouldRetry bool     `json:"should_retry"`
	Code        string   `json:"code"`

	// TechMessage and Status stay server-side: the technical text feeds
	// logs and the status feeds the HTTP response code.
	TechMessage string `json:"-"`
	Status      int    `json:"-"`
}

// ErrorRecord is one entry in the classifier's recent-error ring.
type ErrorRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Category    Category  `json:"category"`
	Severity    Severity  `json:"severity"`
	UserMessage string    `json:"user_message"`
	TechMessage string    `json:"tech_message"`
	Operation   string    `json:"operation"`
	RequestID   string    `json:"request_id,omitempty"`
	Code        string    `json:"code"`
}

// categoryKeywords maps lowercased message fragments to categories. Groups
// are checked in this order and the first match wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryAuthentication, []string{
		"authentication", "unauthenticated", "unauthorized", "login",
		"sign-in", "signin", "token", "credential", "session", "oauth", "jwt",
	}},
	{CategoryAuthorization, []string{
		"authorization", "forbidden", "permission", "access denied",
		"not allowed", "role",
	}},
	{CategoryValidation, []string{
		"validation", "invalid", "required", "must be", "too short",
		"too long", "format", "characters",
	}},
	{CategoryNetwork, []string{
		"network", "timeout", "unreachable", "dns", "dial tcp",
		"connection refused", "connection reset", "tls",
	}},
	{CategoryDatabase, []string{
		"database", "sql", "query", "constraint", "duplicate key",
		"no rows", "postgres", "pq:", "transaction", "deadlock",
	}},
	{CategoryFileUpload, []string{
		"upload", "file size", "file type", "multipart", "image", "avatar",
	}},
	{CategorySystem, []string{
		"internal server", "internal error", "panic", "runtime",
		"out of memory", "service unavailable",
	}},
}

// Classifier classifies errors and remembers the most recent ones. Critical
// classifications escalate through the monitoring facility.
type Classifier struct {
	monitor *monitor.Monitor

	mu     sync.Mutex
	recent []ErrorRecord
	max    int
}

// New creates a Classifier. maxRecent bounds the in-memory record ring; zero
// or negative falls back to the default capacity.
func New(mon *monitor.Monitor, maxRecent int) *Classifier {
	if maxRecent <= 0 {
		maxRecent = constants.MaxRecentErrorRecords
	}
	return &Classifier{
		monitor: mon,
		max:     maxRecent,
	}
}

// Handle classifies err in the context of the named operation. An optional
// custom message overrides the derived user message. The classification is
// recorded in the recent-error ring, and critical errors are escalated to
// the monitor.
func (c *Classifier) Handle(ctx context.Context, err error, operation string, customMessage ...string) Classification {
	techMsg, status := extractMessage(err)
	lower := strings.ToLower(techMsg)

	category := classify(lower, status)
	severity := deriveSeverity(category, lower, status)

	message := userMessage(category, lower)
	if len(customMessage) > 0 && customMessage[0] != "" {
		message = customMessage[0]
	}

	invalidCreds := errors.Is(err, utils.ErrInvalidCredentials) ||
		strings.Contains(lower, "invalid credentials")

	classification := Classification{
		Category:    category,
		Severity:    severity,
		UserMessage: message,
		ShouldRetry: retryable(category, invalidCreds),
		Code:        errorCode(category, severity, time.Now()),
		TechMessage: techMsg,
		Status:      status,
	}

	record := ErrorRecord{
		Timestamp:   time.Now(),
		Category:    category,
		Severity:    severity,
		UserMessage: message,
		TechMessage: techMsg,
		Operation:   operation,
		RequestID:   requestIDFrom(ctx),
		Code:        classification.Code,
	}
	c.remember(record)

	log.Debug().
		Str("category", string(category)).
		Str("severity", string(severity)).
		Str("code", classification.Code).
		Str("operation", operation).
		Msg("Classified error")

	if severity == SeverityCritical && c.monitor != nil {
		c.monitor.LogError(monitor.LevelCritical, techMsg, err, map[string]any{
			"operation": operation,
			"category":  string(category),
			"code":      classification.Code,
		})
	}

	return classification
}

// Recent returns a copy of the recorded classifications, oldest first.
func (c *Classifier) Recent() []ErrorRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ErrorRecord, len(c.recent))
	copy(out, c.recent)
	return out
}

// HTTPStatus maps a classification onto an HTTP status code. A status carried
// from the source error wins; otherwise the category decides.
func HTTPStatus(c Classification) int {
	if c.Status != 0 {
		return c.Status
	}

	switch c.Category {
	case CategoryAuthentication:
		return http.StatusUnauthorized
	case CategoryAuthorization:
		return http.StatusForbidden
	case CategoryValidation, CategoryFileUpload:
		return http.StatusBadRequest
	case CategoryNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// remember appends a record to the ring, evicting the oldest past capacity.
func (c *Classifier) remember(record ErrorRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recent = append(c.recent, record)
	if len(c.recent) > c.max {
		c.recent = c.recent[len(c.recent)-c.max:]
	}
}

// extractMessage pulls the most specific technical text out of an error,
// plus the HTTP status when the error carries one.
func extractMessage(err error) (string, int) {
	if err == nil {
		return "Unknown error", 0
	}

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		switch {
		case appErr.DevInfo != "":
			return appErr.DevInfo, status
		case appErr.Message != "":
			return appErr.Message, status
		case appErr.Err != nil:
			return appErr.Err.Error(), status
		default:
			return "Unknown error", status
		}
	}

	if msg := err.Error(); msg != "" {
		return msg, 0
	}
	return "Unknown error", 0
}

// classify picks the category for a lowercased message. Status hints for 401
// and 403 are decisive; a 5xx status is only a fallback after the keyword
// groups so that, for example, a database failure with status 500 still
// classifies as database.
func classify(msg string, status int) Category {
	switch status {
	case http.StatusUnauthorized:
		return CategoryAuthentication
	case http.StatusForbidden:
		return CategoryAuthorization
	}

	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(msg, kw) {
				return group.category
			}
		}
	}

	if status >= 500 {
		return CategorySystem
	}
	return CategoryUnknown
}

// deriveSeverity grades a classified error. Rules are checked in order.
func deriveSeverity(category Category, msg string, status int) Severity {
	switch {
	case category == CategoryAuthentication && strings.Contains(msg, "missing"):
		return SeverityCritical
	case category == CategoryDatabase && status == http.StatusInternalServerError:
		return SeverityCritical
	case category == CategoryAuthorization || category == CategorySystem || status >= 500:
		return SeverityHigh
	case category == CategoryAuthentication || category == CategoryDatabase || category == CategoryNetwork:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// userMessage returns the fixed user-safe message for a category. Validation
// and upload errors get a more specific message when the technical text
// names the field or the problem.
func userMessage(category Category, msg string) string {
	switch category {
	case CategoryAuthentication:
		return "Please sign in again to continue."
	case CategoryAuthorization:
		return "You don't have permission to do that."
	case CategoryValidation:
		switch {
		case strings.Contains(msg, "username"):
			return "Please check your username and try again."
		case strings.Contains(msg, "email"):
			return "Please check your email address and try again."
		case strings.Contains(msg, "age"):
			return "Please enter a valid age."
		default:
			return "Please check your input and try again."
		}
	case CategoryNetwork:
		return "We're having trouble connecting. Please check your connection and try again."
	case CategoryDatabase:
		return "We couldn't save your changes. Please try again in a moment."
	case CategoryFileUpload:
		switch {
		case strings.Contains(msg, "size") || strings.Contains(msg, "large"):
			return "That file is too large. Please choose an image under 5 MB."
		case strings.Contains(msg, "type") || strings.Contains(msg, "format"):
			return "That file type isn't supported. Please upload a JPEG or PNG image."
		default:
			return "We couldn't upload your file. Please try again."
		}
	case CategorySystem:
		return "Something went wrong on our end. Please try again later."
	default:
		return "Something unexpected happened. Please try again."
	}
}

// retryable decides whether the client may retry. Validation and
// authorization failures never resolve on retry, and neither do rejected
// credentials.
func retryable(category Category, invalidCredentials bool) bool {
	switch category {
	case CategoryValidation, CategoryAuthorization:
		return false
	case CategoryAuthentication:
		return !invalidCredentials
	}
	return true
}

// errorCode builds a support-correlation code. The trailing component is the
// classification time in base36 milliseconds, so codes sort roughly by time
// but are not guaranteed unique.
func errorCode(category Category, severity Severity, at time.Time) string {
	stamp := strconv.FormatInt(at.UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("%s_%s_%s", category, severity, stamp))
}

// requestIDFrom reads the request id planted by the middleware, if any.
func requestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(auth.RequestIDContextKey).(string); ok {
		return id
	}
	return ""
}
