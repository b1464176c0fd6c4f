// Package monitor provides the application's monitoring facility: leveled
// event logging, security events, and performance measurements, persisted to
// a capped local store and surfaced through the admin endpoints.
//
// Console verbosity follows the environment. Development logs everything,
// production stays quiet except for critical entries. Persistence is
// unaffected by the environment.
package monitor

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/config"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
)

// Level is the severity of a plain log entry.
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// SecurityEventType identifies the class of a recorded security event.
type SecurityEventType string

const (
	SecurityAuthentication     SecurityEventType = "authentication"
	SecurityAuthorization      SecurityEventType = "authorization"
	SecurityDataAccess         SecurityEventType = "data_access"
	SecurityPrivacyChange      SecurityEventType = "privacy_change"
	SecuritySuspiciousActivity SecurityEventType = "suspicious_activity"
)

// Severity grades a security event.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// EntryKind discriminates the persisted entry types.
type EntryKind string

const (
	KindLog         EntryKind = "log"
	KindSecurity    EntryKind = "security"
	KindPerformance EntryKind = "performance"
)

// Entry is a single persisted monitoring record.
type Entry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Kind       EntryKind         `json:"kind"`
	Level      Level             `json:"level,omitempty"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	EventType  SecurityEventType `json:"event_type,omitempty"`
	Severity   Severity          `json:"severity,omitempty"`
	Operation  string            `json:"operation,omitempty"`
	DurationMs int64             `json:"duration_ms,omitempty"`
	Slow       bool              `json:"slow,omitempty"`
	Fields     map[string]any    `json:"fields,omitempty"`
}

// Stats summarizes monitoring activity over the trailing hour.
type Stats struct {
	RecentErrors            int    `json:"recent_errors"`
	RecentSecurityEvents    int    `json:"recent_security_events"`
	RecentPerformanceIssues int    `json:"recent_performance_issues"`
	Uptime                  string `json:"uptime"`
}

// Monitor records application events. One instance is constructed at startup
// and injected into the services and middleware that report through it.
type Monitor struct {
	store     *Store
	env       string
	slowOp    time.Duration
	startedAt time.Time
}

// New creates a Monitor backed by the configured store path.
func New(cfg *config.MonitoringSettings, environment string) *Monitor {
	return &Monitor{
		store:     NewStore(cfg.StorePath, cfg.MaxStoredEntries),
		env:       strings.ToLower(environment),
		slowOp:    time.Duration(cfg.SlowOpThresholdMs) * time.Millisecond,
		startedAt: time.Now(),
	}
}

// LogInfo records an informational event.
func (m *Monitor) LogInfo(message string, fields map[string]any) {
	if m.console(LevelInfo) {
		log.Info().Fields(fields).Msg(message)
	}
	m.persist(Entry{
		Timestamp: time.Now(),
		Kind:      KindLog,
		Level:     LevelInfo,
		Message:   message,
		Fields:    fields,
	})
}

// LogWarning records a warning event.
func (m *Monitor) LogWarning(message string, fields map[string]any) {
	if m.console(LevelWarning) {
		log.Warn().Fields(fields).Msg(message)
	}
	m.persist(Entry{
		Timestamp: time.Now(),
		Kind:      KindLog,
		Level:     LevelWarning,
		Message:   message,
		Fields:    fields,
	})
}

// LogError records an error event. Level may be LevelError or LevelCritical;
// anything else is recorded as LevelError.
func (m *Monitor) LogError(level Level, message string, err error, fields map[string]any) {
	if level != LevelCritical {
		level = LevelError
	}

	if m.console(level) {
		event := log.Error()
		if err != nil {
			event = event.Err(err)
		}
		event.Fields(fields).Str("severity", string(level)).Msg(message)
	}

	entry := Entry{
		Timestamp: time.Now(),
		Kind:      KindLog,
		Level:     level,
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	m.persist(entry)
}

// LogSecurityEvent records a security-relevant event such as a failed sign-in
// or a privacy-settings change.
func (m *Monitor) LogSecurityEvent(eventType SecurityEventType, severity Severity, details map[string]any) {
	if severity == "" {
		severity = SeverityLow
	}

	level := LevelWarning
	if severity == SeverityCritical {
		level = LevelCritical
	}
	if m.console(level) {
		log.Warn().
			Str("event_type", string(eventType)).
			Str("severity", string(severity)).
			Fields(details).
			Msg("Security event")
	}

	m.persist(Entry{
		Timestamp: time.Now(),
		Kind:      KindSecurity,
		EventType: eventType,
		Severity:  severity,
		Fields:    details,
	})
}

// LogPerformance records the duration of a named operation. Durations at or
// past the slow-operation threshold are flagged and count as performance
// issues in Stats.
func (m *Monitor) LogPerformance(name string, duration time.Duration, metadata map[string]any) {
	slow := duration >= m.slowOp

	if slow && m.console(LevelWarning) {
		log.Warn().
			Str("operation", name).
			Dur("duration", duration).
			Fields(metadata).
			Msg("Slow operation")
	} else if m.console(LevelInfo) && zerolog.GlobalLevel() <= zerolog.DebugLevel {
		log.Debug().
			Str("operation", name).
			Dur("duration", duration).
			Msg("Operation timed")
	}

	m.persist(Entry{
		Timestamp:  time.Now(),
		Kind:       KindPerformance,
		Operation:  name,
		DurationMs: duration.Milliseconds(),
		Slow:       slow,
		Fields:     metadata,
	})
}

// Measure runs fn, records its duration and outcome, and returns fn's error
// unchanged.
func (m *Monitor) Measure(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	m.LogPerformance(name, time.Since(start), map[string]any{
		"success": err == nil,
	})
	return err
}

// MeasureValue runs fn, records its duration and outcome, and returns fn's
// value and error unchanged.
func (m *Monitor) MeasureValue(name string, fn func() (any, error)) (any, error) {
	start := time.Now()
	value, err := fn()
	m.LogPerformance(name, time.Since(start), map[string]any{
		"success": err == nil,
	})
	return value, err
}

// Stats reports counts of errors, security events, and slow operations
// recorded within the trailing hour, plus the process uptime.
func (m *Monitor) Stats() (Stats, error) {
	entries, err := m.store.All()
	if err != nil {
		return Stats{}, err
	}

	cutoff := time.Now().Add(-time.Hour)
	stats := Stats{
		Uptime: time.Since(m.startedAt).Round(time.Second).String(),
	}

	for _, e := range entries {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		switch {
		case e.Kind == KindLog && (e.Level == LevelError || e.Level == LevelCritical):
			stats.RecentErrors++
		case e.Kind == KindSecurity:
			stats.RecentSecurityEvents++
		case e.Kind == KindPerformance && e.Slow:
			stats.RecentPerformanceIssues++
		}
	}

	return stats, nil
}

// Export returns every persisted entry, oldest first. Route-level guards
// restrict who may call this; the facility itself performs no authorization.
func (m *Monitor) Export() ([]Entry, error) {
	return m.store.All()
}

// Clear erases the persisted entries.
func (m *Monitor) Clear() error {
	return m.store.Clear()
}

// console reports whether an entry at the given level should also be written
// to the console logger. Production stays quiet except for critical entries.
func (m *Monitor) console(level Level) bool {
	if m.env == constants.EnvProduction {
		return level == LevelCritical
	}
	return true
}

// persist appends the entry to the store. Persistence failures are reported
// but never interrupt the caller.
func (m *Monitor) persist(entry Entry) {
	if err := m.store.Append(entry); err != nil {
		log.Warn().Err(err).Msg("Failed to persist monitoring entry")
	}
}
