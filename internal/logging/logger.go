/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package logging provides structured, component-based logging for pgmock.

Features:
  - Log levels (DEBUG, INFO, WARN, ERROR)
  - Key-value fields appended to every entry
  - Text output with colored levels, or one JSON object per line
  - Global level, output and format switches shared by all loggers

The mock is embedded in test processes, so the default output is stderr
and the default level is WARN. Statement tracing appears at INFO and
state graph walks at DEBUG.

Usage:

	logger := logging.NewLogger("executor")
	logger.Info("Statement executed", "kind", "INSERT", "rows", 2)
	logger.Warn("No transaction in progress", "statement", "COMMIT")
*/
package logging

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	// DEBUG level for state graph traces.
	DEBUG Level = iota
	// INFO level for executed statements.
	INFO
	// WARN level for notices and swallowed errors.
	WARN
	// ERROR level for failed statements.
	ERROR
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown names map to WARN.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return WARN
	}
}

// Entry represents a single log entry with all its metadata.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger provides structured logging capabilities.
type Logger struct {
	component string
	mu        sync.Mutex
}

// Config holds logger configuration options.
type Config struct {
	Level    Level
	Output   io.Writer
	JSONMode bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:    WARN,
		Output:   os.Stderr,
		JSONMode: false,
	}
}

var (
	globalConfig = DefaultConfig()
	globalMu     sync.RWMutex
)

// Configure replaces the global configuration in one step.
func Configure(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	globalConfig = cfg
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Level = level
}

// SetGlobalOutput sets the global log output.
func SetGlobalOutput(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Output = w
}

// SetJSONMode enables or disables JSON output mode.
func SetJSONMode(enabled bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.JSONMode = enabled
}

// NewLogger creates a new Logger for the specified component.
func NewLogger(component string) *Logger {
	return &Logger{component: component}
}

// Component returns the component name the logger was created with.
func (l *Logger) Component() string {
	return l.component
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return level >= globalConfig.Level
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	globalMu.RLock()
	minLevel := globalConfig.Level
	output := globalConfig.Output
	jsonMode := globalConfig.JSONMode
	globalMu.RUnlock()

	if level < minLevel {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
		Fields:    fieldsFromArgs(args),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if jsonMode {
		writeJSON(output, entry)
	} else {
		writeText(output, entry)
	}
}

// fieldsFromArgs turns alternating key/value args into a field map.
// A trailing unpaired value is kept under "extra".
func fieldsFromArgs(args []interface{}) map[string]interface{} {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(args)/2+1)
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		fields[key] = args[i+1]
	}
	if len(args)%2 != 0 {
		fields["extra"] = args[len(args)-1]
	}
	return fields
}

func writeJSON(w io.Writer, entry Entry) {
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			entry.Fields[k] = err.Error()
		}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(w, "ERROR: failed to marshal log entry: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

// writeText writes "2006-01-02T15:04:05.000Z [LEVEL] [component] message k=v ...".
// Fields are sorted by key so lines are stable.
func writeText(w io.Writer, entry Entry) {
	timestamp := entry.Timestamp.Format("2006-01-02T15:04:05.000Z")

	var levelColor string
	switch entry.Level {
	case "DEBUG":
		levelColor = "\033[36m"
	case "INFO":
		levelColor = "\033[32m"
	case "WARN":
		levelColor = "\033[33m"
	case "ERROR":
		levelColor = "\033[31m"
	default:
		levelColor = "\033[0m"
	}
	resetColor := "\033[0m"

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s[%-5s]%s [%s] %s",
		timestamp, levelColor, entry.Level, resetColor, entry.Component, entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}

	fmt.Fprintln(w, b.String())
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, msg, args...)
}

// With returns a logger that adds the given fields to every entry.
func (l *Logger) With(args ...interface{}) *ContextLogger {
	fields := fieldsFromArgs(args)
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return &ContextLogger{
		logger: l,
		fields: fields,
	}
}

// ContextLogger is a logger with pre-set context fields.
type ContextLogger struct {
	logger *Logger
	fields map[string]interface{}
}

// Debug logs a message at DEBUG level with context fields.
func (c *ContextLogger) Debug(msg string, args ...interface{}) {
	c.logger.log(DEBUG, msg, c.mergeArgs(args)...)
}

// Info logs a message at INFO level with context fields.
func (c *ContextLogger) Info(msg string, args ...interface{}) {
	c.logger.log(INFO, msg, c.mergeArgs(args)...)
}

// Warn logs a message at WARN level with context fields.
func (c *ContextLogger) Warn(msg string, args ...interface{}) {
	c.logger.log(WARN, msg, c.mergeArgs(args)...)
}

// Error logs a message at ERROR level with context fields.
func (c *ContextLogger) Error(msg string, args ...interface{}) {
	c.logger.log(ERROR, msg, c.mergeArgs(args)...)
}

func (c *ContextLogger) mergeArgs(args []interface{}) []interface{} {
	result := make([]interface{}, 0, len(c.fields)*2+len(args))
	for k, v := range c.fields {
		result = append(result, k, v)
	}
	return append(result, args...)
}

// ============================================================================
// Execution Tracking
// ============================================================================

var execCounter uint64

// GenerateExecID generates a unique ID for one Execute call.
// Format: <counter>-<random_hex>
func GenerateExecID() string {
	counter := atomic.AddUint64(&execCounter, 1)
	randomBytes := make([]byte, 4)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("%d-%s", counter, hex.EncodeToString(randomBytes))
}

// ExecContext follows one Execute call from substitution to the last step.
type ExecContext struct {
	ID        string
	StartTime time.Time
	Source    string
}

// NewExecContext creates a new execution context. Source names where the
// SQL came from (a file path, "shell", "api").
func NewExecContext(source string) *ExecContext {
	return &ExecContext{
		ID:        GenerateExecID(),
		StartTime: time.Now(),
		Source:    source,
	}
}

// Duration returns the time elapsed since the execution started.
func (r *ExecContext) Duration() time.Duration {
	return time.Since(r.StartTime)
}

// DurationMs returns the duration in milliseconds.
func (r *ExecContext) DurationMs() float64 {
	return float64(r.Duration().Microseconds()) / 1000.0
}

// LogComplete logs a completed execution.
func (r *ExecContext) LogComplete(logger *Logger, steps int, args ...interface{}) {
	baseArgs := []interface{}{
		"exec_id", r.ID,
		"source", r.Source,
		"steps", steps,
		"duration_ms", fmt.Sprintf("%.2f", r.DurationMs()),
	}
	logger.Info("Execution completed", append(baseArgs, args...)...)
}

// LogError logs a failed execution.
func (r *ExecContext) LogError(logger *Logger, err error, args ...interface{}) {
	baseArgs := []interface{}{
		"exec_id", r.ID,
		"source", r.Source,
		"error", err,
		"duration_ms", fmt.Sprintf("%.2f", r.DurationMs()),
	}
	logger.Error("Execution failed", append(baseArgs, args...)...)
}
