package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log line
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < DebugLevel || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a LOG_LEVEL value onto a Level, defaulting to info
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Fields represents structured log fields
type Fields map[string]interface{}

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	analysisIDKey contextKey = "analysis_id"
	facilityIDKey contextKey = "facility_id"
)

// WithRequestID tags every line logged with ctx with the HTTP request ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithAnalysisID tags every line logged with ctx with the analysis run ID
func WithAnalysisID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, analysisIDKey, id)
}

// WithFacilityID tags every line logged with ctx with the facility being analysed
func WithFacilityID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, facilityIDKey, id)
}

// RequestID returns the request ID stored in ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// StructuredLogger writes one JSON object per line. Safe for concurrent use.
type StructuredLogger struct {
	mu     sync.Mutex
	out    io.Writer
	min    Level
	origin origin
}

// origin identifies the emitting process on every line
type origin struct {
	Service  string `json:"service"`
	Version  string `json:"version"`
	Hostname string `json:"hostname"`
}

// Entry is a single structured log line
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	origin
	Message    string `json:"message"`
	Fields     Fields `json:"fields,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	AnalysisID string `json:"analysis_id,omitempty"`
	FacilityID string `json:"facility_id,omitempty"`
	File       string `json:"file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Function   string `json:"function,omitempty"`
	Error      string `json:"error,omitempty"`
	StackTrace string `json:"stack_trace,omitempty"`
}

// NewStructuredLogger creates a logger writing to stdout
func NewStructuredLogger(service, version string, level Level) *StructuredLogger {
	hostname, _ := os.Hostname()
	return &StructuredLogger{
		out:    os.Stdout,
		min:    level,
		origin: origin{Service: service, Version: version, Hostname: hostname},
	}
}

// SetOutput redirects subsequent lines to w
func (l *StructuredLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.out = w
	l.mu.Unlock()
}

func (l *StructuredLogger) Debug(ctx context.Context, message string, fields Fields) {
	l.log(ctx, DebugLevel, message, fields, nil)
}

func (l *StructuredLogger) Info(ctx context.Context, message string, fields Fields) {
	l.log(ctx, InfoLevel, message, fields, nil)
}

func (l *StructuredLogger) Warn(ctx context.Context, message string, fields Fields) {
	l.log(ctx, WarnLevel, message, fields, nil)
}

// Error logs with caller information and the error text
func (l *StructuredLogger) Error(ctx context.Context, message string, fields Fields, err error) {
	l.log(ctx, ErrorLevel, message, fields, err)
}

// Fatal logs with a stack trace and exits the program
func (l *StructuredLogger) Fatal(ctx context.Context, message string, fields Fields, err error) {
	l.log(ctx, FatalLevel, message, fields, err)
	os.Exit(1)
}

func (l *StructuredLogger) log(ctx context.Context, level Level, message string, fields Fields, err error) {
	if level < l.min {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		origin:    l.origin,
		Message:   message,
		Fields:    fields,
	}
	if ctx != nil {
		entry.RequestID, _ = ctx.Value(requestIDKey).(string)
		entry.AnalysisID, _ = ctx.Value(analysisIDKey).(string)
		entry.FacilityID, _ = ctx.Value(facilityIDKey).(string)
	}
	if level >= ErrorLevel {
		// 3 frames up: annotate, log, exported wrapper
		entry.annotate(3, err, level == FatalLevel)
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		fmt.Fprintf(os.Stderr, "%s [%s] %s %v (unencodable fields: %v)\n",
			entry.Timestamp.Format(time.RFC3339), entry.Level, message, fields, marshalErr)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(data, '\n'))
}

func (e *Entry) annotate(skip int, err error, stack bool) {
	if pc, file, line, ok := runtime.Caller(skip); ok {
		e.File, e.Line = file, line
		if fn := runtime.FuncForPC(pc); fn != nil {
			e.Function = fn.Name()
		}
	}
	if err == nil {
		return
	}
	e.Error = err.Error()
	if stack {
		buf := make([]byte, 4096)
		e.StackTrace = string(buf[:runtime.Stack(buf, false)])
	}
}

// WithFields returns a logger that adds fields to every line
func (l *StructuredLogger) WithFields(fields Fields) *ContextLogger {
	return &ContextLogger{logger: l, fields: fields}
}

// ContextLogger wraps StructuredLogger with fixed fields
type ContextLogger struct {
	logger *StructuredLogger
	fields Fields
}

func (c *ContextLogger) Debug(ctx context.Context, message string, fields Fields) {
	c.logger.log(ctx, DebugLevel, message, c.mergeFields(fields), nil)
}

func (c *ContextLogger) Info(ctx context.Context, message string, fields Fields) {
	c.logger.log(ctx, InfoLevel, message, c.mergeFields(fields), nil)
}

func (c *ContextLogger) Warn(ctx context.Context, message string, fields Fields) {
	c.logger.log(ctx, WarnLevel, message, c.mergeFields(fields), nil)
}

func (c *ContextLogger) Error(ctx context.Context, message string, fields Fields, err error) {
	c.logger.log(ctx, ErrorLevel, message, c.mergeFields(fields), err)
}

// mergeFields overlays per-call fields on the fixed ones
func (c *ContextLogger) mergeFields(fields Fields) Fields {
	merged := make(Fields, len(c.fields)+len(fields))
	maps.Copy(merged, c.fields)
	maps.Copy(merged, fields)
	return merged
}
