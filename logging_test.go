// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLogging_NoOpLogger(t *testing.T) {
	logger := &NoOpLogger{}

	logger.Debug("debug message", Field{Key: "key", Value: "value"})
	logger.Info("info message", Field{Key: "key", Value: "value"})
	logger.Warn("warn message", Field{Key: "key", Value: "value"})
	logger.Error("error message", Field{Key: "key", Value: "value"})

	contextLogger := logger.With(Field{Key: "context", Value: "test"})
	contextLogger.Info("test message")

	if _, ok := contextLogger.(*NoOpLogger); !ok {
		t.Errorf("With() should return a NoOpLogger, got %T", contextLogger)
	}
}

func TestLogging_StandardLogger(t *testing.T) {
	var buf bytes.Buffer
	stdLogger := log.New(&buf, "", 0)

	logger := &StandardLogger{Logger: stdLogger}

	tests := []struct {
		name     string
		logFunc  func(string, ...Field)
		message  string
		fields   []Field
		expected string
	}{
		{
			name:     "debug message",
			logFunc:  logger.Debug,
			message:  "debug test",
			fields:   nil,
			expected: "[DEBUG] debug test",
		},
		{
			name:     "info with fields",
			logFunc:  logger.Info,
			message:  "info test",
			fields:   []Field{{Key: "key1", Value: "value1"}, {Key: "key2", Value: 42}},
			expected: "[INFO] info test key1=value1 key2=42",
		},
		{
			name:     "warn with string containing spaces",
			logFunc:  logger.Warn,
			message:  "warn test",
			fields:   []Field{{Key: "message", Value: "hello world"}},
			expected: "[WARN] warn test message=\"hello world\"",
		},
		{
			name:     "error with error field",
			logFunc:  logger.Error,
			message:  "error test",
			fields:   []Field{{Key: "error", Value: NewRFBError("test", ErrIo, "test error", nil)}},
			expected: "[ERROR] error test error=\"rfb io: test: test error\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(tt.message, tt.fields...)

			output := strings.TrimSpace(buf.String())
			if output != tt.expected {
				t.Errorf("Expected: %q, Got: %q", tt.expected, output)
			}
		})
	}
}

func TestLogging_StandardLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	stdLogger := log.New(&buf, "", 0)

	logger := &StandardLogger{Logger: stdLogger}

	connLogger := logger.With(
		Field{Key: "conn_id", Value: "conn-123"},
		Field{Key: "session", Value: "test-session"},
	)

	connLogger.Info("test message", Field{Key: "extra", Value: "data"})

	output := strings.TrimSpace(buf.String())
	expected := "[INFO] test message conn_id=conn-123 session=test-session extra=data"
	if output != expected {
		t.Errorf("Expected: %q, Got: %q", expected, output)
	}

	buf.Reset()
	logger.Info("original logger")
	output = strings.TrimSpace(buf.String())
	expected = "[INFO] original logger"
	if output != expected {
		t.Errorf("original logger should not have context fields. Expected: %q, Got: %q", expected, output)
	}
}

func TestLogging_StandardLoggerDefault(t *testing.T) {
	logger := &StandardLogger{}

	logger.Info("test message")

	if logger.Logger == nil {
		t.Error("Expected Logger to be initialized after first use")
	}
}

func TestLogging_FormatFieldValue(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"simple string", "hello", "hello"},
		{"string with spaces", "hello world", `"hello world"`},
		{"integer", 42, "42"},
		{"boolean", true, "true"},
		{"error", NewRFBError("test", ErrIo, "test error", nil), `"rfb io: test: test error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatFieldValue(tt.value)
			if result != tt.expected {
				t.Errorf("Expected: %q, Got: %q", tt.expected, result)
			}
		})
	}
}

func TestLogging_ContainsSpace(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"hello", false},
		{"hello world", true},
		{"hello\tworld", true},
		{"hello\nworld", true},
		{"hello\rworld", true},
		{"", false},
		{"no-spaces-here", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := containsSpace(tt.input)
			if result != tt.expected {
				t.Errorf("containsSpace(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLogging_ClientConfigDefaults(t *testing.T) {
	var buf bytes.Buffer
	stdLogger := log.New(&buf, "", 0)
	logger := &StandardLogger{Logger: stdLogger}

	cfg := &ClientConfig{Logger: logger}
	if cfg.Logger == nil {
		t.Error("Logger should be set in ClientConfig")
	}

	cfgWithoutLogger := &ClientConfig{}
	if cfgWithoutLogger.Logger != nil {
		t.Error("Logger should be nil when not explicitly set")
	}
}

func TestLogging_FieldsFormatting(t *testing.T) {
	var buf bytes.Buffer
	stdLogger := log.New(&buf, "", 0)
	logger := &StandardLogger{Logger: stdLogger}

	logger.Info("VNC connection test",
		Field{Key: "server", Value: "192.168.1.100:5900"},
		Field{Key: "auth_type", Value: 2},
		Field{Key: "shared", Value: true},
		Field{Key: "framebuffer_width", Value: uint16(1920)},
		Field{Key: "framebuffer_height", Value: uint16(1080)})

	output := strings.TrimSpace(buf.String())
	expected := `[INFO] VNC connection test server=192.168.1.100:5900 auth_type=2 shared=true framebuffer_width=1920 framebuffer_height=1080`
	if output != expected {
		t.Errorf("Expected: %q, Got: %q", expected, output)
	}
}

func TestLogging_DomainFieldHelpers(t *testing.T) {
	var buf bytes.Buffer
	stdLogger := log.New(&buf, "", 0)
	logger := &StandardLogger{Logger: stdLogger}

	logger.Debug("negotiated",
		versionField(V38),
		securityTypeField(SecurityTypeVncAuthentication),
		sessionStateField(Established))

	output := strings.TrimSpace(buf.String())
	expected := `[DEBUG] negotiated version="RFB 003.008" security_type=VncAuthentication state=Established`
	if output != expected {
		t.Errorf("Expected: %q, Got: %q", expected, output)
	}

	buf.Reset()
	logger.Debug("rectangle decoded", rectField(Rect{Left: 0, Top: 0, Width: 64, Height: 64}))
	output = strings.TrimSpace(buf.String())
	expected = `[DEBUG] rectangle decoded rect={0 0 64 64}`
	if output != expected {
		t.Errorf("Expected: %q, Got: %q", expected, output)
	}
}

func TestLogging_Contextual(t *testing.T) {
	var buf bytes.Buffer
	stdLogger := log.New(&buf, "", 0)
	logger := &StandardLogger{Logger: stdLogger}

	connLogger := logger.With(
		Field{Key: "conn_id", Value: "conn-123"},
		Field{Key: "remote_addr", Value: "192.168.1.100:5900"},
	)

	connLogger.Info("Protocol version negotiated",
		Field{Key: "major", Value: 3},
		Field{Key: "minor", Value: 8})

	output := strings.TrimSpace(buf.String())
	expected := `[INFO] Protocol version negotiated conn_id=conn-123 remote_addr=192.168.1.100:5900 major=3 minor=8`
	if output != expected {
		t.Errorf("Expected: %q, Got: %q", expected, output)
	}
}
