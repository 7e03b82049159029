package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: FormatJSON}, "predict-gateway", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return m
}

func TestNewJSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").Info("hello")

	m := decodeLine(t, &buf)
	if m["service"] != "predict-gateway" {
		t.Errorf("expected service field, got %v", m["service"])
	}
	if m["message"] != "hello" {
		t.Errorf("expected message 'hello', got %v", m["message"])
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "nonsense")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at info level, got %q", buf.String())
	}
	l.Info("shown")
	if buf.Len() == 0 {
		t.Error("expected info line")
	}
}

func TestWithComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug").WithComponent("dispatch").WithFields(map[string]interface{}{
		"model": "all",
	})
	l.Debug("dispatching", Fields("beam", 3))

	m := decodeLine(t, &buf)
	if m["component"] != "dispatch" {
		t.Errorf("expected component=dispatch, got %v", m["component"])
	}
	if m["model"] != "all" {
		t.Errorf("expected model=all, got %v", m["model"])
	}
	if m["beam"] != float64(3) {
		t.Errorf("expected beam=3, got %v", m["beam"])
	}
}

func TestWithContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-42")
	newJSONLogger(&buf, "info").WithContext(ctx).Info("traced")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-42" {
		t.Errorf("expected request_id=req-42, got %v", m[FieldRequestID])
	}
}

func TestWithContextWithoutRequestID(t *testing.T) {
	l := NewNop()
	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected same logger when context carries no request id")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")

	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", m["error"])
	}
}

func TestConsoleFormatTagsService(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: FormatConsole, NoColor: true}, "gateway", &buf)
	l.Info("started")
	out := buf.String()
	if !strings.Contains(out, "[GAT][INF]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
	if !strings.Contains(out, "started") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestFields(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(f) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(f), f)
	}
	if f["a"] != 1 || f["b"] != "two" {
		t.Errorf("unexpected fields: %v", f)
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("predict", errors.New("down"))
	if ef[FieldOperation] != "predict" || ef[FieldError] != "down" {
		t.Errorf("unexpected error fields: %v", ef)
	}
	df := DurationFields("predict", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"json debug", Config{Level: "debug", Format: "json"}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
