package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "production", true},
		{"development uses pretty", "development", false},
		{"staging uses pretty", "staging", false},
		{"empty uses pretty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Writer: &buf, Environment: tt.environment})
			log.Info("batch ingested", "added", 3)

			var decoded map[string]any
			err := json.Unmarshal(buf.Bytes(), &decoded)
			if tt.wantJSON {
				require.NoError(t, err)
				assert.Equal(t, "batch ingested", decoded["msg"])
				assert.InDelta(t, 3, decoded["added"], 0)
			} else {
				assert.Error(t, err)
				assert.Contains(t, buf.String(), "batch ingested")
			}
		})
	}
}

func TestNew_ExplicitFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON, Environment: "development"})
	log.Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"loud":    slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestPrettyHandler_Plain(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, NoColor: true})

	log.Info("conflict staged", "book_id", "7", "title", "Dune Messiah")

	line := buf.String()
	assert.NotContains(t, line, "\033[")
	assert.Contains(t, line, " INF conflict staged book_id=7 title=\"Dune Messiah\"\n")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, NoColor: true, Level: slog.LevelWarn})

	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")

	out := buf.String()
	assert.NotContains(t, out, "DBG")
	assert.NotContains(t, out, "INF")
	assert.Contains(t, out, "WRN warn")
	assert.Contains(t, out, "ERR error")
}

func TestPrettyHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewPrettyHandler(&buf, nil))
	h := base.Handler().(*PrettyHandler)
	h.noColor = true

	log := slog.New(h).With("batch_id", "b1").WithGroup("summary")
	log.Info("done", "added", 2, slog.Group("rows", "total", 5))

	assert.Contains(t, buf.String(), "done batch_id=b1 summary.added=2 summary.rows.total=5")
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, NoColor: true, AddSource: true})
	log.Info("with source")
	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `""`, formatValue(slog.StringValue("")))
	assert.Equal(t, `"a b"`, formatValue(slog.StringValue("a b")))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
	assert.Equal(t, "true", formatValue(slog.BoolValue(true)))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON})

	log.Component("inbox").Info("file processed")
	log.WithError(errors.New("disk full")).Error("commit failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "inbox", first["component"])
	assert.Equal(t, "disk full", second["error"])
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(t.Context(), slog.LevelError))
}
