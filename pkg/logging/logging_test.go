package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tvcutsem/proxy-handlers/pkg/config"
)

func TestLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"":        zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for name, want := range tests {
		if got := Level(name); got != want {
			t.Errorf("Level(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.Logging{Level: "warn", Format: config.FormatJSON}, &buf)
	log.Info().Msg("hidden")
	log.Warn().Str("key", "k").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message passed a warn-level logger: %q", out)
	}
	for _, want := range []string{`"message":"shown"`, `"key":"k"`, `"component":"proxy-handlers"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.Logging{Level: "debug", Format: config.FormatConsole}, &buf)
	log.Debug().Msg("entity created")
	out := buf.String()
	if !strings.Contains(out, "entity created") || !strings.Contains(out, "component=proxy-handlers") {
		t.Errorf("unexpected console output %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("console output is colorized: %q", out)
	}
}
