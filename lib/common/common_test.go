package common

import (
	"bytes"
	"strings"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	c.Root = " "
	if err := c.Validate(); err == nil {
		t.Errorf("expected empty root to be rejected")
	}

	c = DefaultConfig()
	c.PollInterval = 0
	if err := c.Validate(); err == nil {
		t.Errorf("expected zero poll interval to be rejected")
	}

	c = DefaultConfig()
	c.LogLevel = "loud"
	if err := c.Validate(); err == nil {
		t.Errorf("expected invalid log level to be rejected")
	}
}

func TestConfigString(t *testing.T) {
	c := DefaultConfig()
	c.Root = "/mnt/shared"
	s := c.String()
	if !strings.Contains(s, "/mnt/shared") {
		t.Errorf("expected root in config dump, got:\n%s", s)
	}
	if !strings.Contains(s, "10ms") {
		t.Errorf("expected poll interval in config dump, got:\n%s", s)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := CreateLogger("test").(*fsSyncLogger)
	l.logger.SetOutput(&buf)

	l.SetLevel(logger.WARNING)
	l.Infof("hidden %d", 1)
	l.Warningf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should have been filtered: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "shown 2") {
		t.Errorf("expected warning message, got %q", out)
	}
}

func TestMetricName(t *testing.T) {
	if got := MetricName("fssync_x_total"); got != "fssync_x_total" {
		t.Errorf("unexpected name %q", got)
	}
	if got := MetricName("fssync_x_total", "op", "inc"); got != `fssync_x_total{op="inc"}` {
		t.Errorf("unexpected name %q", got)
	}
	if got := MetricName("fssync_x_total", "op", "inc", "category", "integers"); got != `fssync_x_total{op="inc",category="integers"}` {
		t.Errorf("unexpected name %q", got)
	}
}

func TestWriteMetrics(t *testing.T) {
	metrics.GetOrCreateCounter(MetricName("fssync_common_test_total")).Inc()

	var buf bytes.Buffer
	WriteMetrics(&buf, false)
	if !strings.Contains(buf.String(), "fssync_common_test_total 1") {
		t.Errorf("expected test counter in output, got:\n%s", buf.String())
	}
}
