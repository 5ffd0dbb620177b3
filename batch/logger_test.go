package batch_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/MasterOfBinary/throttledbatch/batch"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    batch.LogLevel
		expected string
	}{
		{batch.LogLevelDebug, "DEBUG"},
		{batch.LogLevelInfo, "INFO"},
		{batch.LogLevelWarn, "WARN"},
		{batch.LogLevelError, "ERROR"},
		{batch.LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, name := range []string{"debug", "INFO", "warn", "ERROR"} {
		level, ok := batch.ParseLogLevel(name)
		if !ok {
			t.Errorf("ParseLogLevel(%q) not recognized", name)
		}
		if !strings.EqualFold(level.String(), name) {
			t.Errorf("ParseLogLevel(%q) = %v", name, level)
		}
	}

	if level, ok := batch.ParseLogLevel("loud"); ok || level != batch.LogLevelInfo {
		t.Errorf("ParseLogLevel(loud) = %v, %v", level, ok)
	}
}

func TestNoOpLogger(t *testing.T) {
	logger := &batch.NoOpLogger{}

	// These should not panic
	logger.Log(batch.LogLevelInfo, "test")
	logger.Debug("debug %d", 1)
	logger.Info("info %s", "test")
	logger.Warn("warn %v", true)
	logger.Error("error %f", 3.14)
}

func TestSimpleLogger(t *testing.T) {
	tests := []struct {
		name        string
		minLevel    batch.LogLevel
		logFunc     func(logger batch.Logger)
		out         []string
		err         []string
		notContains []string
	}{
		{
			name:     "debug level allows all",
			minLevel: batch.LogLevelDebug,
			logFunc: func(logger batch.Logger) {
				logger.Debug("debug message")
				logger.Info("info message")
				logger.Warn("warn message")
				logger.Error("error message")
			},
			out: []string{"[DEBUG] debug message", "[INFO] info message"},
			err: []string{"[WARN] warn message", "[ERROR] error message"},
		},
		{
			name:     "error level filters the rest",
			minLevel: batch.LogLevelError,
			logFunc: func(logger batch.Logger) {
				logger.Info("info message")
				logger.Warn("warn message")
				logger.Error("failed %d", 3)
			},
			err:         []string{"[ERROR] failed 3"},
			notContains: []string{"[INFO]", "[WARN]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			logger := &batch.SimpleLogger{
				MinLevel: tt.minLevel,
				Out:      log.New(&out, "", 0),
				Err:      log.New(&errOut, "", 0),
			}
			tt.logFunc(logger)

			for _, s := range tt.out {
				if !strings.Contains(out.String(), s) {
					t.Errorf("stdout missing %q in %q", s, out.String())
				}
			}
			for _, s := range tt.err {
				if !strings.Contains(errOut.String(), s) {
					t.Errorf("stderr missing %q in %q", s, errOut.String())
				}
			}
			all := out.String() + errOut.String()
			for _, s := range tt.notContains {
				if strings.Contains(all, s) {
					t.Errorf("output should not contain %q: %q", s, all)
				}
			}
		})
	}
}

func TestNewWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := batch.NewWriterLogger(&buf, batch.LogLevelInfo)

	logger.Debug("hidden")
	logger.Info("shown %s", "here")
	logger.Error("also shown")

	want := "[INFO] shown here\n[ERROR] also shown\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
