package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flamechart/pkg/errors"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("layout done") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache miss") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("cache miss") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("redis unavailable") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug output missing after SetLogLevel: %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Render complete")

	out := buf.String()
	if !strings.Contains(out, "Render complete (") {
		t.Errorf("output %q should contain the message and elapsed time", out)
	}
}

func TestProgressStage(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.DebugLevel))
	prog.stage("layout built", "layers", 3)

	out := buf.String()
	for _, want := range []string{"layout built", "took=", "layers=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	tests := []struct {
		name string
		ctx  context.Context
		want *log.Logger
	}{
		{"attached", withLogger(context.Background(), custom), custom},
		{"missing falls back to default", context.Background(), log.Default()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("loggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	t.Run("loads config and attaches logger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[view]\nwidth = 640\nkind = \"left-heavy\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		c := New(&bytes.Buffer{}, LogInfo)
		c.configPath = path

		cmd := &cobra.Command{}
		cmd.SetContext(context.Background())
		if err := c.setup(cmd); err != nil {
			t.Fatalf("setup() error: %v", err)
		}
		if c.Config.View.Width != 640 || c.Config.View.Kind != "left-heavy" {
			t.Errorf("config view = %+v", c.Config.View)
		}
		if loggerFromContext(cmd.Context()) != c.Logger {
			t.Error("command context should carry the CLI logger")
		}
	})

	t.Run("missing explicit config", func(t *testing.T) {
		c := New(&bytes.Buffer{}, LogInfo)
		c.configPath = filepath.Join(t.TempDir(), "absent.toml")
		err := c.setup(&cobra.Command{})
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("setup() error = %v, want FILE_NOT_FOUND", err)
		}
	})
}
